/*
Package nodeid provides a structured, type-safe representation for build step
identifiers, based on the canonical format `scope.kind[.variant]`.

The scope is either a bundle title (e.g. `foo`) or the reserved word
`project` for steps that are not tied to a bundle. Examples:

	foo.concatenate.script
	foo.minify-style
	project.shell.cache_clear

This package enforces the identifier schema and centralizes all formatting
and parsing logic, so planners and consumers of a serialized plan agree on
step identity.
*/
package nodeid
