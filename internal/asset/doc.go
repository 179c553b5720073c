// Package asset classifies the files of a bundle into asset classes.
//
// Every class owns an ordered list of glob patterns. Patterns are expanded in
// declaration order against the bundle directory and a file is recorded at
// its first match only, so earlier patterns take precedence: vendor
// libraries are concatenated before custom code, custom code before the
// rest. The resulting order is the concatenation order and is never
// re-sorted afterwards.
package asset
