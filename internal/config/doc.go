// Package config defines the format-agnostic configuration model for the
// application: the Settings document that shapes the build plan, the project
// Facts extracted from the host project, and the Loader interfaces that
// produce them.
//
// The `config.Settings` value is the single source of truth for the `asset`
// and `plan` packages. Concrete loaders, such as the HCL settings loader and
// the YAML-based facts loader, are provided in separate packages.
package config
