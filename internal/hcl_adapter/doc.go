// Package hcl_adapter loads the settings document from HCL native syntax
// (settings.hcl) or HCL JSON syntax (settings.json) and translates it into
// the format-agnostic config.Settings model.
package hcl_adapter
