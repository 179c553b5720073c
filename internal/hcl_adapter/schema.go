package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// settingsFile is the decoding target for the top level of a settings document.
type settingsFile struct {
	Glob     *globBlock     `hcl:"glob,block"`
	Exec     hcl.Expression `hcl:"exec,optional"`
	Uglify   hcl.Expression `hcl:"uglify,optional"`
	Copy     *bool          `hcl:"copy,optional"`
	Entities *bool          `hcl:"entities,optional"`
	Remain   hcl.Body       `hcl:",remain"`
}

// globBlock holds the asset class switches.
type globBlock struct {
	JS         bool     `hcl:"js,optional"`
	CSS        bool     `hcl:"css,optional"`
	PHP        bool     `hcl:"php,optional"`
	Images     bool     `hcl:"images,optional"`
	YAML       bool     `hcl:"yaml,optional"`
	Twig       bool     `hcl:"twig,optional"`
	Browserify bool     `hcl:"browserify,optional"`
	ESLint     bool     `hcl:"eslint,optional"`
	Remain     hcl.Body `hcl:",remain"`
}
