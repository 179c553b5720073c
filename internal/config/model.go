package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Settings is the unified, format-agnostic representation of the settings
// document that controls which asset classes and steps are planned.
type Settings struct {
	Glob GlobFlags
	// Exec maps a command name to a shell command run from the project root.
	Exec map[string]string
	// Uglify holds the script minifier options verbatim. It is cty.NilVal
	// when the document does not define any.
	Uglify cty.Value
	// Copy controls whether the final copy step does real work. When false
	// the step is still planned, marked as a no-op.
	Copy bool
	// Entities enables per-bundle entity generation shell steps.
	Entities bool
}

// GlobFlags are the per asset class feature switches.
type GlobFlags struct {
	JS         bool
	CSS        bool
	PHP        bool
	Images     bool
	YAML       bool
	Twig       bool
	Browserify bool
	ESLint     bool
}

// DefaultSettings returns the settings used when a document omits optional
// attributes.
func DefaultSettings() *Settings {
	return &Settings{
		Exec:   map[string]string{},
		Uglify: cty.NilVal,
		Copy:   true,
	}
}

// Facts are the values extracted from the host project by a FactsLoader.
type Facts struct {
	// ProjectRoot is the absolute path of the host project.
	ProjectRoot string
	// FrameworkMajor is the major version of the host framework, 0 when unknown.
	FrameworkMajor int
	// Host is the configured HTTP host the dev flag was derived from.
	Host string
	// IsDev reports whether the project runs in developer mode.
	IsDev bool
}
