package config

import "context"

// SettingsLoader is the interface for a format-specific settings loader.
type SettingsLoader interface {
	// Load reads the settings document at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Settings, error)
}

// FactsLoader extracts the plain values the planner needs from the host
// project's own metadata files.
type FactsLoader interface {
	Load(ctx context.Context, projectRoot string) (*Facts, error)
}
