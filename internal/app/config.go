package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/specialistvlad/assetgrid/internal/outpath"
	"github.com/specialistvlad/assetgrid/internal/plan"
	"github.com/specialistvlad/assetgrid/internal/version"
)

// DefaultPlanFileName is the plan file written inside the generated directory.
const DefaultPlanFileName = "plan.json"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectRoot  string
	SettingsPath string // file or directory; defaults to ProjectRoot

	SourceDir    string // relative to ProjectRoot
	GeneratedDir string // relative to ProjectRoot
	PublicDir    string // relative to ProjectRoot
	PlanFile     string
	VersionFile  string

	// Only restricts planning to bundles whose title matches one of these globs.
	Only    []string
	Workers int

	LogFormat string
	LogLevel  string

	LiveReloadURL    string
	LiveReloadScript string
	MetricsFile      string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectRoot == "" {
		return nil, errors.New("ProjectRoot is a required configuration field and cannot be empty")
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg.ProjectRoot = root

	if cfg.SettingsPath == "" {
		cfg.SettingsPath = cfg.ProjectRoot
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = plan.DefaultSourceRoot
	}
	if cfg.GeneratedDir == "" {
		cfg.GeneratedDir = outpath.DefaultGeneratedRoot
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = outpath.DefaultPublicRoot
	}
	for name, dir := range map[string]string{"source": cfg.SourceDir, "generated": cfg.GeneratedDir, "public": cfg.PublicDir} {
		if filepath.IsAbs(dir) {
			return nil, fmt.Errorf("%s directory %q must be relative to the project root", name, dir)
		}
	}
	if cfg.PlanFile == "" {
		cfg.PlanFile = filepath.Join(cfg.ProjectRoot, cfg.GeneratedDir, DefaultPlanFileName)
	}
	if cfg.VersionFile == "" {
		cfg.VersionFile = filepath.Join(cfg.ProjectRoot, version.DefaultFileName)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	for _, pattern := range cfg.Only {
		if _, err := glob.Compile(pattern); err != nil {
			return nil, fmt.Errorf("invalid bundle filter %q: %w", pattern, err)
		}
	}

	return &cfg, nil
}

// bundleFilter compiles the Only patterns. A nil filter accepts everything.
func (c *Config) bundleFilter() []glob.Glob {
	var globs []glob.Glob
	for _, pattern := range c.Only {
		globs = append(globs, glob.MustCompile(pattern))
	}
	return globs
}
