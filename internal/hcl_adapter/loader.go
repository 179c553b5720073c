package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
)

// settingsCandidates are the file names looked up when Load is given a directory.
var settingsCandidates = []string{"settings.hcl", "settings.json"}

// Loader is the HCL-specific implementation of the config.SettingsLoader interface.
type Loader struct{}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the settings document at path. A directory is searched for
// settings.hcl first, then settings.json. Every failure is reported as a
// *config.LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Settings loader started.", "path", path)

	file, err := resolveSettingsPath(path)
	if err != nil {
		return nil, &config.LoadError{Source: path, Err: err}
	}
	logger.Debug("Resolved settings document.", "file", file)

	parser := hclparse.NewParser()
	var hclFile *hcl.File
	var diags hcl.Diagnostics
	if filepath.Ext(file) == ".json" {
		hclFile, diags = parser.ParseJSONFile(file)
	} else {
		hclFile, diags = parser.ParseHCLFile(file)
	}
	if diags.HasErrors() {
		return nil, &config.LoadError{Source: file, Err: fmt.Errorf("failed to parse settings: %w", diags)}
	}

	var root settingsFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, &config.LoadError{Source: file, Err: fmt.Errorf("failed to decode settings: %w", diags)}
	}

	settings, err := l.translateSettings(ctx, &root)
	if err != nil {
		return nil, &config.LoadError{Source: file, Err: err}
	}

	logger.Info("Found and processed settings file.", "file", file, "exec_count", len(settings.Exec), "copy", settings.Copy)
	return settings, nil
}

// resolveSettingsPath returns the settings file for path, which may point at
// the file itself or at the directory holding it.
func resolveSettingsPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range settingsCandidates {
		candidate := filepath.Join(path, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no settings file (%v) found in %s", settingsCandidates, path)
}
