package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateSettings converts the decoded HCL schema into the agnostic model.
func (l *Loader) translateSettings(ctx context.Context, f *settingsFile) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	settings := config.DefaultSettings()

	if f.Glob != nil {
		settings.Glob = config.GlobFlags{
			JS:         f.Glob.JS,
			CSS:        f.Glob.CSS,
			PHP:        f.Glob.PHP,
			Images:     f.Glob.Images,
			YAML:       f.Glob.YAML,
			Twig:       f.Glob.Twig,
			Browserify: f.Glob.Browserify,
			ESLint:     f.Glob.ESLint,
		}
		if extra := unknownAttributes(f.Glob.Remain); len(extra) > 0 {
			sort.Strings(extra)
			logger.Warn("Ignoring unknown glob switches.", "names", extra)
		}
	} else {
		logger.Warn("Settings document has no glob block, every asset class is disabled.")
	}

	if isExprDefined(ctx, f.Exec, "exec") {
		execs, err := translateExec(f)
		if err != nil {
			return nil, err
		}
		settings.Exec = execs
	}

	if isExprDefined(ctx, f.Uglify, "uglify") {
		val, diags := f.Uglify.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid uglify options: %w", diags)
		}
		if !val.IsNull() {
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return nil, fmt.Errorf("uglify options must be an object, got %s", val.Type().FriendlyName())
			}
			if !val.IsWhollyKnown() {
				return nil, fmt.Errorf("uglify options must be static values")
			}
			settings.Uglify = val
		}
	}

	if f.Copy != nil {
		settings.Copy = *f.Copy
	}
	if f.Entities != nil {
		settings.Entities = *f.Entities
	}

	if extra := unknownAttributes(f.Remain); len(extra) > 0 {
		sort.Strings(extra)
		logger.Debug("Ignoring unknown settings attributes.", "names", extra)
	}

	return settings, nil
}

// translateExec decodes the exec mapping of command names to shell commands.
func translateExec(f *settingsFile) (map[string]string, error) {
	val, diags := f.Exec.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid exec mapping: %w", diags)
	}
	if val.IsNull() {
		return map[string]string{}, nil
	}
	asMap, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("exec must map names to command strings: %w", err)
	}
	execs := make(map[string]string)
	if err := gocty.FromCtyValue(asMap, &execs); err != nil {
		return nil, fmt.Errorf("exec must map names to command strings: %w", err)
	}
	return execs, nil
}
