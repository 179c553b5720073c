package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/bundle"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/facts"
	"github.com/specialistvlad/assetgrid/internal/hcl_adapter"
	"github.com/specialistvlad/assetgrid/internal/notify"
	"github.com/specialistvlad/assetgrid/internal/plan"
	"github.com/specialistvlad/assetgrid/internal/testutil"
	"github.com/specialistvlad/assetgrid/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, events []notify.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingNotifier) Close() error { return nil }

const settingsHCL = `
glob {
  js  = true
  css = true
}
exec = {
  cache_clear = "php bin/console cache:clear"
}
`

func projectFiles() map[string]string {
	return map[string]string{
		"composer.json":                                 `{"require": {"php": ">=7.1", "symfony/symfony": "3.4.*"}}`,
		"app/AppKernel.php":                             "<?php\n",
		"app/config/parameters.yml":                     "parameters:\n  http_host: shop.example.nl\n",
		"settings.hcl":                                  settingsHCL,
		"src/Acme/FooBundle/Resources/public/js/a.js":   "",
		"src/Acme/FooBundle/Resources/public/css/a.css": "",
		"src/Acme/BarBundle/Resources/public/js/b.js":   "",
	}
}

func setupApp(t *testing.T, root string, mutate func(*Config)) (*App, *recordingNotifier, *testutil.SafeBuffer) {
	t.Helper()

	raw := Config{
		ProjectRoot: root,
		VersionFile: filepath.Join(root, ".versioncontrol"),
		Workers:     2,
		LogLevel:    "debug",
		LogFormat:   "text",
	}
	if mutate != nil {
		mutate(&raw)
	}
	cfg, err := NewConfig(raw)
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	rec := &recordingNotifier{}
	a, err := NewApp(logs, cfg, hcl_adapter.NewLoader(), facts.NewLoader(), WithNotifier(rec))
	require.NoError(t, err)
	t.Cleanup(func() {
		if os.Getenv("ASSETGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, rec, logs
}

func TestRun_EndToEnd(t *testing.T) {
	root := testutil.NewProject(t, projectFiles())
	a, rec, _ := setupApp(t, root, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, version.Token(0), res.Plan.Version)
	assert.Empty(t, res.Plan.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []string{"bar", "foo"}, res.Plan.Bundles())
	assert.Equal(t, filepath.Join(root, "generated", "plan.json"), res.PlanPath)
	assert.Equal(t, []string{"bar", "foo"}, res.Changed)
	assert.NotEmpty(t, res.Diff)

	data, err := os.ReadFile(res.PlanPath)
	require.NoError(t, err)
	doc, err := plan.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, version.Token(0), doc.Version)

	last := doc.Steps[len(doc.Steps)-1]
	assert.Equal(t, "project.shell.cache_clear", last.Key())
	assert.Equal(t, root, last.Options[plan.OptionCwd])

	foo := res.Plan.StepsOf("foo")
	require.NotEmpty(t, foo)
	assert.Equal(t, []string{"src/Acme/FooBundle/Resources/public/js/a.js"}, foo[0].Inputs)

	require.Len(t, rec.events, 2)
	assert.Equal(t, notify.EventBundleChanged, rec.events[0].Name)
	assert.Equal(t, 2.0, promtest.ToFloat64(a.Metrics().BundlesDiscovered))
	assert.Equal(t, 2.0, promtest.ToFloat64(a.Metrics().PlanSteps.WithLabelValues("copy")))
	assert.Equal(t, 0.0, promtest.ToFloat64(a.Metrics().PlanSteps.WithLabelValues("compress-image")))
	assert.Equal(t, 10, promtest.CollectAndCount(a.Metrics().PlanSteps))
}

func TestRun_SecondRunReportsOnlyChangedBundles(t *testing.T) {
	root := testutil.NewProject(t, projectFiles())

	first, _, _ := setupApp(t, root, nil)
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	testutil.WriteTree(t, root, map[string]string{
		"src/Acme/BarBundle/Resources/public/js/c.js": "",
	})

	second, rec, _ := setupApp(t, root, nil)
	res, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, version.Token(1), res.Plan.Version)
	assert.Equal(t, []string{"bar"}, res.Changed)
	assert.Contains(t, res.Diff, "+")
	require.Len(t, rec.events, 1)
	assert.Equal(t, "bar", rec.events[0].Bundle)
	assert.Equal(t, version.Token(1), rec.events[0].Version)

	data, err := os.ReadFile(filepath.Join(root, ".versioncontrol"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestRun_BundleFilter(t *testing.T) {
	root := testutil.NewProject(t, projectFiles())
	a, _, logs := setupApp(t, root, func(c *Config) { c.Only = []string{"f*"} })

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, res.Plan.Bundles())
	assert.Contains(t, logs.String(), "Bundle filter applied.")
}

func TestRun_PerBundleErrorsKeepThePlan(t *testing.T) {
	files := projectFiles()
	files["settings.hcl"] = `
glob {
  css        = true
  browserify = true
}
`
	root := testutil.NewProject(t, files)
	a, _, _ := setupApp(t, root, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Plan.Errors, 2)
	assert.Empty(t, res.Plan.Steps)

	_, statErr := os.Stat(res.PlanPath)
	assert.NoError(t, statErr, "the plan is written even when bundles fail")
}

func TestRun_UnreadableBundleDegrades(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := testutil.NewProject(t, projectFiles())
	locked := filepath.Join(root, "src", "Acme", "BarBundle", "Resources")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	a, _, _ := setupApp(t, root, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Plan.Errors)
	assert.Equal(t, []string{"bar", "foo"}, res.Plan.Bundles())

	require.Len(t, res.Warnings, 1)
	var warning *asset.ClassificationWarning
	require.True(t, errors.As(res.Warnings[0], &warning), "expected a ClassificationWarning, got %v", res.Warnings[0])
	assert.Equal(t, "Acme/BarBundle", warning.Bundle)

	bar := res.Plan.StepsOf("bar")
	require.Len(t, bar, 1)
	assert.Equal(t, "bar.copy", bar[0].Key())
	assert.Empty(t, bar[0].Inputs)

	foo := res.Plan.StepsOf("foo")
	require.NotEmpty(t, foo)
	assert.Equal(t, []string{"src/Acme/FooBundle/Resources/public/js/a.js"}, foo[0].Inputs)
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("missing source directory", func(t *testing.T) {
		root := testutil.NewProject(t, map[string]string{"settings.hcl": settingsHCL})
		a, _, _ := setupApp(t, root, nil)

		_, err := a.Run(context.Background())
		var derr *bundle.DiscoveryError
		assert.True(t, errors.As(err, &derr))
	})

	t.Run("malformed settings", func(t *testing.T) {
		files := projectFiles()
		files["settings.hcl"] = "glob {"
		root := testutil.NewProject(t, files)
		a, _, _ := setupApp(t, root, nil)

		_, err := a.Run(context.Background())
		var lerr *config.LoadError
		assert.True(t, errors.As(err, &lerr))
	})

	t.Run("unwritable version file", func(t *testing.T) {
		root := testutil.NewProject(t, projectFiles())
		a, _, _ := setupApp(t, root, func(c *Config) {
			c.VersionFile = filepath.Join(root, "composer.json", ".versioncontrol")
		})

		_, err := a.Run(context.Background())
		var perr *version.PersistError
		assert.True(t, errors.As(err, &perr))
	})
}

func TestBundles(t *testing.T) {
	root := testutil.NewProject(t, projectFiles())
	a, _, _ := setupApp(t, root, nil)

	bundles, err := a.Bundles(context.Background())
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "Acme/BarBundle", bundles[0].Path)
	assert.Equal(t, "foo", bundles[1].Title)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	_, err = NewConfig(Config{ProjectRoot: ".", Only: []string{"[unclosed"}})
	assert.Error(t, err)

	_, err = NewConfig(Config{ProjectRoot: ".", GeneratedDir: "/abs"})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ProjectRoot: "."})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.ProjectRoot))
	assert.Equal(t, cfg.ProjectRoot, cfg.SettingsPath)
	assert.Equal(t, "src", cfg.SourceDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "generated", "plan.json"), cfg.PlanFile)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, ".versioncontrol"), cfg.VersionFile)
	assert.Equal(t, 1, cfg.Workers)
}

func TestNewApp_LiveReloadURL(t *testing.T) {
	cfg, err := NewConfig(Config{ProjectRoot: ".", LiveReloadURL: "not-a-url"})
	require.NoError(t, err)
	_, err = NewApp(&testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader(), facts.NewLoader())
	assert.Error(t, err)
}
