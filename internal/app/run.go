package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/bundle"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/diff"
	"github.com/specialistvlad/assetgrid/internal/fsutil"
	"github.com/specialistvlad/assetgrid/internal/notify"
	"github.com/specialistvlad/assetgrid/internal/outpath"
	"github.com/specialistvlad/assetgrid/internal/plan"
	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/specialistvlad/assetgrid/internal/version"
	"golang.org/x/sync/errgroup"
)

// Result summarizes a planning run.
type Result struct {
	Plan     *plan.Plan
	PlanPath string
	// Changed lists the bundles whose steps differ from the previous plan.
	Changed []string
	// Diff is the unified diff against the previous plan file, "" when equal.
	Diff string
	// Warnings are non-fatal problems such as unreadable bundles.
	Warnings []error
}

// Run executes one planning run: it loads configuration, discovers and
// classifies bundles, issues a version token, assembles the plan, writes it
// and reports what changed since the previous run.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	facts, settings, err := a.loadConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	bundles, err := a.discover(ctx)
	if err != nil {
		return nil, err
	}

	var (
		manifests map[string]asset.Manifest
		warnings  []error
		token     version.Token
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		manifests, warnings = asset.ClassifyAll(gctx, filepath.Join(a.config.ProjectRoot, a.config.SourceDir), bundles, settings.Glob, a.config.Workers)
		return nil
	})
	g.Go(func() error {
		var err error
		token, err = a.stamper.Next(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to issue version token: %w", err)
	}
	a.metrics.ObservePhase("classify", start)
	a.metrics.BundleErrors.WithLabelValues("classification").Add(float64(len(warnings)))
	a.metrics.PlanVersion.Set(float64(token))

	start = time.Now()
	planner := plan.New(outpath.New(filepath.ToSlash(a.config.GeneratedDir), filepath.ToSlash(a.config.PublicDir)))
	planner.SourceRoot = filepath.ToSlash(a.config.SourceDir)
	if a.config.LiveReloadScript != "" {
		planner.LiveReloadScript = a.config.LiveReloadScript
	}
	p, err := planner.Plan(ctx, plan.Input{
		Bundles:   bundles,
		Manifests: manifests,
		Settings:  settings,
		Facts:     facts,
		Version:   token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble plan: %w", err)
	}
	a.metrics.ObservePhase("plan", start)
	a.recordPlan(p)

	result := &Result{Plan: p, PlanPath: a.config.PlanFile, Warnings: warnings}
	if err := a.writePlan(ctx, p, result); err != nil {
		return nil, err
	}

	if len(result.Changed) > 0 {
		events := notify.BundleChanged(result.Changed, p.Version, result.PlanPath)
		if err := a.notifier.Notify(ctx, events); err != nil {
			logger.Warn("Failed to deliver change notifications.", "error", err)
		}
	}

	a.metrics.LastRun.SetToCurrentTime()
	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.config.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics.", "error", err)
		}
	}

	logger.Info("Plan written.", "path", result.PlanPath, "version", p.Version, "steps", len(p.Steps), "changed", len(result.Changed), "errors", len(p.Errors), "warnings", len(warnings))
	logger.Debug("App.Run method finished.")
	return result, nil
}

// Bundles discovers the bundles the configuration selects, without planning.
func (a *App) Bundles(ctx context.Context) ([]bundle.Descriptor, error) {
	return a.discover(a.context(ctx))
}

func (a *App) loadConfiguration(ctx context.Context) (*config.Facts, *config.Settings, error) {
	facts, err := a.facts.Load(ctx, a.config.ProjectRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project facts: %w", err)
	}
	settings, err := a.settings.Load(ctx, a.config.SettingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Configuration loaded.", "framework_major", facts.FrameworkMajor, "dev", facts.IsDev, "glob", settings.Glob)
	return facts, settings, nil
}

// discover finds bundles below the source directory and applies the filter.
func (a *App) discover(ctx context.Context) ([]bundle.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	all, err := bundle.Discover(ctx, filepath.Join(a.config.ProjectRoot, a.config.SourceDir))
	if err != nil {
		return nil, err
	}
	a.metrics.ObservePhase("discover", start)

	filter := a.config.bundleFilter()
	if len(filter) == 0 {
		a.metrics.BundlesDiscovered.Set(float64(len(all)))
		return all, nil
	}

	var selected []bundle.Descriptor
	for _, b := range all {
		for _, g := range filter {
			if g.Match(b.Title) {
				selected = append(selected, b)
				break
			}
		}
	}
	logger.Info("Bundle filter applied.", "discovered", len(all), "selected", len(selected))
	a.metrics.BundlesDiscovered.Set(float64(len(selected)))
	return selected, nil
}

func (a *App) recordPlan(p *plan.Plan) {
	counts := make(map[step.Kind]int)
	for _, s := range p.Steps {
		counts[s.Kind]++
	}
	// Every kind is reported so a kind that disappears drops to zero.
	for _, kind := range step.Kinds() {
		a.metrics.PlanSteps.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
	a.metrics.BundleErrors.WithLabelValues("inconsistency").Add(float64(len(p.Errors)))
}

// writePlan stores the plan and compares it with the file it replaces.
func (a *App) writePlan(ctx context.Context, p *plan.Plan, result *Result) error {
	logger := ctxlog.FromContext(ctx)

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return err
	}

	previous, err := os.ReadFile(a.config.PlanFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read previous plan: %w", err)
	}

	if err := fsutil.WriteFileAtomic(a.config.PlanFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	var prevDoc *plan.Document
	if len(previous) > 0 {
		prevDoc, err = plan.Decode(bytes.NewReader(previous))
		if err != nil {
			logger.Warn("Previous plan is unreadable, treating every bundle as changed.", "error", err)
			prevDoc = nil
		}
	}
	result.Changed = diff.ChangedBundles(prevDoc, p.Document())

	name := filepath.Base(a.config.PlanFile)
	result.Diff, err = diff.Unified(name+" (previous)", name, previous, buf.Bytes(), diff.DefaultContext)
	if err != nil {
		logger.Warn("Failed to diff plans.", "error", err)
	}
	return nil
}
