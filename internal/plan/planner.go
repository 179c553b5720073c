package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/bundle"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/inmemorytopology"
	"github.com/specialistvlad/assetgrid/internal/nodeid"
	"github.com/specialistvlad/assetgrid/internal/outpath"
	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/specialistvlad/assetgrid/internal/topologystore"
	"github.com/specialistvlad/assetgrid/internal/version"
)

// DefaultSourceRoot is the module root relative to the project root.
const DefaultSourceRoot = "src"

// Input is everything a planning run depends on.
type Input struct {
	// Bundles in discovery order.
	Bundles []bundle.Descriptor
	// Manifests keyed by bundle title.
	Manifests map[string]asset.Manifest
	Settings  *config.Settings
	Facts     *config.Facts
	Version   version.Token
}

// Planner turns discovered bundles and their manifests into a Plan.
type Planner struct {
	Paths outpath.Resolver
	// SourceRoot is prefixed to bundle paths so step inputs are relative to
	// the project root.
	SourceRoot string
	// LiveReloadScript is appended to the script tag in developer mode.
	LiveReloadScript string

	newStore func() topologystore.Store
}

// New returns a Planner writing below the roots of paths.
func New(paths outpath.Resolver) *Planner {
	return &Planner{
		Paths:            paths,
		SourceRoot:       DefaultSourceRoot,
		LiveReloadScript: DefaultLiveReloadScript,
		newStore:         inmemorytopology.New,
	}
}

// Plan assembles the build plan. Per-bundle failures are collected in
// Plan.Errors; a returned error means no plan could be produced at all.
func (p *Planner) Plan(ctx context.Context, in Input) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if in.Settings == nil {
		return nil, fmt.Errorf("planning requires settings")
	}
	facts := in.Facts
	if facts == nil {
		facts = &config.Facts{IsDev: true}
	}

	uglify, err := uglifyOptions(in.Settings.Uglify)
	if err != nil {
		return nil, err
	}

	var (
		accepted []*bundlePlan
		errs     []error
	)
	claimed := make(map[string]string) // output -> step key, across bundles

	for _, b := range in.Bundles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bundleLogger := logger.With("bundle", b.Title)

		bp, err := p.planBundle(in, facts, b, uglify)
		if err == nil {
			err = claimOutputs(bp, claimed)
		}
		if err != nil {
			bundleLogger.Warn("Dropping inconsistent bundle plan.", "error", err)
			errs = append(errs, err)
			continue
		}
		bundleLogger.Debug("Bundle planned.", "steps", len(bp.steps))
		accepted = append(accepted, bp)
	}

	steps := make([]*step.Step, 0)
	for _, bp := range accepted {
		steps = append(steps, bp.steps...)
	}
	for _, bp := range accepted {
		if bp.entities != nil {
			steps = append(steps, bp.entities)
		}
	}
	execSteps, execErrs := execSteps(in.Settings.Exec, facts.ProjectRoot)
	steps = append(steps, execSteps...)
	errs = append(errs, execErrs...)

	ordered, err := p.order(ctx, steps)
	if err != nil {
		return nil, err
	}

	logger.Info("Plan assembled.", "version", in.Version, "bundles", len(accepted), "steps", len(ordered), "errors", len(errs))
	return &Plan{Version: in.Version, Steps: ordered, Errors: errs}, nil
}

// planBundle builds the sub-plan of a single bundle.
func (p *Planner) planBundle(in Input, facts *config.Facts, b bundle.Descriptor, uglify json.RawMessage) (*bundlePlan, error) {
	title := b.Title
	id, err := nodeid.New(title, string(step.Copy), "")
	if err != nil {
		return nil, &InconsistencyError{Bundle: title, Reason: "title is not a valid step identifier", Err: err}
	}
	if id.IsProject() {
		return nil, &InconsistencyError{Bundle: title, Reason: "title " + nodeid.ProjectScope + " is reserved for project-level steps"}
	}
	m, ok := in.Manifests[title]
	if !ok || m == nil {
		return nil, &InconsistencyError{Bundle: title, Reason: "bundle was not classified"}
	}

	flags := in.Settings.Glob
	if flags.Browserify && !m.Has(asset.Script) {
		return nil, &InconsistencyError{Bundle: title, Step: title + "." + string(step.BundleScript), Reason: "browserify requested but the js class is disabled"}
	}
	if flags.ESLint && !m.Has(asset.Script) {
		return nil, &InconsistencyError{Bundle: title, Step: title + "." + string(step.Lint) + ".script", Reason: "eslint requested but the js class is disabled"}
	}

	sources := func(c asset.Class) []string {
		files := m[c]
		out := make([]string, 0, len(files))
		for _, f := range files {
			out = append(out, path.Join(p.SourceRoot, b.Path, f))
		}
		return out
	}
	newStep := func(kind step.Kind, class asset.Class, variant string) *step.Step {
		s := step.New(nodeid.MustNew(title, string(kind), variant), kind)
		s.Bundle = title
		s.Class = class
		return s
	}

	bp := newBundlePlan(b)
	var concatScript, concatStyle, minifyStyle, rewrite, scriptVariant, minifyScript *step.Step

	if m.NonEmpty(asset.Script) && !flags.Browserify {
		concatScript = newStep(step.Concatenate, asset.Script, string(asset.Script))
		concatScript.Inputs = sources(asset.Script)
		concatScript.Output = p.Paths.Resolve(title, asset.Script, step.Concatenate)
		if err := bp.add(concatScript); err != nil {
			return nil, err
		}
	}

	if m.NonEmpty(asset.Style) {
		concatStyle = newStep(step.Concatenate, asset.Style, string(asset.Style))
		concatStyle.Inputs = sources(asset.Style)
		concatStyle.Output = p.Paths.Resolve(title, asset.Style, step.Concatenate)
		if err := bp.add(concatStyle); err != nil {
			return nil, err
		}

		minifyStyle = newStep(step.MinifyStyle, asset.Style, "")
		minifyStyle.Inputs = []string{concatStyle.Output}
		minifyStyle.Output = p.Paths.Resolve(title, asset.Style, step.MinifyStyle)
		if err := bp.add(minifyStyle, concatStyle.ID); err != nil {
			return nil, err
		}

		rewrite = newStep(step.RewriteReferences, asset.Style, "")
		rewrite.Inputs = []string{minifyStyle.Output}
		rewrite.Output = p.Paths.Resolve(title, asset.Style, step.RewriteReferences)
		if err := bp.add(rewrite, concatStyle.ID, minifyStyle.ID); err != nil {
			return nil, err
		}
	}

	if m.NonEmpty(asset.Script) {
		scriptVariant = concatScript
		if flags.Browserify {
			scriptVariant = newStep(step.BundleScript, asset.Script, "")
			scriptVariant.Inputs = sources(asset.Script)
			scriptVariant.Output = p.Paths.Resolve(title, asset.Script, step.BundleScript)
			if err := bp.add(scriptVariant); err != nil {
				return nil, err
			}
		}

		minifyScript = newStep(step.MinifyScript, asset.Script, "")
		minifyScript.Inputs = []string{scriptVariant.Output}
		minifyScript.Output = p.Paths.MinifiedScript(title, scriptVariant.Kind)
		if uglify != nil {
			minifyScript.SetOption(OptionUglify, uglify)
		}
		if err := bp.add(minifyScript, scriptVariant.ID); err != nil {
			return nil, err
		}
	}

	lints := []struct {
		enabled bool
		class   asset.Class
		linter  string
	}{
		{flags.ESLint, asset.Script, "eslint"},
		{flags.YAML, asset.Data, "yaml"},
		{flags.PHP, asset.Server, "php"},
	}
	for _, l := range lints {
		if !l.enabled || !m.NonEmpty(l.class) {
			continue
		}
		lint := newStep(step.Lint, l.class, string(l.class))
		lint.Inputs = sources(l.class)
		lint.SetOption(OptionLinter, l.linter)
		if err := bp.add(lint); err != nil {
			return nil, err
		}
	}

	if m.NonEmpty(asset.Markup) {
		markup := newStep(step.RewriteMarkupReferences, asset.Markup, "")
		markup.Inputs = sources(asset.Markup)
		markup.Output = p.Paths.Resolve(title, asset.Markup, step.RewriteMarkupReferences)
		markup.SetOption(OptionPrefix, "")
		markup.SetOption(OptionFlatten, true)
		markup.SetOption(OptionVariables, markupVariables(title, in.Version, facts.IsDev, p.LiveReloadScript))
		deps := ids(concatStyle, minifyStyle, rewrite, concatScript, scriptVariant, minifyScript)
		if err := bp.add(markup, deps...); err != nil {
			return nil, err
		}
	}

	if m.NonEmpty(asset.Image) {
		images := newStep(step.CompressImage, asset.Image, "")
		images.Inputs = sources(asset.Image)
		images.Output = p.Paths.Resolve(title, asset.Image, step.CompressImage)
		images.SetOption(OptionOptimizer, imageOptimizers())
		if err := bp.add(images); err != nil {
			return nil, err
		}
	}

	cp := newStep(step.Copy, "", "")
	cp.Output = p.Paths.Resolve(title, "", step.Copy)
	cp.SetOption(OptionCwd, p.Paths.BundleDir(title))
	cp.SetOption(OptionFilter, "isFile")
	cp.NoOp = !in.Settings.Copy
	var upstream []nodeid.Address
	for _, s := range bp.steps {
		upstream = append(upstream, s.ID)
		// A failing lint blocks the copy but produces nothing to deploy.
		if !s.Kind.Diagnostic() {
			cp.Inputs = append(cp.Inputs, s.Output)
		}
	}
	if err := bp.add(cp, upstream...); err != nil {
		return nil, err
	}

	if in.Settings.Entities {
		entities := step.New(nodeid.MustNew(title, string(step.Shell), "entities"), step.Shell)
		entities.Bundle = title
		entities.SetOption(OptionCommand, entitiesCommand(facts.FrameworkMajor, b.Namespace))
		entities.SetOption(OptionCwd, facts.ProjectRoot)
		bp.entities = entities
	}

	return bp, nil
}

// claimOutputs reserves the outputs of bp, failing when an earlier bundle
// already produces one of them.
func claimOutputs(bp *bundlePlan, claimed map[string]string) error {
	for _, s := range bp.steps {
		if s.Output == "" {
			continue
		}
		if owner, taken := claimed[s.Output]; taken {
			return &InconsistencyError{
				Bundle: bp.bundle.Title,
				Step:   s.Key(),
				Reason: "output " + s.Output + " already produced by " + owner,
			}
		}
	}
	for _, s := range bp.steps {
		if s.Output != "" {
			claimed[s.Output] = s.Key()
		}
	}
	return nil
}

// execSteps returns one project-level shell step per exec entry, sorted by name.
func execSteps(exec map[string]string, projectRoot string) ([]*step.Step, []error) {
	names := make([]string, 0, len(exec))
	for name := range exec {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		steps []*step.Step
		errs  []error
	)
	for _, name := range names {
		id, err := nodeid.New(nodeid.ProjectScope, string(step.Shell), name)
		if err != nil {
			errs = append(errs, &InconsistencyError{Step: name, Reason: "exec name is not a valid step identifier", Err: err})
			continue
		}
		s := step.New(id, step.Shell)
		s.SetOption(OptionCommand, exec[name])
		s.SetOption(OptionCwd, projectRoot)
		steps = append(steps, s)
	}
	return steps, errs
}

// order registers the steps in a fresh topology store and returns them in
// topological order, verifying that every dependency comes first.
func (p *Planner) order(ctx context.Context, steps []*step.Step) ([]*step.Step, error) {
	store := p.newStore()
	for _, s := range steps {
		if err := store.AddStep(ctx, s); err != nil {
			return nil, err
		}
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if err := store.AddDependency(ctx, dep, s.ID); err != nil {
				return nil, fmt.Errorf("failed to link %s: %w", s.Key(), err)
			}
		}
	}

	ordered, err := store.Order(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan is not acyclic: %w", err)
	}

	seen := make(map[nodeid.Address]bool, len(ordered))
	for _, s := range ordered {
		deps, err := store.DependenciesOf(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if len(deps) != len(s.DependsOn) {
			return nil, fmt.Errorf("step %s has %d recorded dependencies, expected %d", s.Key(), len(deps), len(s.DependsOn))
		}
		for _, dep := range deps {
			if !seen[dep] {
				return nil, fmt.Errorf("step %s scheduled before its dependency %s", s.Key(), dep)
			}
		}
		seen[s.ID] = true
	}
	return ordered, nil
}
