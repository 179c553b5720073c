package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/app"
	"github.com/specialistvlad/assetgrid/internal/facts"
	"github.com/specialistvlad/assetgrid/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

// Exit codes returned through ExitError.
const (
	ExitUsage      = 2
	ExitPlanErrors = 3
)

// Environment variables that provide flag defaults.
const (
	EnvLogLevel      = "ASSETGRID_LOG_LEVEL"
	EnvLogFormat     = "ASSETGRID_LOG_FORMAT"
	EnvLiveReloadURL = "ASSETGRID_LIVERELOAD_URL"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// options collects the raw flag values shared by every command.
type options struct {
	project          string
	settings         string
	sourceDir        string
	generatedDir     string
	publicDir        string
	planFile         string
	versionFile      string
	only             []string
	workers          int
	logLevel         string
	logFormat        string
	liveReloadURL    string
	liveReloadScript string
	metricsFile      string
	showDiff         bool
}

// Execute parses args and runs the selected command. Command output goes to
// outW, logs and per-bundle errors to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Running the root command without a
// subcommand plans the project, like "plan".
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "assetgrid [PROJECT_ROOT]",
		Short: "Plan the asset build pipeline of a bundle-based PHP project.",
		Long: `assetgrid discovers the bundles of a project, classifies their public
assets and writes a deterministic build plan: an ordered list of
concatenate, minify, rewrite, lint, compress and copy steps with their
inputs, outputs and dependencies.`,
		Args:          projectArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, args, outW, errW)
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.project, "project", "p", "", "Project root (defaults to the positional argument or the working directory).")
	flags.StringVar(&opts.settings, "settings", "", "Settings file or directory holding settings.hcl or settings.json (defaults to the project root).")
	flags.StringVar(&opts.sourceDir, "source-dir", "", "Directory holding the bundles, relative to the project root (default \"src\").")
	flags.StringVar(&opts.generatedDir, "generated-dir", "", "Directory for generated artifacts, relative to the project root (default \"generated\").")
	flags.StringVar(&opts.publicDir, "public-dir", "", "Public web directory, relative to the project root (default \"web\").")
	flags.StringVar(&opts.planFile, "plan-file", "", "Where to write the plan (default <generated-dir>/plan.json).")
	flags.StringVar(&opts.versionFile, "version-file", "", "Version counter file (default <project>/.versioncontrol).")
	flags.StringArrayVar(&opts.only, "only", nil, "Restrict planning to bundles whose title matches this glob. Repeatable.")
	flags.IntVar(&opts.workers, "workers", 4, "Number of bundles classified concurrently.")
	flags.StringVar(&opts.logLevel, "log-level", envOr(EnvLogLevel, "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", envOr(EnvLogFormat, "text"), "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.liveReloadURL, "livereload-url", envOr(EnvLiveReloadURL, ""), "Socket.IO endpoint that receives bundle.changed events.")
	flags.StringVar(&opts.liveReloadScript, "livereload-script", "", "Markup injected in developer mode to load the live-reload client.")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file.")

	planCmd := &cobra.Command{
		Use:   "plan [PROJECT_ROOT]",
		Short: "Write the build plan and report changed bundles.",
		Args:  projectArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, args, outW, errW)
		},
	}
	planCmd.Flags().BoolVar(&opts.showDiff, "diff", false, "Print a unified diff against the previous plan.")

	bundlesCmd := &cobra.Command{
		Use:   "bundles [PROJECT_ROOT]",
		Short: "List the bundles the configuration selects.",
		Args:  projectArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundles(cmd.Context(), opts, args, outW, errW)
		},
	}

	root.AddCommand(planCmd, bundlesCmd)
	return root
}

func projectArgs(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError("expected at most one project root, got %d arguments", len(args))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// config validates the flag values and turns them into an app.Config.
func (o *options) config(args []string) (*app.Config, error) {
	slog.Debug("CLI parameter validation started.")

	project := o.project
	switch {
	case project != "" && len(args) == 1 && args[0] != project:
		return nil, usageError("project root given twice: --project %q and argument %q", project, args[0])
	case project == "" && len(args) == 1:
		project = args[0]
	case project == "":
		project = "."
	}

	logFormat := strings.ToLower(o.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(o.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if o.workers < 1 {
		return nil, usageError("invalid workers: must be at least 1")
	}

	cfg, err := app.NewConfig(app.Config{
		ProjectRoot:      project,
		SettingsPath:     o.settings,
		SourceDir:        o.sourceDir,
		GeneratedDir:     o.generatedDir,
		PublicDir:        o.publicDir,
		PlanFile:         o.planFile,
		VersionFile:      o.versionFile,
		Only:             o.only,
		Workers:          o.workers,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		LiveReloadURL:    o.liveReloadURL,
		LiveReloadScript: o.liveReloadScript,
		MetricsFile:      o.metricsFile,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}

	slog.Debug("CLI parameter validation complete.", "project_root", cfg.ProjectRoot)
	return cfg, nil
}

func newApp(opts *options, args []string, errW io.Writer) (*app.App, error) {
	cfg, err := opts.config(args)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(errW, cfg, hcl_adapter.NewLoader(), facts.NewLoader())
	if err != nil {
		return nil, usageError("%v", err)
	}
	return a, nil
}

func runPlan(ctx context.Context, opts *options, args []string, outW, errW io.Writer) (err error) {
	a, err := newApp(opts, args, errW)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}

	p := result.Plan
	fmt.Fprintf(outW, "Plan version %s written to %s (%d steps, %d bundles).\n", p.Version, result.PlanPath, len(p.Steps), len(p.Bundles()))
	for _, title := range p.Bundles() {
		fmt.Fprintf(outW, "  %s: %d steps\n", title, len(p.StepsOf(title)))
	}
	if len(result.Changed) > 0 {
		fmt.Fprintf(outW, "Changed bundles: %s\n", strings.Join(result.Changed, ", "))
	} else {
		fmt.Fprintln(outW, "No bundle changed since the previous plan.")
	}
	if opts.showDiff && result.Diff != "" {
		fmt.Fprint(outW, result.Diff)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(errW, "warning: %v\n", w)
	}
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintf(errW, "error: %v\n", e)
		}
		return &ExitError{Code: ExitPlanErrors, Message: fmt.Sprintf("plan written with %d bundle error(s)", len(p.Errors))}
	}
	return nil
}

func runBundles(ctx context.Context, opts *options, args []string, outW, errW io.Writer) (err error) {
	a, err := newApp(opts, args, errW)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	bundles, err := a.Bundles(ctx)
	if err != nil {
		return err
	}
	for _, b := range bundles {
		fmt.Fprintf(outW, "%s\t%s\t%s\n", b.Title, b.Namespace, b.Path)
	}
	return nil
}
