package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/metrics"
	"github.com/specialistvlad/assetgrid/internal/notify"
	"github.com/specialistvlad/assetgrid/internal/version"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	config   *Config
	settings config.SettingsLoader
	facts    config.FactsLoader
	stamper  *version.Stamper
	notifier notify.Notifier
	metrics  *metrics.Recorder
}

// Option customizes an App.
type Option func(*App)

// WithNotifier replaces the notifier derived from the configuration.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// NewApp is the constructor for the main application. Logs go to logW.
func NewApp(logW io.Writer, cfg *Config, settings config.SettingsLoader, facts config.FactsLoader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		logger:   logger,
		config:   cfg,
		settings: settings,
		facts:    facts,
		stamper:  version.NewStamper(cfg.VersionFile),
		metrics:  metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.notifier == nil {
		notifiers := notify.Multi{notify.Log{}}
		if cfg.LiveReloadURL != "" {
			sio, err := notify.NewSocketIO(notify.SocketIOConfig{URL: cfg.LiveReloadURL})
			if err != nil {
				return nil, fmt.Errorf("failed to configure live-reload notifier: %w", err)
			}
			notifiers = append(notifiers, sio)
		}
		a.notifier = notifiers
	}
	return a, nil
}

// Metrics returns the run's metrics recorder.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Close releases the notifier connection.
func (a *App) Close() error {
	return a.notifier.Close()
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
