// Package notify tells interested parties which bundles changed between two
// planning runs, so a live-reload server can refresh the affected pages.
package notify

import (
	"context"
	"errors"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/version"
)

// EventBundleChanged is emitted once per bundle whose steps changed.
const EventBundleChanged = "bundle.changed"

// Event describes one changed bundle.
type Event struct {
	Name    string        `json:"event"`
	Bundle  string        `json:"bundle"`
	Version version.Token `json:"version"`
	// Plan is the path of the plan file that contains the change.
	Plan string `json:"plan"`
}

// Notifier delivers change events.
type Notifier interface {
	Notify(ctx context.Context, events []Event) error
	Close() error
}

// BundleChanged builds the events for the given bundle titles.
func BundleChanged(titles []string, v version.Token, planPath string) []Event {
	events := make([]Event, 0, len(titles))
	for _, title := range titles {
		events = append(events, Event{Name: EventBundleChanged, Bundle: title, Version: v, Plan: planPath})
	}
	return events
}

// Log writes events to the context logger.
type Log struct{}

// Notify logs every event at info level.
func (Log) Notify(ctx context.Context, events []Event) error {
	logger := ctxlog.FromContext(ctx)
	for _, e := range events {
		logger.Info("Bundle changed.", "event", e.Name, "bundle", e.Bundle, "version", e.Version, "plan", e.Plan)
	}
	return nil
}

// Close is a no-op.
func (Log) Close() error { return nil }

// Multi fans events out to every notifier, continuing past failures.
type Multi []Notifier

// Notify delivers events to all notifiers and joins their errors.
func (m Multi) Notify(ctx context.Context, events []Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all notifiers and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
