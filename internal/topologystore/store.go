// Package topologystore defines the interface for storing and retrieving the
// static structure of a build plan: its steps and the "must run before"
// edges between them.
//
// A store is created once per planning run, populated while the plan is
// assembled, and read when the plan is ordered and serialized. It is
// discarded with the run.
package topologystore

import (
	"context"

	"github.com/specialistvlad/assetgrid/internal/nodeid"
	"github.com/specialistvlad/assetgrid/internal/step"
)

// Store manages the topology of a directed acyclic graph of steps.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// AddStep registers a step. A step whose ID is already present is
	// rejected with a *GraphError wrapping ErrDuplicateStep.
	AddStep(ctx context.Context, s *step.Step) error

	// AddDependency records that the step 'to' depends on the step 'from',
	// i.e. 'from' must run first. Both steps must already be registered.
	AddDependency(ctx context.Context, from, to nodeid.Address) error

	// DependenciesOf returns the addresses the given step directly depends
	// on, sorted. It fails when the step is unknown.
	DependenciesOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error)

	// Order returns every step in a topological order. Among steps that are
	// ready at the same time, registration order wins, so the result is
	// deterministic. A cycle yields a *GraphError.
	Order(ctx context.Context) ([]*step.Step, error)
}
