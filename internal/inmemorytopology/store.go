package inmemorytopology

import (
	"context"
	"slices"
	"sync"

	"github.com/specialistvlad/assetgrid/internal/nodeid"
	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/specialistvlad/assetgrid/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	order []string // registration order of step IDs
	steps map[string]*step.Step
	deps  map[string]map[string]struct{} // Key: step ID, Value: set of dependency IDs
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		steps: make(map[string]*step.Step),
		deps:  make(map[string]map[string]struct{}),
	}
}

// AddStep adds a new step to the store. IDs must be unique.
func (s *Store) AddStep(ctx context.Context, st *step.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := st.Key()
	if _, exists := s.steps[key]; exists {
		return topologystore.DuplicateStepError(key)
	}
	s.steps[key] = st
	s.order = append(s.order, key)
	return nil
}

// AddDependency creates a dependency link from one step to another.
func (s *Store) AddDependency(ctx context.Context, from, to nodeid.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromKey := from.String()
	toKey := to.String()

	if _, exists := s.steps[fromKey]; !exists {
		return topologystore.UnknownStepError("dependency source", fromKey)
	}
	if _, exists := s.steps[toKey]; !exists {
		return topologystore.UnknownStepError("dependency target", toKey)
	}

	if s.deps[toKey] == nil {
		s.deps[toKey] = make(map[string]struct{})
	}
	s.deps[toKey][fromKey] = struct{}{}
	return nil
}

// DependenciesOf returns the addresses of all steps that the given step depends on.
func (s *Store) DependenciesOf(ctx context.Context, id nodeid.Address) ([]nodeid.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := id.String()
	if _, exists := s.steps[key]; !exists {
		return nil, topologystore.UnknownStepError("requested", key)
	}

	deps := make([]nodeid.Address, 0, len(s.deps[key]))
	for depKey := range s.deps[key] {
		deps = append(deps, s.steps[depKey].ID)
	}
	slices.SortFunc(deps, step.Compare)
	return deps, nil
}

// Order returns the steps in a stable topological order (Kahn's algorithm,
// ready steps taken in registration order).
func (s *Store) Order(ctx context.Context) ([]*step.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make(map[string]int, len(s.order))
	dependents := make(map[string][]string, len(s.order))
	for _, key := range s.order {
		pending[key] = len(s.deps[key])
	}
	// Walk in registration order so dependents lists are deterministic.
	for _, key := range s.order {
		for dep := range s.deps[key] {
			dependents[dep] = append(dependents[dep], key)
		}
	}
	position := make(map[string]int, len(s.order))
	for i, key := range s.order {
		position[key] = i
	}
	for dep := range dependents {
		slices.SortFunc(dependents[dep], func(a, b string) int { return position[a] - position[b] })
	}

	var ready []string
	for _, key := range s.order {
		if pending[key] == 0 {
			ready = append(ready, key)
		}
	}

	result := make([]*step.Step, 0, len(s.order))
	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := ready[0]
		ready = ready[1:]
		result = append(result, s.steps[key])

		for _, dependent := range dependents[key] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = insertByPosition(ready, dependent, position)
			}
		}
	}

	if len(result) != len(s.order) {
		var remaining []string
		for _, key := range s.order {
			if pending[key] > 0 {
				remaining = append(remaining, key)
			}
		}
		return nil, topologystore.CycleError(remaining)
	}
	return result, nil
}

// insertByPosition keeps the ready queue sorted by registration position.
func insertByPosition(ready []string, key string, position map[string]int) []string {
	i, _ := slices.BinarySearchFunc(ready, key, func(a, b string) int { return position[a] - position[b] })
	return slices.Insert(ready, i, key)
}
