// Package step defines the unit of work a build plan is made of.
package step

import (
	"slices"

	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/nodeid"
)

// Step is a single vertex of the build plan: one transform an external
// executor runs for a bundle, or for the project as a whole.
type Step struct {
	// ID is the unique, structured identifier of the step.
	ID   nodeid.Address `json:"id"`
	Kind Kind           `json:"kind"`
	// Bundle is the title of the owning bundle. Empty for project-level steps.
	Bundle string `json:"bundle,omitempty"`
	// Class is the asset class the step derives from, when there is one.
	Class asset.Class `json:"class,omitempty"`

	// Inputs are ordered source paths; some are outputs of upstream steps.
	Inputs []string `json:"inputs"`
	// Output is the single destination. Directories end in a slash.
	Output string `json:"output,omitempty"`
	// DependsOn lists the steps that must complete first, sorted.
	DependsOn []nodeid.Address `json:"dependsOn"`
	// Options carries kind specific settings for the executor.
	Options map[string]any `json:"options,omitempty"`
	// NoOp marks a step that is listed for completeness but must not run.
	NoOp bool `json:"noop,omitempty"`
}

// New returns a step with empty, non-nil input and dependency lists.
func New(id nodeid.Address, kind Kind) *Step {
	return &Step{
		ID:        id,
		Kind:      kind,
		Inputs:    []string{},
		DependsOn: []nodeid.Address{},
	}
}

// Key returns the canonical string form of the step ID.
func (s *Step) Key() string {
	return s.ID.String()
}

// DependOn records a dependency on each of ids, keeping DependsOn sorted and
// free of duplicates.
func (s *Step) DependOn(ids ...nodeid.Address) {
	for _, id := range ids {
		if slices.Contains(s.DependsOn, id) {
			continue
		}
		s.DependsOn = append(s.DependsOn, id)
	}
	slices.SortFunc(s.DependsOn, Compare)
}

// SetOption stores a single executor option.
func (s *Step) SetOption(key string, value any) {
	if s.Options == nil {
		s.Options = make(map[string]any)
	}
	s.Options[key] = value
}

// Compare orders addresses by their canonical string.
func Compare(a, b nodeid.Address) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
