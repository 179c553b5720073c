package plan

import (
	"github.com/specialistvlad/assetgrid/internal/bundle"
	"github.com/specialistvlad/assetgrid/internal/nodeid"
	"github.com/specialistvlad/assetgrid/internal/step"
)

// bundlePlan collects the steps of one bundle before they are accepted into
// the plan.
type bundlePlan struct {
	bundle  bundle.Descriptor
	steps   []*step.Step
	byID    map[nodeid.Address]*step.Step
	outputs map[string]string
	// entities is emitted with the project-level steps.
	entities *step.Step
}

func newBundlePlan(b bundle.Descriptor) *bundlePlan {
	return &bundlePlan{
		bundle:  b,
		byID:    make(map[nodeid.Address]*step.Step),
		outputs: make(map[string]string),
	}
}

// add appends s after checking that every dependency is already part of the
// sub-plan and that its output is not claimed by another step.
func (bp *bundlePlan) add(s *step.Step, deps ...nodeid.Address) error {
	for _, dep := range deps {
		if _, ok := bp.byID[dep]; !ok {
			return &InconsistencyError{
				Bundle: bp.bundle.Title,
				Step:   s.Key(),
				Reason: "depends on pruned step " + dep.String(),
			}
		}
	}
	if s.Output != "" {
		if owner, taken := bp.outputs[s.Output]; taken {
			return &InconsistencyError{
				Bundle: bp.bundle.Title,
				Step:   s.Key(),
				Reason: "output " + s.Output + " already produced by " + owner,
			}
		}
		bp.outputs[s.Output] = s.Key()
	}
	s.DependOn(deps...)
	bp.steps = append(bp.steps, s)
	bp.byID[s.ID] = s
	return nil
}

// ids returns the addresses of the non-nil steps, in argument order.
func ids(steps ...*step.Step) []nodeid.Address {
	var out []nodeid.Address
	for _, s := range steps {
		if s != nil {
			out = append(out, s.ID)
		}
	}
	return out
}
