package plan

import "fmt"

// InconsistencyError reports a bundle (or, with an empty Bundle, a project
// level step) that could not be planned. Only the affected sub-plan is
// dropped.
type InconsistencyError struct {
	Bundle string
	// Step is the identifier of the offending step, when known.
	Step   string
	Reason string
	Err    error
}

func (e *InconsistencyError) Error() string {
	scope := "project"
	if e.Bundle != "" {
		scope = "bundle " + e.Bundle
	}
	msg := fmt.Sprintf("%s: inconsistent plan", scope)
	if e.Step != "" {
		msg += fmt.Sprintf(" at step %s", e.Step)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *InconsistencyError) Unwrap() error { return e.Err }
