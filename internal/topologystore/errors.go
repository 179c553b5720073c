package topologystore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStep   = errors.New("unknown step")
	ErrDuplicateStep = errors.New("duplicate step")
	ErrCycleFound    = errors.New("cycle detected")
)

// GraphError wraps deterministic topology failures.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

// UnknownStepError reports a reference to a step that was never registered.
func UnknownStepError(role, id string) error {
	return &GraphError{Kind: ErrUnknownStep, Msg: fmt.Sprintf("%s step '%s' not found in topology", role, id)}
}

// DuplicateStepError reports a second registration of the same step ID.
func DuplicateStepError(id string) error {
	return &GraphError{Kind: ErrDuplicateStep, Msg: fmt.Sprintf("step '%s' is already registered", id)}
}

// CycleError reports the steps left over once every acyclic step is ordered.
func CycleError(remaining []string) error {
	msg := "cycle"
	if len(remaining) > 0 {
		msg = "cycle among: " + strings.Join(remaining, ", ")
	}
	return &GraphError{Kind: ErrCycleFound, Msg: msg}
}
