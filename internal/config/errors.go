package config

import "fmt"

// LoadError reports a settings or facts source that could not be loaded.
// Planning never starts without valid configuration.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
