package asset

import "fmt"

// ClassificationWarning reports a bundle whose subtree could not be read. The
// bundle degrades to an empty manifest; the run continues.
type ClassificationWarning struct {
	Bundle string
	Err    error
}

func (w *ClassificationWarning) Error() string {
	return fmt.Sprintf("classification of bundle %s degraded to an empty manifest: %v", w.Bundle, w.Err)
}

func (w *ClassificationWarning) Unwrap() error { return w.Err }
