package version

import "fmt"

// PersistError reports that the version file could not be locked, read or
// written. It is fatal for the run.
type PersistError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("version file %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
