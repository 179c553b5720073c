package bundle

import "fmt"

// DiscoveryError reports a module root that could not be walked. It is fatal:
// no partial bundle set is ever returned alongside it.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("bundle discovery failed for %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
