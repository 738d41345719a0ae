package filter

import "errors"

var (
	// ErrNotFound is returned when a subscription mutation targets a
	// DID or handle list that was never configured.
	ErrNotFound = errors.New("not found")

	// ErrNoSuchFilter is returned when a registry lookup by name fails.
	ErrNoSuchFilter = errors.New("no such filter")
)

// ResolutionError records a handle that could not be resolved to a DID
// during initialization. Resolution is best-effort: these are reported
// for the operator, never fatal.
type ResolutionError struct {
	Filter string
	Handle string
	Err    error
}

func (e ResolutionError) Error() string {
	return "resolve handle " + e.Handle + " for filter " + e.Filter + ": " + e.Err.Error()
}

func (e ResolutionError) Unwrap() error {
	return e.Err
}
