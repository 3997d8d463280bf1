package sources

import (
	"errors"
	"fmt"
)

// Failure kinds reported by fetchers. Match with errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("non-success status")
	ErrShape     = errors.New("unexpected response shape")
)

// FetchError describes a failed upstream fetch for one (source, category) pair.
type FetchError struct {
	SourceID   string
	Category   string
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %q: %v", e.SourceID, e.Category, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for err's failure kind, for log fields.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrShape):
		return "shape"
	default:
		return "unknown"
	}
}
