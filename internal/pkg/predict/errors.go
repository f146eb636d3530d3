package predict

import (
	"errors"
	"fmt"
)

// ErrorKind classifies prediction client failures so callers can branch on
// the failure mode instead of matching message strings.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"      // poll budget exhausted
	KindCanceled    ErrorKind = "canceled"     // caller context canceled
	KindJobFailed   ErrorKind = "job_failed"   // service reported a terminal error state
	KindNotFound    ErrorKind = "not_found"    // unknown prediction id
	KindUnavailable ErrorKind = "unavailable"  // transport failure or unexpected status
)

// Error is a tagged prediction failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prediction %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("prediction %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind returns the ErrorKind of err, or KindUnavailable for untagged errors.
func Kind(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnavailable
}
