package dispatch

import (
	"errors"
	"fmt"
)

// Rejection is a deliberate refusal raised by handler logic. It is an
// expected outcome, reported as Rejected rather than as a fault.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Reject returns a rejection carrying reason.
func Reject(reason string) error {
	return &Rejection{Reason: reason}
}

// Rejectf returns a rejection with a formatted reason.
func Rejectf(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Require is a checked requirement: it returns nil when cond holds and a
// rejection carrying reason otherwise.
//
//	if err := dispatch.Require(a == 4, "a failed"); err != nil {
//		return nil, err
//	}
func Require(cond bool, reason string) error {
	if cond {
		return nil
	}
	return &Rejection{Reason: reason}
}

// AsRejection reports whether err is or wraps a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
