package service

import "fmt"

// Error taxonomy of the billing engine. Validation failures are surfaced and
// never retried; conflicts require the caller to re-fetch state first;
// transient store failures inside a fan-out are isolated per item and only
// tallied. The engine itself performs no retries.

// ValidationError reports input the engine refuses to act on.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ConflictError reports a state transition that lost to current state.
type ConflictError string

func (e ConflictError) Error() string { return string(e) }

// NotFoundError reports an id that did not resolve to a record.
type NotFoundError string

func (e NotFoundError) Error() string { return string(e) }

// TransientError wraps a store failure that the calling layer may retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

var (
	ErrInvalidAmount      = ValidationError("payment amount must be greater than zero")
	ErrMissingReference   = ValidationError("reference number is required for this payment method")
	ErrOccupancyExceeded  = ValidationError("occupant count exceeds the room capacity")
	ErrRoomUnavailable    = ConflictError("room is not available")
	ErrBillAlreadySettled = ConflictError("bill is already settled")
)

func notFound(kind string, id fmt.Stringer) NotFoundError {
	return NotFoundError(fmt.Sprintf("%s %s not found", kind, id))
}
