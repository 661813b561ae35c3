package service

import "errors"

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationNotPending = errors.New("reservation is not pending")
	ErrReservationTerminal   = errors.New("reservation is already rejected or cancelled")

	// ErrNoValidOccurrences means every occurrence ended up invalid after
	// conflict resolution. The whole create/modify is rolled back; this is a
	// user-correctable condition, not a system fault.
	ErrNoValidOccurrences = errors.New("reservation has no valid occurrences")
)

// ValidationError reports malformed input. It is raised before any mutation
// is committed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AccessError reports a failed permission predicate for the requested
// transition.
type AccessError struct {
	Reason string
}

func (e *AccessError) Error() string {
	return e.Reason
}

// ConflictError is a hard, unresolvable collision encountered when the
// caller did not request skip-on-conflict.
type ConflictError struct{}

func (e *ConflictError) Error() string {
	return "booking conflicts with an existing reservation, blocking or non-bookable period"
}
