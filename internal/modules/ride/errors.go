package ride

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("ride not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("ride already exists")
	ErrConflict      = errors.New("ride state conflict")
	ErrBadRequest    = errors.New("bad request")
)

// InvalidTransitionError is returned for illegal status moves. To is empty
// when the event has no target from From, or when From failed to parse.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

type InvalidLocationError struct {
	Reason string
}

func (e *InvalidLocationError) Error() string {
	return "invalid location: " + e.Reason
}

type PilotLimitError struct {
	DistanceMiles float64
}

func (e *PilotLimitError) Error() string {
	return fmt.Sprintf("trip exceeds pilot 10-mile limit (distance: %.2f miles)", e.DistanceMiles)
}
