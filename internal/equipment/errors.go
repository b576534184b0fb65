package equipment

import (
	"errors"
	"fmt"
)

// Domain errors for the equipment package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, equipment.ErrUnavailable) {
//	    // unit is in use or under maintenance
//	}
var (
	// ErrNotFound is returned when an equipment ID does not exist.
	ErrNotFound = errors.New("equipment: not found")

	// ErrCodeExists is returned when creating a unit whose code is taken.
	ErrCodeExists = errors.New("equipment: code already exists")

	// ErrUnavailable is returned when checking out a unit that is not
	// available. Use AsUnavailable to recover the blocking status.
	ErrUnavailable = errors.New("equipment: unavailable")

	// ErrInvalidTransition is returned when ending a session on a unit
	// that is not in use.
	ErrInvalidTransition = errors.New("equipment: invalid status transition")

	// ErrInvalidStatus is returned when a status value is not recognised.
	ErrInvalidStatus = errors.New("equipment: invalid status")
)

// UnavailableError reports a refused checkout together with the status
// that blocked it, so callers can tell "in use" from "maintenance".
type UnavailableError struct {
	Status Status
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("equipment: unavailable (status %s)", e.Status)
}

// Unwrap makes errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// AsUnavailable extracts an *UnavailableError from an error chain.
func AsUnavailable(err error) (*UnavailableError, bool) {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
