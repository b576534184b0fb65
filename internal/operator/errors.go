package operator

import "errors"

// Domain errors for the operator directory.
var (
	// ErrNotFound is returned when no operator matches the lookup.
	ErrNotFound = errors.New("operator: not found")

	// ErrDuplicateUsername is returned when creating an operator with a
	// username that is already registered.
	ErrDuplicateUsername = errors.New("operator: username already exists")

	// ErrInvalidUsername is returned for empty usernames.
	ErrInvalidUsername = errors.New("operator: invalid username")
)
