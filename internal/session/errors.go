package session

import "errors"

var (
	// ErrNotFound indicates the session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrAlreadyClosed indicates an attempt to end a session that has
	// already been ended. The first close stands; the ledger is
	// append-once for end times.
	ErrAlreadyClosed = errors.New("session already closed")

	// ErrNoOpenSession indicates the equipment has no running session.
	ErrNoOpenSession = errors.New("no open session for equipment")
)
