package equipment

import "time"

// Status is the availability state of an equipment unit.
//
// It is a closed enumeration: transitions go through Checkout/Checkin,
// which pattern-match exhaustively and return typed failures for
// disallowed transitions. Maintenance is set and cleared by an external
// administrative process; the state machine only refuses checkout while
// it is active.
type Status string

const (
	// StatusAvailable means the unit can be checked out.
	StatusAvailable Status = "available"

	// StatusInUse means an operator currently holds the unit.
	StatusInUse Status = "in_use"

	// StatusMaintenance means the unit is administratively blocked.
	StatusMaintenance Status = "maintenance"
)

// ParseStatus validates a raw status string.
// Returns ErrInvalidStatus for anything outside the enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Checkout returns the status after a checkout transition.
//
// Only available units may be checked out. Any other status yields an
// *UnavailableError carrying the blocking status for user messaging.
func (s Status) Checkout() (Status, error) {
	switch s {
	case StatusAvailable:
		return StatusInUse, nil
	case StatusInUse, StatusMaintenance:
		return s, &UnavailableError{Status: s}
	default:
		return s, ErrInvalidStatus
	}
}

// Checkin returns the status after ending a session.
//
// Only in-use units may be checked in; anything else indicates the
// caller's view has desynchronised from the store.
func (s Status) Checkin() (Status, error) {
	switch s {
	case StatusInUse:
		return StatusAvailable, nil
	case StatusAvailable, StatusMaintenance:
		return s, ErrInvalidTransition
	default:
		return s, ErrInvalidStatus
	}
}

// Equipment represents a trackable physical unit (a forklift) with one
// bound embedded controller.
type Equipment struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Code is the short human-facing identifier painted on the unit.
	Code string `json:"code"`

	// DeviceID identifies the ESP32 controller bound to this unit.
	// Commands are published to <topic prefix><DeviceID>.
	DeviceID string `json:"device_id"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
