package session

import "time"

// Session is one entry in the usage ledger: an operator holding an
// equipment unit for a span of time. EndTime and DurationSeconds are
// nil while the session is open.
type Session struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipment_id"`
	OperatorID  string `json:"operator_id"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// DurationSeconds is the whole-second span of a closed session,
	// never negative.
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
}

// Open reports whether the session is still running.
func (s *Session) Open() bool {
	return s.EndTime == nil
}
