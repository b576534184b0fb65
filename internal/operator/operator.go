package operator

import "time"

// Operator is a person authorised to use equipment. The directory is a
// plain keyed lookup: usernames are unique and matched case-sensitively.
type Operator struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}
