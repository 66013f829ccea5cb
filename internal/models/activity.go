package models

import "time"

// ActiveUser is a best-effort record of a recent login. It is scoped to the
// backing store and is not an authoritative session list.
type ActiveUser struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}
