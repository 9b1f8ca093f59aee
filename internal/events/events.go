package events

import "time"

const (
	TypeLibraryUpdate = "library.update"
	TypeLibraryDelete = "library.delete"
)

// LibraryEvent is broadcast to feed subscribers whenever a library entry
// changes.
type LibraryEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Key    string    `json:"key"`
	Status string    `json:"status,omitempty"`
	Rating int       `json:"rating,omitempty"`
	At     time.Time `json:"at"`
}
