package events

import "time"

// Event types published by the clipboard services.
const (
	ClipboardCreated = "CLIPBOARD_CREATED"
	ClipboardUpdated = "CLIPBOARD_UPDATED"
	ClipboardDeleted = "CLIPBOARD_DELETED"
	ClipboardExpired = "CLIPBOARD_EXPIRED"
	ClipboardShared  = "CLIPBOARD_SHARED"
	UserLogin        = "USER_LOGIN"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CLIPBOARD_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
