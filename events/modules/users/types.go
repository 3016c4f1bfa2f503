package userevents

import "time"

// Event type names published to the audit topic.
const (
	EventUserCreated  = "user.created"
	EventUserUpdated  = "user.updated"
	EventUserDeleted  = "user.deleted"
	EventUserImported = "user.imported"
)

// UserChangedEvent is the audit event contract for user lifecycle changes.
type UserChangedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
}
