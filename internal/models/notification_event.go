package models

import "time"

// Event types recorded in the notification event log.
const (
	EventBrewStarted         = "BREW_STARTED"
	EventBrewCancelled       = "BREW_CANCELLED"
	EventBrewCompleted       = "BREW_COMPLETED"
	EventStageSent           = "STAGE_SENT"
	EventStageSendFailed     = "STAGE_SEND_FAILED"
	EventStagePayloadInvalid = "STAGE_PAYLOAD_INVALID"
	EventNotificationOpened  = "NOTIFICATION_OPENED"
)

// NotificationEvent is a single log entry.
type NotificationEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	BrewID      string    `json:"brew_id,omitempty"`
	Stage       string    `json:"stage,omitempty"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
