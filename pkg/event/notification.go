package event

import "time"

const (
	NotificationSound  = "sound"
	NotificationShow   = "notification"
	NotificationChange = "change"
)

// Notification is what connected clients receive from the notification hub.
// Change notifications carry the row that moved so views can react, e.g. a
// client showing a deleted group goes back to the list.
type Notification struct {
	Kind       string    `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body,omitempty"`
	Table      string    `json:"table,omitempty"`
	EventType  string    `json:"event_type,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
