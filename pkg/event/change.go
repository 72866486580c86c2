package event

import (
	"encoding/json"
	"time"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// ChangeEvent is published after a row has been written to the durable store.
// Old and New hold the full row as JSON; either may be empty depending on the
// event type.
type ChangeEvent struct {
	Table      string          `json:"table"`
	EventType  string          `json:"event_type"`
	RecordID   string          `json:"record_id"`
	Old        json.RawMessage `json:"old,omitempty"`
	New        json.RawMessage `json:"new,omitempty"`
	Source     string          `json:"source,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
