package dto

import "time"

// Event announces a change to one of the state collections. An empty
// Audience reaches every subscriber.
type Event struct {
	Collection string      `json:"collection"`
	Action     string      `json:"action"`
	EntityID   string      `json:"entity_id,omitempty"`
	Audience   string      `json:"audience,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
