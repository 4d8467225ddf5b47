package models

import "time"

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoutingKey lets topic-style brokers route on the event type.
func (e Event) RoutingKey() string { return e.Type }
