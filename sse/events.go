package sse

import "time"

// EventConnected is the first event written to every stream.
const EventConnected = "connected"

// Event is one published message.
type Event struct {
	ID    string    `json:"id"`
	Topic string    `json:"topic"`
	Time  time.Time `json:"time"`
	Data  any       `json:"data"`
}

// ConnectedEvent is the payload of the EventConnected event.
type ConnectedEvent struct {
	ClientID string   `json:"client_id"`
	Topics   []string `json:"topics"`
}
