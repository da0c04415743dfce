package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the position of a conversation in its send cycle:
// idle -> sending -> awaiting_response -> idle.
type State string

const (
	StateIdle             State = "idle"
	StateSending          State = "sending"
	StateAwaitingResponse State = "awaiting_response"
)

type EventType string

const (
	EventMessage EventType = "message"
	EventState   EventType = "state"
)

type Event struct {
	Type    EventType `json:"type"`
	Message *Message  `json:"message,omitempty"`
	State   State     `json:"state,omitempty"`
}
