package model

import "time"

// EventType classifies a progress event emitted by the engine.
type EventType string

const (
	EventStatus       EventType = "status"
	EventEvidence     EventType = "evidence"
	EventVerification EventType = "verification"
	EventAssessment   EventType = "assessment"
	EventAISynthesis  EventType = "ai_synthesis"
	EventComplete     EventType = "complete"
	EventError        EventType = "error"
)

// Event is one progress event in the sequence returned by the engine.
// The event stream is the sole contract transport layers need to forward.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Phase     string    `json:"phase"`
	Message   string    `json:"message,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
