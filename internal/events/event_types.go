package events

import (
	"time"

	"github.com/aquanqa/ticketera/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketStateChanged EventType = "ticket_state_changed"
	EventTicketCommentAdded EventType = "ticket_comment_added"
	EventTicketDeleted      EventType = "ticket_deleted"
)

// Event represents a domain event emitted by the ticket service. Identity is
// the opaque caller identity that triggered the change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Identity  string      `json:"identity"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title       string `json:"title"`
	Owner       string `json:"owner"`
	RecordCount int    `json:"record_count"`
	Filename    string `json:"filename"`
}

// TicketStateChangedPayload payload.
type TicketStateChangedPayload struct {
	OldState domain.TicketState `json:"old_state"`
	NewState domain.TicketState `json:"new_state"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	Author      string `json:"author"`
	BodyPreview string `json:"body_preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Owner string `json:"owner"`
	Title string `json:"title"`
}
