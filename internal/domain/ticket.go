package domain

import "time"

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	StateOpen       TicketState = "Open"
	StateInProgress TicketState = "InProgress"
	StateClosed     TicketState = "Closed"
)

// DefaultDescription is stored when a submitter leaves the description blank.
const DefaultDescription = "Sin descripción"

// States lists every valid ticket state in display order.
func States() []TicketState {
	return []TicketState{StateOpen, StateInProgress, StateClosed}
}

// Valid reports whether s belongs to the state enumeration.
func (s TicketState) Valid() bool {
	switch s {
	case StateOpen, StateInProgress, StateClosed:
		return true
	}
	return false
}

// CanTransition reports whether moving from current to next is an accepted
// state change. Every distinct pair of valid states is reachable; closed
// tickets may be reopened. A same-state change is not a transition and is
// handled by callers as a no-op.
func CanTransition(current, next TicketState) bool {
	return current.Valid() && next.Valid() && current != next
}

// Ticket is the aggregate for submitted support requests. Attachment bytes
// are never embedded here; they live in the attachment store keyed by ID.
type Ticket struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Owner       string      `json:"owner"`
	State       TicketState `json:"state"`
	RecordCount int         `json:"record_count"`
	Filename    string      `json:"filename"`
	Comments    []Comment   `json:"comments"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Comment is one entry of a ticket's append-only thread.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Attachment is the single binary payload captured at ticket creation.
type Attachment struct {
	TicketID string
	Filename string
	Bytes    []byte
}
