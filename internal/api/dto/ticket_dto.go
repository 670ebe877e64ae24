package dto

import (
	"time"

	"github.com/aquanqa/ticketera/internal/domain"
)

// LoginRequest carries the externally supplied identity. The session login is
// a stand-in for a real identity provider; no credential is checked.
type LoginRequest struct {
	Identity string `json:"identity"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Owner        string             `json:"owner"`
	State        domain.TicketState `json:"state"`
	RecordCount  int                `json:"record_count"`
	Filename     string             `json:"filename"`
	CommentCount int                `json:"comment_count"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the thread.
type TicketDetailResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Owner       string             `json:"owner"`
	State       domain.TicketState `json:"state"`
	RecordCount int                `json:"record_count"`
	Filename    string             `json:"filename"`
	Comments    []CommentResponse  `json:"comments"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// UpdateStateRequest payload.
type UpdateStateRequest struct {
	State domain.TicketState `json:"state"`
}
