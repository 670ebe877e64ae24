package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aquanqa/ticketera/internal/auth"
	"github.com/aquanqa/ticketera/internal/domain"
	"github.com/aquanqa/ticketera/internal/events"
	"github.com/aquanqa/ticketera/internal/export"
	"github.com/aquanqa/ticketera/internal/query"
	"github.com/aquanqa/ticketera/internal/repository"
	"github.com/aquanqa/ticketera/internal/tabular"
	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

// maxCreateAttempts bounds retries on the unlikely ticket-id collision.
const maxCreateAttempts = 3

// TicketService coordinates ticket workflows: every externally triggered
// action goes through here, gets gated by the access policy and is persisted
// through the repository and attachment store.
type TicketService struct {
	tickets     repository.TicketRepository
	attachments repository.AttachmentStore
	policy      *auth.Policy
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// Dependencies bundles collaborators for the ticket service.
type Dependencies struct {
	TicketRepo     repository.TicketRepository
	AttachmentRepo repository.AttachmentStore
	Policy         *auth.Policy
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// CreateInput describes ticket creation payload.
type CreateInput struct {
	Title           string
	Description     string
	AttachmentName  string
	AttachmentBytes []byte
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		attachments: deps.AttachmentRepo,
		policy:      deps.Policy,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// CreateTicket validates the uploaded file, persists the ticket and delegates
// the attachment to the store as one logical operation. If the attachment
// write fails the metadata row is removed again, so a failed creation leaves
// nothing behind and a retry starts clean with a fresh id.
func (s *TicketService) CreateTicket(ctx context.Context, identity string, input CreateInput) (*domain.Ticket, error) {
	if s.policy.Classify(identity) != auth.RoleSubmitter {
		return nil, apperrors.NewForbidden("ticket creation is a submitter operation")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.AttachmentName == "" || len(input.AttachmentBytes) == 0 {
		return nil, apperrors.NewValidationError("attachment file is required", nil)
	}

	summary, err := tabular.Parse(input.AttachmentName, input.AttachmentBytes)
	if err != nil {
		return nil, err
	}
	if err := tabular.ValidateSchema(summary); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = domain.DefaultDescription
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Owner:       identity,
		State:       domain.StateOpen,
		RecordCount: summary.RowCount,
		Filename:    input.AttachmentName,
		Comments:    []domain.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; ; attempt++ {
		ticket.ID = newTicketID()
		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateID) && attempt < maxCreateAttempts-1 {
			continue
		}
		return nil, apperrors.NewStorageFailure("create ticket", err)
	}

	if err := s.attachments.Put(ctx, ticket.ID, input.AttachmentName, input.AttachmentBytes); err != nil {
		// compensating cleanup keeps creation all-or-nothing
		if cleanupErr := s.tickets.Delete(ctx, ticket.ID); cleanupErr != nil {
			s.logger.Error("failed to clean up ticket after attachment write failure",
				zap.String("ticket_id", ticket.ID), zap.Error(cleanupErr))
		}
		return nil, apperrors.NewStorageFailure("store attachment", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Identity: identity,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Owner:       ticket.Owner,
			RecordCount: ticket.RecordCount,
			Filename:    ticket.Filename,
		},
	})
	return ticket, nil
}

// ListTickets returns the snapshot the identity is allowed to see.
func (s *TicketService) ListTickets(ctx context.Context, identity string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure("list tickets", err)
	}
	return s.policy.VisibleTickets(identity, tickets), nil
}

// GetTicket fetches one ticket, enforcing visibility.
func (s *TicketService) GetTicket(ctx context.Context, identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.canView(identity, ticket) {
		return nil, apperrors.NewForbidden("ticket belongs to another submitter")
	}
	return ticket, nil
}

// GetAttachment fetches the stored payload for a visible ticket.
func (s *TicketService) GetAttachment(ctx context.Context, identity, ticketID string) (*domain.Attachment, error) {
	if _, err := s.GetTicket(ctx, identity, ticketID); err != nil {
		return nil, err
	}
	att, err := s.attachments.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("attachment", ticketID)
		}
		return nil, apperrors.NewStorageFailure("get attachment", err)
	}
	return att, nil
}

// UpdateState moves a ticket to a new lifecycle state. Administrators only.
// A same-state request is a no-op that leaves updatedAt untouched.
func (s *TicketService) UpdateState(ctx context.Context, identity, ticketID string, newState domain.TicketState) (*domain.Ticket, error) {
	if err := s.requireAdministrator(identity); err != nil {
		return nil, err
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if newState == ticket.State {
		return ticket, nil
	}
	if !domain.CanTransition(ticket.State, newState) {
		return nil, apperrors.NewInvalidTransition(ticketID, string(newState))
	}

	now := time.Now().UTC()
	if err := s.tickets.UpdateState(ctx, ticketID, newState, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", ticketID)
		}
		return nil, apperrors.NewStorageFailure("update state", err)
	}

	oldState := ticket.State
	ticket.State = newState
	ticket.UpdatedAt = now

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStateChanged,
		TicketID: ticketID,
		Identity: identity,
		Payload: events.TicketStateChangedPayload{
			OldState: oldState,
			NewState: newState,
		},
	})
	return ticket, nil
}

// AppendComment adds one entry to the ticket thread. Administrators may
// comment on any ticket, submitters only on their own.
func (s *TicketService) AppendComment(ctx context.Context, identity, ticketID, text string) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.NewEmptyComment(ticketID)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.canView(identity, ticket) {
		return nil, apperrors.NewForbidden("commenting is limited to the ticket owner and administrators")
	}

	comment := domain.Comment{
		Author:    identity,
		Text:      trimmed,
		Timestamp: time.Now().UTC(),
	}
	if err := s.tickets.AppendComment(ctx, ticketID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", ticketID)
		}
		return nil, apperrors.NewStorageFailure("append comment", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticketID,
		Identity: identity,
		Payload: events.TicketCommentAddedPayload{
			Author:      identity,
			BodyPreview: stringPreview(trimmed, 120),
		},
	})
	return &comment, nil
}

// DeleteTicket removes a ticket and its attachment. Administrators only.
// Deleting an unknown id is a no-op.
func (s *TicketService) DeleteTicket(ctx context.Context, identity, ticketID string) error {
	if err := s.requireAdministrator(identity); err != nil {
		return err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.NewStorageFailure("get ticket", err)
	}

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.NewStorageFailure("delete ticket", err)
	}
	if err := s.attachments.Delete(ctx, ticketID); err != nil {
		return apperrors.NewStorageFailure("delete attachment", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Identity: identity,
		Payload: events.TicketDeletedPayload{
			Owner: ticket.Owner,
			Title: ticket.Title,
		},
	})
	return nil
}

// ExportSummary produces the bulk export rows. Administrators only.
func (s *TicketService) ExportSummary(ctx context.Context, identity string) ([]export.SummaryRow, error) {
	if err := s.requireAdministrator(identity); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure("list tickets", err)
	}
	return export.SummaryRows(tickets), nil
}

// DashboardMetrics aggregates the admin dashboard counters.
func (s *TicketService) DashboardMetrics(ctx context.Context, identity string) (query.Metrics, error) {
	if err := s.requireAdministrator(identity); err != nil {
		return query.Metrics{}, err
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return query.Metrics{}, apperrors.NewStorageFailure("list tickets", err)
	}
	return query.Aggregate(tickets), nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", ticketID)
		}
		return nil, apperrors.NewStorageFailure("get ticket", err)
	}
	return ticket, nil
}

func (s *TicketService) canView(identity string, ticket *domain.Ticket) bool {
	if s.policy.Classify(identity) == auth.RoleAdministrator {
		return true
	}
	return ticket.Owner == identity
}

func (s *TicketService) requireAdministrator(identity string) error {
	if s.policy.Classify(identity) != auth.RoleAdministrator {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// newTicketID matches the historical id format: the first 8 hex chars of a
// uuid4.
func newTicketID() string {
	return uuid.NewString()[:8]
}

// stringPreview truncates on rune boundaries so accented comment text never
// yields invalid UTF-8 in the event payload.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
