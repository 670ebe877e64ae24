package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aquanqa/ticketera/internal/api/dto"
	"github.com/aquanqa/ticketera/internal/auth"
	"github.com/aquanqa/ticketera/internal/domain"
	"github.com/aquanqa/ticketera/internal/query"
	"github.com/aquanqa/ticketera/internal/service"
	"github.com/aquanqa/ticketera/internal/tabular"
	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

// TicketsHandler manages the ticket endpoints shared by submitters and
// administrators. Filtering and ordering of listings happen here, over the
// snapshot the service already scoped to the caller.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. Multipart form: title, description, file.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("attachment file is required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewUnreadableFile(err)
	}
	defer file.Close()
	payload, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewUnreadableFile(err)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.Identity, service.CreateInput{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		AttachmentName:  fileHeader.Filename,
		AttachmentBytes: payload,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets. Query params: state, owner, sort.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	tickets, err := h.service.ListTickets(c.Context(), principal.Identity)
	if err != nil {
		return err
	}

	if state := c.Query("state"); state != "" {
		tickets = query.FilterByState(tickets, domain.TicketState(state))
	}
	if owner := c.Query("owner"); owner != "" {
		tickets = query.FilterByOwner(tickets, owner)
	}
	tickets = query.Sort(tickets, sortOrder(c.Query("sort")))

	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	ticket, err := h.service.GetTicket(c.Context(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AppendComment(c.Context(), principal.Identity, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(*comment)})
}

// DownloadAttachment GET /tickets/:id/attachment.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	att, err := h.service.GetAttachment(c.Context(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+att.Filename+`"`)
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(att.Bytes)
}

// DownloadTemplate GET /tickets/template serves the sample workbook with the
// required column layout.
func (h *TicketsHandler) DownloadTemplate(c *fiber.Ctx) error {
	payload, err := tabular.SampleTemplate()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+tabular.TemplateFilename+`"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(payload)
}

func sortOrder(val string) query.SortOrder {
	switch query.SortOrder(val) {
	case query.SortOldest:
		return query.SortOldest
	case query.SortMostRecords:
		return query.SortMostRecords
	default:
		return query.SortNewest
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Owner:        ticket.Owner,
		State:        ticket.State,
		RecordCount:  ticket.RecordCount,
		Filename:     ticket.Filename,
		CommentCount: len(ticket.Comments),
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(ticket.Comments))
	for _, comment := range ticket.Comments {
		comments = append(comments, commentResponse(comment))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Owner:       ticket.Owner,
		State:       ticket.State,
		RecordCount: ticket.RecordCount,
		Filename:    ticket.Filename,
		Comments:    comments,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func commentResponse(comment domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		Author:    comment.Author,
		Text:      comment.Text,
		Timestamp: comment.Timestamp,
	}
}
