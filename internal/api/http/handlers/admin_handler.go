package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aquanqa/ticketera/internal/api/dto"
	"github.com/aquanqa/ticketera/internal/auth"
	"github.com/aquanqa/ticketera/internal/export"
	"github.com/aquanqa/ticketera/internal/observability"
	"github.com/aquanqa/ticketera/internal/service"
	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

// AdminHandler manages administrator-only ticket operations: state changes,
// deletion, the bulk CSV export and the dashboard metrics.
type AdminHandler struct {
	service *service.TicketService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService *service.TicketService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{service: ticketService, metrics: metrics}
}

// UpdateState PATCH /admin/tickets/:id/state.
func (h *AdminHandler) UpdateState(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	var req dto.UpdateStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateState(c.Context(), principal.Identity, c.Params("id"), req.State)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /admin/tickets/:id.
func (h *AdminHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if err := h.service.DeleteTicket(c.Context(), principal.Identity, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportCSV GET /admin/tickets/export.
func (h *AdminHandler) ExportCSV(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	rows, err := h.service.ExportSummary(c.Context(), principal.Identity)
	if err != nil {
		return err
	}
	payload, err := export.WriteCSV(rows)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	filename := fmt.Sprintf("tickets_%s.csv", time.Now().Format("02_01_2006"))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(payload)
}

// Metrics GET /admin/metrics combines ticket aggregates with the HTTP counters.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	ticketMetrics, err := h.service.DashboardMetrics(c.Context(), principal.Identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"tickets": ticketMetrics,
		"http":    h.metrics.Snapshot(),
	}})
}
