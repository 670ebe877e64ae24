package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquanqa/ticketera/internal/api/http/handlers"
	"github.com/aquanqa/ticketera/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Session.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	// template before :id so the static segment wins
	api.Get("/tickets/template", cfg.Tickets.DownloadTemplate)
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	api.Get("/tickets/:id/attachment", cfg.Tickets.DownloadAttachment)

	admin := api.Group("/admin", auth.RequireAdministrator())
	admin.Patch("/tickets/:id/state", cfg.Admin.UpdateState)
	admin.Delete("/tickets/:id", cfg.Admin.DeleteTicket)
	admin.Get("/tickets/export", cfg.Admin.ExportCSV)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
