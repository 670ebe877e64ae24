package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aquanqa/ticketera/internal/api/dto"
	"github.com/aquanqa/ticketera/internal/auth"
	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

// SessionHandler exposes the login stand-in: it signs whatever identity the
// caller presents into a short-lived session token. Real authentication lives
// outside this service.
type SessionHandler struct {
	tokens *auth.TokenManager
	policy *auth.Policy
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tokens *auth.TokenManager, policy *auth.Policy) *SessionHandler {
	return &SessionHandler{tokens: tokens, policy: policy}
}

// Login POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		return apperrors.NewUnauthorized("not authenticated")
	}

	token, expiresAt, err := h.tokens.GenerateToken(identity)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		Role:      string(h.policy.Classify(identity)),
		ExpiresAt: expiresAt,
	}})
}
