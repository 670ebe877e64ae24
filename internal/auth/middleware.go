package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/aquanqa/ticketera/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: its opaque identity and the
// role the access policy derived from it.
type Principal struct {
	Identity string
	Role     Role
}

// AuthMiddleware validates bearer tokens and resolves principals.
type AuthMiddleware struct {
	tokens *TokenManager
	policy *Policy
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, policy *Policy) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, policy: policy}
}

// Handle enforces authentication for protected routes. A missing header is
// reported as "not authenticated"; a present but unusable token as invalid.
// Neither case ever yields a partial view.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("not authenticated")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	identity := strings.TrimSpace(claims.Identity)
	if identity == "" {
		return apperrors.NewUnauthorized("not authenticated")
	}

	c.Locals(principalKey, &Principal{
		Identity: identity,
		Role:     m.policy.Classify(identity),
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireAdministrator gates administrator-only routes.
func RequireAdministrator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("not authenticated")
		}
		if principal.Role != RoleAdministrator {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}
