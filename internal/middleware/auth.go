package middleware

import (
	"strings"

	"github.com/estatery/listings/internal/auth"
	"github.com/gofiber/fiber/v2"
)

// principalKey is the Locals slot the auth middleware fills.
const principalKey = "principal"

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth rejects requests without a valid access token and stores the
// resolved principal in context.
func RequireAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Authenticate(c.Context(), bearerToken(c))
		if err != nil {
			return err
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// RequireRoles runs after RequireAuth and rejects principals outside the
// allowed role set.
func RequireRoles(svc *auth.Service, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Principal(c)
		if p == nil {
			return fiber.ErrUnauthorized
		}
		if err := svc.Authorize(p, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth resolves a principal when a valid token is present but lets
// anonymous requests through.
func OptionalAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}
		if p, err := svc.Authenticate(c.Context(), token); err == nil {
			c.Locals(principalKey, p)
		}
		return c.Next()
	}
}

// Principal returns the authenticated principal, or nil for anonymous
// requests.
func Principal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}
