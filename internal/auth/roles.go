package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripfriend/auth-service/internal/domain"
)

// RequireRole wraps a route so only principals holding one of allowed reach
// it. It must run after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return ErrUnauthorized
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return ErrForbidden
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is attached.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}
