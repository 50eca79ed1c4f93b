package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/service"
)

// MemberHandler exposes the caller's own account operations.
type MemberHandler struct {
	auth    *service.AuthService
	cookies tokenCookies
}

// NewMemberHandler constructs handler.
func NewMemberHandler(authService *service.AuthService, cookieSecure bool) *MemberHandler {
	return &MemberHandler{auth: authService, cookies: tokenCookies{secure: cookieSecure}}
}

// Withdraw handles DELETE /member/me: soft deletes the account and logs the
// caller out.
func (h *MemberHandler) Withdraw(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	err := h.auth.Withdraw(c.UserContext(), principal.Subject, auth.TokenFromContext(c), auth.ExtractRefreshToken(c))
	if err != nil {
		return err
	}

	h.cookies.clear(c)
	return c.SendStatus(fiber.StatusNoContent)
}
