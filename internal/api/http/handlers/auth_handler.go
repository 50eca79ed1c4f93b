package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripfriend/auth-service/internal/api/dto"
	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/service"
	"github.com/tripfriend/auth-service/pkg/util/errorutil"
)

// AuthHandler exposes the login, logout, refresh and restore endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies tokenCookies
}

// NewAuthHandler constructs handler. cookieSecure sets the Secure attribute
// on token cookies.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: tokenCookies{secure: cookieSecure}}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return dto.ValidationError(err)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.cookies.set(c, &result.TokenPair)
	return c.JSON(dto.LoginResponse{
		AccessToken:      result.Access.Value,
		RefreshToken:     result.Refresh.Value,
		IsDeletedAccount: result.IsDeletedAccount,
	})
}

// Logout handles POST /auth/logout. Cookies are cleared even when no token
// was presented.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	accessToken := auth.ExtractAccessToken(c)
	refreshToken := auth.ExtractRefreshToken(c)

	h.cookies.clear(c)
	if err := h.auth.Logout(c.UserContext(), accessToken, refreshToken); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	pair, err := h.auth.Refresh(c.UserContext(), auth.ExtractRefreshToken(c))
	if err != nil {
		return err
	}

	h.cookies.set(c, pair)
	return c.JSON(dto.RefreshResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

// Restore handles POST /auth/restore.
func (h *AuthHandler) Restore(c *fiber.Ctx) error {
	result, err := h.auth.Restore(c.UserContext(), auth.ExtractAccessToken(c))
	if err != nil {
		return err
	}

	h.cookies.set(c, &result.TokenPair)
	return c.JSON(dto.LoginResponse{
		AccessToken:  result.Access.Value,
		RefreshToken: result.Refresh.Value,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}
	return c.JSON(fiber.Map{
		"data": dto.MeResponse{Username: principal.Subject, Role: string(principal.Role)},
	})
}
