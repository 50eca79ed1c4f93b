package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripfriend/auth-service/internal/api/dto"
	"github.com/tripfriend/auth-service/internal/service"
)

// AdminHandler exposes session administration for ADMIN principals.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// GetSession handles GET /admin/sessions/:username.
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	username := c.Params("username")
	info, err := h.auth.ActiveSession(c.UserContext(), username)
	if err != nil {
		return err
	}

	resp := dto.SessionResponse{Username: username}
	if info != nil {
		resp.Active = true
		resp.Kind = string(info.Kind)
		expiresAt := info.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return c.JSON(fiber.Map{"data": resp})
}

// RevokeSession handles DELETE /admin/sessions/:username.
func (h *AdminHandler) RevokeSession(c *fiber.Ctx) error {
	username := c.Params("username")
	revoked, err := h.auth.RevokeSession(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"username": username, "revoked": revoked}})
}
