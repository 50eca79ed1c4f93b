package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/service"
)

// tokenCookies writes and clears the accessToken/refreshToken cookie pair.
type tokenCookies struct {
	secure bool
}

func (tc tokenCookies) set(c *fiber.Ctx, pair *service.TokenPair) {
	c.Cookie(tc.cookie(auth.AccessTokenCookie, pair.Access))
	c.Cookie(tc.cookie(auth.RefreshTokenCookie, pair.Refresh))
}

func (tc tokenCookies) cookie(name string, token *auth.IssuedToken) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   int(token.TTL() / time.Second),
		Secure:   tc.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (tc tokenCookies) clear(c *fiber.Ctx) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   tc.secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
