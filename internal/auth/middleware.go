package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/observability"
	"github.com/tripfriend/auth-service/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	tokenKey     = "auth_token"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	RefreshTokenHeader = "X-Refresh-Token"
)

// Principal represents the authenticated caller.
type Principal struct {
	Subject string
	Role    domain.Role
}

// GatewayOptions configures AuthMiddleware.
type GatewayOptions struct {
	Public  *PublicRoutes
	Strict  bool
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// AuthMiddleware resolves the bearer token of every protected request into a
// Principal, or rejects it.
type AuthMiddleware struct {
	tokens   *TokenCodec
	sessions SessionStore
	public   *PublicRoutes
	strict   bool
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenCodec, sessions SessionStore, opts GatewayOptions) *AuthMiddleware {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		public:   opts.Public,
		strict:   opts.Strict,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Handle enforces authentication for every route not on the public list.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if m.public.Allows(c.Method(), c.Path()) {
		return c.Next()
	}

	token := ExtractAccessToken(c)
	if token == "" {
		return m.reject(c, ErrUnauthorized)
	}

	principal, err := m.Authenticate(c.UserContext(), token)
	if err != nil {
		return m.reject(c, err)
	}

	c.Locals(principalKey, principal)
	c.Locals(tokenKey, token)
	return c.Next()
}

// Authenticate runs the blacklist, signature, verification and session
// checks against token.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*Principal, error) {
	blacklisted, err := m.sessions.IsBlacklisted(ctx, token)
	if err != nil {
		m.logger.Warn("blacklist lookup failed; denying", zap.Error(err))
		return nil, ErrUnauthorized.WithCause(err)
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind() != KindAccess {
		return nil, ErrUnauthorized.WithMessage("token cannot be used to access this resource")
	}
	if !claims.Verified {
		return nil, ErrEmailNotVerified
	}

	if m.strict {
		active, ok, err := m.sessions.GetActive(ctx, claims.Subject)
		if err != nil {
			m.logger.Warn("session lookup failed; denying", zap.String("subject", claims.Subject), zap.Error(err))
			return nil, ErrUnauthorized.WithCause(err)
		}
		if !ok || subtle.ConstantTimeCompare([]byte(active), []byte(token)) != 1 {
			return nil, ErrSessionMismatch
		}
	}

	return &Principal{Subject: claims.Subject, Role: domain.Role(claims.Authority)}, nil
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, err error) error {
	code := "UNAUTHORIZED"
	var domainErr *errorutil.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	m.metrics.RecordRejection(code)
	m.logger.Debug("request rejected",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("reason", code))
	return err
}

// ExtractAccessToken prefers an Authorization bearer header over the
// accessToken cookie.
func ExtractAccessToken(c *fiber.Ctx) string {
	if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		return token
	}
	return c.Cookies(AccessTokenCookie)
}

// ExtractRefreshToken prefers the X-Refresh-Token header over the
// refreshToken cookie.
func ExtractRefreshToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(RefreshTokenHeader)); token != "" {
		return token
	}
	return c.Cookies(RefreshTokenCookie)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// TokenFromContext returns the access token the principal was resolved from.
func TokenFromContext(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}
