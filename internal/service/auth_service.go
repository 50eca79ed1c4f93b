package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/config"
	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/events"
	"github.com/tripfriend/auth-service/internal/observability"
	"github.com/tripfriend/auth-service/internal/repository"
	"github.com/tripfriend/auth-service/pkg/util/errorutil"
)

// TokenPair is an access token with its companion refresh token.
type TokenPair struct {
	Access  *auth.IssuedToken
	Refresh *auth.IssuedToken
}

// LoginResult is returned by Login and Restore.
type LoginResult struct {
	TokenPair
	IsDeletedAccount bool
}

// SessionInfo describes a subject's active session.
type SessionInfo struct {
	Subject   string
	Kind      auth.TokenKind
	ExpiresAt time.Time
}

// AuthService coordinates login, logout, refresh and restore flows.
type AuthService struct {
	credentials repository.CredentialRepository
	sessions    auth.SessionStore
	tokens      *auth.TokenCodec
	lifecycle   *AccountLifecycle
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time

	accessTTL     time.Duration
	refreshTTL    time.Duration
	restorableTTL time.Duration
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Credentials repository.CredentialRepository
	Sessions    auth.SessionStore
	Tokens      *auth.TokenCodec
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Clock       func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenCodec(cfg.JWTSecret, auth.WithClock(now))
	}
	return &AuthService{
		credentials:   deps.Credentials,
		sessions:      deps.Sessions,
		tokens:        tokens,
		lifecycle:     NewAccountLifecycle(deps.Credentials, cfg.RecoveryWindow(), now),
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		metrics:       deps.Metrics,
		now:           now,
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
		restorableTTL: cfg.RestorableTTL(),
	}
}

// Login authenticates a member. A soft-deleted member still inside the
// recovery window gets short-lived restorable tokens instead of normal ones.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	result, err := s.login(ctx, username, password)
	s.record("login", err)
	return result, err
}

func (s *AuthService) login(ctx context.Context, username, password string) (*LoginResult, error) {
	cred, err := s.credentials.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, err
	}

	var result *LoginResult
	switch s.lifecycle.Status(cred) {
	case domain.AccountPermanentlyDeleted:
		return nil, auth.ErrAccountPermanentlyDeleted
	case domain.AccountRecoverable:
		pair, err := s.startSession(ctx, cred.Username, cred.Role, cred.Verified, true)
		if err != nil {
			return nil, err
		}
		result = &LoginResult{TokenPair: *pair, IsDeletedAccount: true}
	default:
		pair, err := s.startSession(ctx, cred.Username, cred.Role, cred.Verified, false)
		if err != nil {
			return nil, err
		}
		result = &LoginResult{TokenPair: *pair}
	}

	s.publish(ctx, events.EventLoggedIn, cred.Username, events.LoggedInPayload{
		Role:             string(cred.Role),
		IsDeletedAccount: result.IsDeletedAccount,
	})
	return result, nil
}

// Logout revokes every presented token that still verifies. Once one of
// them identifies the subject, the subject's active access token is
// blacklisted too and the session record is cleared, whichever token was
// presented. Tokens that fail verification are ignored, so repeated logouts
// succeed.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	err := s.logout(ctx, accessToken, refreshToken)
	s.record("logout", err)
	return err
}

func (s *AuthService) logout(ctx context.Context, accessToken, refreshToken string) error {
	revoked := 0
	subject := ""
	seen := map[string]bool{}
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := s.tokens.Verify(token)
		if err != nil {
			continue
		}
		if err := s.sessions.Blacklist(ctx, token, s.tokens.RemainingTTL(claims)); err != nil {
			return storeUnavailable(err)
		}
		if subject == "" {
			subject = claims.Subject
		}
		seen[token] = true
		revoked++
	}
	if subject == "" {
		return nil
	}

	active, ok, err := s.sessions.GetActive(ctx, subject)
	if err != nil {
		return storeUnavailable(err)
	}
	cleared := false
	if ok {
		if !seen[active] {
			if claims, err := s.tokens.Verify(active); err == nil {
				if err := s.sessions.Blacklist(ctx, active, s.tokens.RemainingTTL(claims)); err != nil {
					return storeUnavailable(err)
				}
				revoked++
			}
		}
		// compare-and-delete so a login that raced in after GetActive survives
		cleared, err = s.sessions.ClearActive(ctx, subject, active)
		if err != nil {
			return storeUnavailable(err)
		}
	}

	s.publish(ctx, events.EventLoggedOut, subject, events.LoggedOutPayload{
		RevokedTokens:  revoked,
		SessionCleared: cleared,
	})
	return nil
}

// Refresh exchanges a refresh token for a new access token and a rotated
// refresh token. The presented refresh token is consumed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, err := s.refresh(ctx, refreshToken)
	s.record("refresh", err)
	return pair, err
}

func (s *AuthService) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, auth.ErrUnauthorized.WithMessage("refresh token required")
	}
	blacklisted, err := s.sessions.IsBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if blacklisted {
		return nil, auth.ErrUnauthorized.WithMessage("refresh token has been revoked")
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, auth.ErrUnauthorized.WithMessage("invalid refresh token").WithCause(err)
	}
	if claims.Kind() != auth.KindRefresh {
		return nil, auth.ErrUnauthorized.WithMessage("not a refresh token")
	}

	cred, err := s.credentials.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUnauthorized.WithMessage("account no longer exists")
		}
		return nil, err
	}
	if s.lifecycle.Status(cred) != domain.AccountActive {
		return nil, auth.ErrUnauthorized.WithMessage("account is not active")
	}

	first, err := s.sessions.BlacklistOnce(ctx, refreshToken, s.tokens.RemainingTTL(claims))
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if !first {
		return nil, auth.ErrUnauthorized.WithMessage("refresh token has been revoked")
	}

	pair, err := s.startSession(ctx, cred.Username, cred.Role, cred.Verified, false)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTokenRefreshed, claims.Subject, nil)
	return pair, nil
}

// Restore reactivates a soft-deleted account. token must be the restorable
// access token handed out by Login and still be the subject's active session.
func (s *AuthService) Restore(ctx context.Context, token string) (*LoginResult, error) {
	result, err := s.restore(ctx, token)
	s.record("restore", err)
	return result, err
}

func (s *AuthService) restore(ctx context.Context, token string) (*LoginResult, error) {
	if token == "" {
		return nil, auth.ErrUnauthorized
	}
	blacklisted, err := s.sessions.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if blacklisted {
		return nil, auth.ErrTokenBlacklisted
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind() != auth.KindRestorableAccess {
		return nil, auth.ErrUnauthorized.WithMessage("a restorable access token is required")
	}

	active, ok, err := s.sessions.GetActive(ctx, claims.Subject)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if !ok || active != token {
		return nil, auth.ErrSessionMismatch
	}

	cred, err := s.credentials.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	switch s.lifecycle.Status(cred) {
	case domain.AccountActive:
		return nil, auth.ErrAccountNotDeleted
	case domain.AccountPermanentlyDeleted:
		return nil, auth.ErrAccountPermanentlyDeleted
	}

	// The conditional update picks a single winner among concurrent restores.
	// The token is consumed only afterwards so a failed write leaves it usable.
	if err := s.lifecycle.restore(ctx, cred); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrAccountNotDeleted
		}
		return nil, err
	}
	first, err := s.sessions.BlacklistOnce(ctx, token, s.tokens.RemainingTTL(claims))
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if !first {
		return nil, auth.ErrTokenBlacklisted
	}

	pair, err := s.startSession(ctx, cred.Username, cred.Role, cred.Verified, false)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAccountRestored, cred.Username, nil)
	return &LoginResult{TokenPair: *pair}, nil
}

// Withdraw soft deletes the subject's account and logs it out.
func (s *AuthService) Withdraw(ctx context.Context, subject, accessToken, refreshToken string) error {
	cred, err := s.credentials.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrAccountNotFound
		}
		return err
	}
	if s.lifecycle.Status(cred) != domain.AccountActive {
		return auth.ErrUnauthorized.WithMessage("account is not active")
	}
	if err := s.lifecycle.MarkDeleted(ctx, cred); err != nil {
		return err
	}
	if err := s.Logout(ctx, accessToken, refreshToken); err != nil {
		return err
	}

	s.publish(ctx, events.EventAccountWithdrawn, subject, nil)
	return nil
}

// ActiveSession returns the subject's current session, or nil.
func (s *AuthService) ActiveSession(ctx context.Context, subject string) (*SessionInfo, error) {
	token, ok, err := s.sessions.GetActive(ctx, subject)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if !ok {
		return nil, nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}
	return &SessionInfo{Subject: subject, Kind: claims.Kind(), ExpiresAt: claims.ExpiresAt.Time}, nil
}

// RevokeSession force-logs-out subject: its active access token is
// blacklisted and the session record removed. It reports whether a session
// existed.
func (s *AuthService) RevokeSession(ctx context.Context, subject string) (bool, error) {
	token, ok, err := s.sessions.GetActive(ctx, subject)
	if err != nil {
		return false, storeUnavailable(err)
	}
	if !ok {
		return false, nil
	}

	ttl := s.accessTTL
	if claims, err := s.tokens.Verify(token); err == nil {
		ttl = s.tokens.RemainingTTL(claims)
	}
	if err := s.sessions.Blacklist(ctx, token, ttl); err != nil {
		return false, storeUnavailable(err)
	}
	if _, err := s.sessions.ClearActive(ctx, subject, token); err != nil {
		return false, storeUnavailable(err)
	}

	s.publish(ctx, events.EventSessionRevoked, subject, events.SessionRevokedPayload{Revoked: true})
	return true, nil
}

// Tokens exposes the underlying codec for middleware usage.
func (s *AuthService) Tokens() *auth.TokenCodec {
	return s.tokens
}

// startSession issues an access/refresh pair and makes the access token the
// subject's only active session.
func (s *AuthService) startSession(ctx context.Context, subject string, role domain.Role, verified, restorable bool) (*TokenPair, error) {
	accessKind, refreshKind := auth.KindAccess, auth.KindRefresh
	accessTTL, refreshTTL := s.accessTTL, s.refreshTTL
	if restorable {
		accessKind, refreshKind = auth.KindRestorableAccess, auth.KindRestorableRefresh
		accessTTL, refreshTTL = s.restorableTTL, s.restorableTTL
	}

	access, err := s.tokens.Issue(accessKind, subject, string(role), verified, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(refreshKind, subject, string(role), verified, refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.PutActive(ctx, subject, access.Value, access.TTL()); err != nil {
		return nil, storeUnavailable(err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: s.now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func (s *AuthService) record(flow string, err error) {
	if err == nil {
		s.metrics.RecordAuth(flow, "success")
		return
	}
	s.metrics.RecordAuth(flow, errorutil.ToDomainError(err).Code)
}

// store outages surface as 401 so clients re-authenticate rather than retry
func storeUnavailable(err error) error {
	return auth.ErrUnauthorized.WithMessage("session store unavailable").WithCause(err)
}
