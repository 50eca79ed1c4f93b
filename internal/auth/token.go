package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes the four token flavours the service issues.
type TokenKind string

const (
	KindAccess            TokenKind = "access"
	KindRefresh           TokenKind = "refresh"
	KindRestorableAccess  TokenKind = "restorable-access"
	KindRestorableRefresh TokenKind = "restorable-refresh"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Restorable reports whether the kind is only good for account recovery.
func (k TokenKind) Restorable() bool {
	return k == KindRestorableAccess || k == KindRestorableRefresh
}

func (k TokenKind) use() string {
	switch k {
	case KindAccess, KindRestorableAccess:
		return useAccess
	case KindRefresh, KindRestorableRefresh:
		return useRefresh
	}
	return ""
}

// Claims describes the JWT payload.
type Claims struct {
	Authority string `json:"authority"`
	Verified  bool   `json:"verified"`
	Deleted   bool   `json:"deleted,omitempty"`
	Use       string `json:"typ"`
	jwt.RegisteredClaims
}

// Kind reconstructs the token kind from the use and deleted claims.
func (c *Claims) Kind() TokenKind {
	switch {
	case c.Use == useAccess && c.Deleted:
		return KindRestorableAccess
	case c.Use == useAccess:
		return KindAccess
	case c.Use == useRefresh && c.Deleted:
		return KindRestorableRefresh
	default:
		return KindRefresh
	}
}

// IssuedToken is a signed token together with the timestamps baked into it.
type IssuedToken struct {
	Value     string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL is the full lifetime of the token.
func (t *IssuedToken) TTL() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// TokenCodec signs and verifies HS512 bearer tokens. It holds no mutable
// state and performs no I/O.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	newID  func() string
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator replaces the jti generator.
func WithIDGenerator(newID func() string) CodecOption {
	return func(c *TokenCodec) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// NewTokenCodec builds a codec keyed by secret.
func NewTokenCodec(secret string, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue builds and signs a token of the given kind. Restorable kinds carry
// the deleted claim.
func (c *TokenCodec) Issue(kind TokenKind, subject, role string, verified bool, ttl time.Duration) (*IssuedToken, error) {
	use := kind.use()
	if use == "" {
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
	if subject == "" {
		return nil, errors.New("token subject is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	now := c.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := &Claims{
		Authority: role,
		Verified:  verified,
		Deleted:   kind.Restorable(),
		Use:       use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.newID(),
			Subject:   subject,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	value, err := token.SignedString(c.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Value:     value,
		Kind:      kind,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Verify checks structure, signature and expiry, in that order.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || (claims.Use != useAccess && claims.Use != useRefresh) {
		return nil, ErrTokenMalformed.WithMessage("token is missing required claims")
	}
	return claims, nil
}

// ExtractSubject returns the sub claim of a valid token.
func (c *TokenCodec) ExtractSubject(tokenStr string) (string, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRole returns the authority claim of a valid token.
func (c *TokenCodec) ExtractRole(tokenStr string) (string, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Authority, nil
}

// ExtractVerified returns the verified claim of a valid token.
func (c *TokenCodec) ExtractVerified(tokenStr string) (bool, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return false, err
	}
	return claims.Verified, nil
}

// ExtractDeleted returns the deleted claim of a valid token.
func (c *TokenCodec) ExtractDeleted(tokenStr string) (bool, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return false, err
	}
	return claims.Deleted, nil
}

// RemainingTTL is how long the token behind claims stays valid.
func (c *TokenCodec) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(c.now())
}

func (c *TokenCodec) keyFunc(_ *jwt.Token) (interface{}, error) {
	return c.secret, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed.WithCause(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature.WithCause(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	default:
		return ErrTokenMalformed.WithCause(err)
	}
}
