package auth

import (
	"net/http"

	"github.com/tripfriend/auth-service/pkg/util/errorutil"
)

// Login-time failures, surfaced by the auth service.
var (
	ErrInvalidCredentials        = errorutil.NewDomainError("INVALID_CREDENTIALS", "invalid username or password", http.StatusBadRequest, nil)
	ErrAccountNotFound           = errorutil.NewDomainError("ACCOUNT_NOT_FOUND", "account not found", http.StatusNotFound, nil)
	ErrAccountPermanentlyDeleted = errorutil.NewDomainError("ACCOUNT_PERMANENTLY_DELETED", "account has been permanently deleted; please sign up again", http.StatusForbidden, nil)
	ErrAccountNotDeleted         = errorutil.NewDomainError("ACCOUNT_NOT_DELETED", "account is not pending deletion", http.StatusConflict, nil)
)

// Request-time failures, surfaced by the gateway. All map to 401.
var (
	ErrTokenExpired     = errorutil.NewDomainError("TOKEN_EXPIRED", "token has expired", http.StatusUnauthorized, nil)
	ErrTokenMalformed   = errorutil.NewDomainError("TOKEN_MALFORMED", "token is malformed", http.StatusUnauthorized, nil)
	ErrInvalidSignature = errorutil.NewDomainError("INVALID_SIGNATURE", "token signature is invalid", http.StatusUnauthorized, nil)
	ErrTokenBlacklisted = errorutil.NewDomainError("TOKEN_BLACKLISTED", "token has been logged out", http.StatusUnauthorized, nil)
	ErrSessionMismatch  = errorutil.NewDomainError("SESSION_MISMATCH", "token is not the active session", http.StatusUnauthorized, nil)
	ErrEmailNotVerified = errorutil.NewDomainError("EMAIL_NOT_VERIFIED", "email verification has not been completed", http.StatusUnauthorized, nil)
	ErrUnauthorized     = errorutil.NewDomainError("UNAUTHORIZED", "authentication required", http.StatusUnauthorized, nil)
)

// ErrForbidden is returned by role checks.
var ErrForbidden = errorutil.NewDomainError("FORBIDDEN", "insufficient role", http.StatusForbidden, nil)
