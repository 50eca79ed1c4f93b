package dto

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/tripfriend/auth-service/pkg/util/errorutil"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate runs validation rules.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

// LoginResponse is returned by login and restore.
type LoginResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	IsDeletedAccount bool   `json:"isDeletedAccount"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionResponse describes a member's active session.
type SessionResponse struct {
	Username  string    `json:"username"`
	Active    bool      `json:"active"`
	Kind      string     `json:"kind,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ValidationError converts an ozzo-validation result into a VALIDATION_FAILED
// domain error with one detail entry per field.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	details := map[string]any{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
	}
	return errorutil.NewValidationError("invalid payload", details)
}
