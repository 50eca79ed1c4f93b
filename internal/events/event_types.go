package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoggedIn         EventType = "logged_in"
	EventLoggedOut        EventType = "logged_out"
	EventTokenRefreshed   EventType = "token_refreshed"
	EventAccountRestored  EventType = "account_restored"
	EventAccountWithdrawn EventType = "account_withdrawn"
	EventSessionRevoked   EventType = "session_revoked"
)

// Event represents an auth lifecycle event emitted by the auth service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoggedInPayload payload.
type LoggedInPayload struct {
	Role             string `json:"role"`
	IsDeletedAccount bool   `json:"is_deleted_account"`
}

// LoggedOutPayload payload.
type LoggedOutPayload struct {
	RevokedTokens  int  `json:"revoked_tokens"`
	SessionCleared bool `json:"session_cleared"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	Revoked bool `json:"revoked"`
}
