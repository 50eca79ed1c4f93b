package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/events"
)

// AuditService writes an audit log line for every auth lifecycle event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoggedIn, a.handleLoggedIn)
	a.dispatcher.Subscribe(events.EventLoggedOut, a.handleLoggedOut)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleGeneric)
	a.dispatcher.Subscribe(events.EventAccountRestored, a.handleGeneric)
	a.dispatcher.Subscribe(events.EventAccountWithdrawn, a.handleGeneric)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSessionRevoked)
}

func (a *AuditService) handleLoggedIn(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.LoggedInPayload); ok {
		fields = append(fields,
			zap.String("role", payload.Role),
			zap.Bool("is_deleted_account", payload.IsDeletedAccount))
	}
	a.logger.Info("LoggedIn", fields...)
	return nil
}

func (a *AuditService) handleLoggedOut(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.LoggedOutPayload); ok {
		fields = append(fields,
			zap.Int("revoked_tokens", payload.RevokedTokens),
			zap.Bool("session_cleared", payload.SessionCleared))
	}
	a.logger.Info("LoggedOut", fields...)
	return nil
}

func (a *AuditService) handleSessionRevoked(_ context.Context, event events.Event) error {
	a.logger.Warn("SessionRevoked", a.baseFields(event)...)
	return nil
}

func (a *AuditService) handleGeneric(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), a.baseFields(event)...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.Time("at", event.Timestamp),
	}
}
