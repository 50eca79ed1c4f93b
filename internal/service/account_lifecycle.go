package service

import (
	"context"
	"time"

	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/repository"
)

// AccountLifecycle decides whether a member is active, soft deleted but
// still recoverable, or gone for good.
type AccountLifecycle struct {
	credentials repository.CredentialRepository
	window      time.Duration
	now         func() time.Time
}

// NewAccountLifecycle builds a lifecycle with the given recovery window.
func NewAccountLifecycle(credentials repository.CredentialRepository, window time.Duration, now func() time.Time) *AccountLifecycle {
	if now == nil {
		now = time.Now
	}
	return &AccountLifecycle{credentials: credentials, window: window, now: now}
}

// Status classifies cred at the current instant.
func (l *AccountLifecycle) Status(cred *domain.Credential) domain.AccountStatus {
	if cred.DeletedAt == nil {
		return domain.AccountActive
	}
	if l.now().Sub(*cred.DeletedAt) < l.window {
		return domain.AccountRecoverable
	}
	return domain.AccountPermanentlyDeleted
}

// MarkDeleted soft deletes cred and starts its recovery window.
func (l *AccountLifecycle) MarkDeleted(ctx context.Context, cred *domain.Credential) error {
	at := l.now()
	if err := l.credentials.MarkDeleted(ctx, cred.ID, at); err != nil {
		return err
	}
	cred.DeletedAt = &at
	return nil
}

// restore clears the soft delete. Only AuthService calls it, after a
// restorable token has been verified.
func (l *AccountLifecycle) restore(ctx context.Context, cred *domain.Credential) error {
	if err := l.credentials.Restore(ctx, cred.ID); err != nil {
		return err
	}
	cred.DeletedAt = nil
	return nil
}
