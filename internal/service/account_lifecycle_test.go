package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfriend/auth-service/internal/domain"
)

func TestAccountLifecycleStatus(t *testing.T) {
	clock := newFakeClock()
	lifecycle := NewAccountLifecycle(newMemCredentials(), 10*time.Minute, clock.Now)

	deletedAgo := func(d time.Duration) *domain.Credential {
		at := clock.Now().Add(-d)
		return &domain.Credential{DeletedAt: &at}
	}

	assert.Equal(t, domain.AccountActive, lifecycle.Status(&domain.Credential{}))
	assert.Equal(t, domain.AccountRecoverable, lifecycle.Status(deletedAgo(0)))
	assert.Equal(t, domain.AccountRecoverable, lifecycle.Status(deletedAgo(5*time.Minute)))
	assert.Equal(t, domain.AccountRecoverable, lifecycle.Status(deletedAgo(10*time.Minute-time.Second)))
	assert.Equal(t, domain.AccountPermanentlyDeleted, lifecycle.Status(deletedAgo(10*time.Minute)))
	assert.Equal(t, domain.AccountPermanentlyDeleted, lifecycle.Status(deletedAgo(24*time.Hour)))
}

func TestAccountLifecycleMarkDeletedAndRestore(t *testing.T) {
	clock := newFakeClock()
	credentials := newMemCredentials()
	lifecycle := NewAccountLifecycle(credentials, 10*time.Minute, clock.Now)
	ctx := context.Background()

	cred := &domain.Credential{Username: "user1", Role: domain.RoleUser}
	require.NoError(t, credentials.Create(ctx, cred))

	require.NoError(t, lifecycle.MarkDeleted(ctx, cred))
	require.NotNil(t, cred.DeletedAt)
	assert.Equal(t, domain.AccountRecoverable, lifecycle.Status(cred))

	stored, err := credentials.GetByUsername(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), *stored.DeletedAt)

	assert.ErrorIs(t, lifecycle.MarkDeleted(ctx, cred), pgx.ErrNoRows)

	clock.Advance(3 * time.Minute)
	require.NoError(t, lifecycle.restore(ctx, cred))
	assert.Nil(t, cred.DeletedAt)
	assert.Equal(t, domain.AccountActive, lifecycle.Status(cred))

	assert.ErrorIs(t, lifecycle.restore(ctx, cred), pgx.ErrNoRows)
}
