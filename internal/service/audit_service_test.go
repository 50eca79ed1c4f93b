package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tripfriend/auth-service/internal/events"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID: "1", Type: events.EventLoggedIn, Subject: "user1", Timestamp: at,
		Payload: events.LoggedInPayload{Role: "USER", IsDeletedAccount: true},
	}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID: "2", Type: events.EventSessionRevoked, Subject: "user1", Timestamp: at,
	}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID: "3", Type: events.EventAccountRestored, Subject: "user1", Timestamp: at,
	}))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, "LoggedIn", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "user1", fields["subject"])
	assert.Equal(t, "USER", fields["role"])
	assert.Equal(t, true, fields["is_deleted_account"])
	assert.Equal(t, "audit", entries[0].LoggerName)

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "account_restored", entries[2].Message)
}
