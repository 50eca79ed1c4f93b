package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfriend/auth-service/internal/auth"
)

func TestInspectToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := auth.NewTokenCodec(strings.Repeat("x", 64),
		auth.WithClock(func() time.Time { return now }),
		auth.WithIDGenerator(func() string { return "jti-1" }))

	issued, err := codec.Issue(auth.KindRestorableAccess, "user1", "USER", true, 10*time.Minute)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspectToken(&out, codec, issued.Value))

	text := out.String()
	assert.Contains(t, text, "user1")
	assert.Contains(t, text, "restorable-access")
	assert.Contains(t, text, "jti-1")
	assert.Contains(t, text, "2025-03-01T12:10:00Z")
	assert.Contains(t, text, "10m0s")
}

func TestInspectTokenRejectsForeignSignature(t *testing.T) {
	issuer := auth.NewTokenCodec(strings.Repeat("x", 64))
	issued, err := issuer.Issue(auth.KindAccess, "user1", "USER", true, time.Minute)
	require.NoError(t, err)

	err = inspectToken(&bytes.Buffer{}, auth.NewTokenCodec(strings.Repeat("y", 64)), issued.Value)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestRootCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"members", "create"},
		{"sessions", "show"},
		{"sessions", "revoke"},
		{"token", "inspect"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}
