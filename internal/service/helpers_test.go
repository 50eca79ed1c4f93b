package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/config"
	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/events"
	"github.com/tripfriend/auth-service/internal/observability"
)

const testPassword = "correct horse battery staple"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// memCredentials is an in-memory CredentialRepository.
type memCredentials struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*domain.Credential
	// restoreErr, when set, is returned once by the next Restore call.
	restoreErr error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{byName: make(map[string]*domain.Credential)}
}

func (m *memCredentials) Create(_ context.Context, cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cred.ID = m.nextID
	cp := *cred
	m.byName[cred.Username] = &cp
	return nil
}

func (m *memCredentials) GetByUsername(_ context.Context, username string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.byName[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *cred
	return &cp, nil
}

func (m *memCredentials) MarkDeleted(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cred := range m.byName {
		if cred.ID == id && cred.DeletedAt == nil {
			cred.DeletedAt = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memCredentials) Restore(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.restoreErr; err != nil {
		m.restoreErr = nil
		return err
	}
	for _, cred := range m.byName {
		if cred.ID == id && cred.DeletedAt != nil {
			cred.DeletedAt = nil
			return nil
		}
	}
	return pgx.ErrNoRows
}

type serviceFixture struct {
	svc         *AuthService
	credentials *memCredentials
	sessions    *auth.RedisSessionStore
	tokens      *auth.TokenCodec
	mr          *miniredis.Miniredis
	clock       *fakeClock
	metrics     *observability.Metrics
	published   *[]events.Event
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                 strings.Repeat("s", 64),
		AccessTokenTTLMinutes:     30,
		RefreshTokenTTLMinutes:    7 * 24 * 60,
		RestorableTokenTTLMinutes: 10,
		RecoveryWindowMinutes:     10,
		SessionStoreTimeoutMillis: 200,
		StrictSession:             true,
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := testAuthConfig()
	clock := newFakeClock()
	tokens := auth.NewTokenCodec(cfg.JWTSecret, auth.WithClock(clock.Now))
	sessions := auth.NewRedisSessionStore(rdb, cfg.SessionStoreTimeout())
	credentials := newMemCredentials()
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	var mu sync.Mutex
	record := func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		*published = append(*published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventLoggedIn, events.EventLoggedOut, events.EventTokenRefreshed,
		events.EventAccountRestored, events.EventAccountWithdrawn, events.EventSessionRevoked,
	} {
		dispatcher.Subscribe(et, record)
	}

	svc := NewAuthService(cfg, AuthDependencies{
		Credentials: credentials,
		Sessions:    sessions,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Clock:       clock.Now,
	})
	return &serviceFixture{
		svc:         svc,
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokens,
		mr:          mr,
		clock:       clock,
		metrics:     metrics,
		published:   published,
	}
}

// addMember registers a verified member, soft deleted deletedAgo before now
// when deletedAgo is positive.
func (f *serviceFixture) addMember(t *testing.T, username string, role domain.Role, deletedAgo time.Duration) *domain.Credential {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	cred := &domain.Credential{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Verified:     true,
	}
	if deletedAgo > 0 {
		at := f.clock.Now().Add(-deletedAgo)
		cred.DeletedAt = &at
	}
	require.NoError(t, f.credentials.Create(context.Background(), cred))
	return cred
}

func (f *serviceFixture) activeToken(t *testing.T, subject string) (string, bool) {
	t.Helper()
	token, ok, err := f.sessions.GetActive(context.Background(), subject)
	require.NoError(t, err)
	return token, ok
}

func (f *serviceFixture) blacklisted(t *testing.T, token string) bool {
	t.Helper()
	listed, err := f.sessions.IsBlacklisted(context.Background(), token)
	require.NoError(t, err)
	return listed
}

func (f *serviceFixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(*f.published))
	for _, e := range *f.published {
		out = append(out, e.Type)
	}
	return out
}

func sha256Hex(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
