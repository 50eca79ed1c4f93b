package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	activeKeyPrefix    = "access:"
	blacklistKeyPrefix = "blacklist:"
)

// ErrStoreUnavailable wraps every transport failure of the session store.
var ErrStoreUnavailable = errors.New("session store unavailable")

// SessionStore keeps the single active access token per subject and the
// blacklist of revoked token values. Callers must treat any returned error
// as a denial.
type SessionStore interface {
	PutActive(ctx context.Context, subject, token string, ttl time.Duration) error
	GetActive(ctx context.Context, subject string) (string, bool, error)
	ClearActive(ctx context.Context, subject, token string) (bool, error)
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	BlacklistOnce(ctx context.Context, token string, ttl time.Duration) (bool, error)
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Ping(ctx context.Context) error
}

// clears KEYS[1] only while it still holds ARGV[1]
var clearActiveScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore implements SessionStore on Redis SETEX/GET/EXISTS.
type RedisSessionStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisSessionStore wraps client; every call is bounded by timeout.
func NewRedisSessionStore(client redis.UniversalClient, timeout time.Duration) *RedisSessionStore {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &RedisSessionStore{client: client, timeout: timeout}
}

// PutActive overwrites the subject's active token.
func (s *RedisSessionStore) PutActive(ctx context.Context, subject, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("active session ttl must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, activeKey(subject), token, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// GetActive returns the subject's active token. A store failure reports no
// session.
func (s *RedisSessionStore) GetActive(ctx context.Context, subject string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, activeKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err)
	}
	return val, true, nil
}

// ClearActive deletes the subject's record if it still holds token.
func (s *RedisSessionStore) ClearActive(ctx context.Context, subject, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := clearActiveScript.Run(ctx, s.client, []string{activeKey(subject)}, token).Int64()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

// Blacklist revokes token until ttl elapses. A non-positive ttl means the
// token is already past its expiry and nothing is stored.
func (s *RedisSessionStore) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// BlacklistOnce revokes token and reports whether this call was the one
// that did it. Racing callers presenting the same token get exactly one
// true between them.
func (s *RedisSessionStore) BlacklistOnce(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	first, err := s.client.SetNX(ctx, blacklistKey(token), "1", ttl).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return first, nil
}

// IsBlacklisted reports whether token was revoked. A store failure reports
// true.
func (s *RedisSessionStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return true, unavailable(err)
	}
	return n > 0, nil
}

// Ping checks the store is reachable.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func activeKey(subject string) string {
	return activeKeyPrefix + subject
}

// token values are hashed so keys stay short and never echo a credential
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
