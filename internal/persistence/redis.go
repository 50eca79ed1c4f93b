package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/config"
)

const defaultRedisPingTimeout = 2 * time.Second

// Redis holds the client behind the session store.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client whose dial, socket and pool waits all fit inside
// opTimeout, the budget of a single session store call. The startup ping is
// bounded by the same budget. An unreachable server is only logged: every
// later session store call fails closed on its own.
func NewRedis(ctx context.Context, cfg config.RedisConfig, opTimeout time.Duration, logger *zap.Logger) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// a retry cannot finish inside the per-call budget
		MaxRetries:            -1,
		ContextTimeoutEnabled: true,
	}
	if opTimeout > 0 {
		opts.DialTimeout = opTimeout
		opts.ReadTimeout = opTimeout
		opts.WriteTimeout = opTimeout
		opts.PoolTimeout = opTimeout
	}

	r := &Redis{Client: redis.NewClient(opts)}

	pingTimeout := opTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultRedisPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("session store unreachable; requests will be denied until it recovers",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
