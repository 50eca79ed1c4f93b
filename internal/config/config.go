package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	RunMigrations     bool
	MigrationsDir     string
	ConnMaxIdleSec    int32
	ConnMaxLifeSec    int32
	ConnectTimeoutSec int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication and session parameters.
type AuthConfig struct {
	JWTSecret                 string
	AccessTokenTTLMinutes     int
	RefreshTokenTTLMinutes    int
	RestorableTokenTTLMinutes int
	RecoveryWindowMinutes     int
	SessionStoreTimeoutMillis int
	StrictSession             bool
	CookieSecure              bool
	BcryptCost                int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tripfriend-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:               os.Getenv("POSTGRES_DSN"),
			MaxConns:          int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:     getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:     getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:    int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:    int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectTimeoutSec: getEnvAsInt("POSTGRES_CONNECT_TIMEOUT_SECONDS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                 os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes:     getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30),
			RefreshTokenTTLMinutes:    getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 7*24*60),
			RestorableTokenTTLMinutes: getEnvAsInt("AUTH_RESTORABLE_TOKEN_TTL_MINUTES", 10),
			RecoveryWindowMinutes:     getEnvAsInt("AUTH_RECOVERY_WINDOW_MINUTES", 10),
			SessionStoreTimeoutMillis: getEnvAsInt("AUTH_SESSION_STORE_TIMEOUT_MS", 500),
			StrictSession:             getEnvAsBool("AUTH_STRICT_SESSION", true),
			CookieSecure:              getEnvAsBool("AUTH_COOKIE_SECURE", true),
			BcryptCost:                getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectTimeout bounds dialing and the startup ping.
func (p PostgresConfig) ConnectTimeout() time.Duration {
	if p.ConnectTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.ConnectTimeoutSec) * time.Second
}

// Validate rejects settings the auth subsystem cannot run with.
func (a AuthConfig) Validate() error {
	if len(a.JWTSecret) < 64 {
		return errors.New("AUTH_JWT_SECRET must be at least 64 bytes for HS512")
	}
	if a.AccessTokenTTLMinutes <= 0 || a.RefreshTokenTTLMinutes <= 0 || a.RestorableTokenTTLMinutes <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if a.RecoveryWindowMinutes <= 0 {
		return errors.New("AUTH_RECOVERY_WINDOW_MINUTES must be positive")
	}
	return nil
}

// AccessTTL is the lifetime of a normal access token.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTTL is the lifetime of a normal refresh token.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// RestorableTTL is the lifetime of both restorable tokens.
func (a AuthConfig) RestorableTTL() time.Duration {
	return time.Duration(a.RestorableTokenTTLMinutes) * time.Minute
}

// RecoveryWindow is how long after a soft delete an account may still be restored.
func (a AuthConfig) RecoveryWindow() time.Duration {
	return time.Duration(a.RecoveryWindowMinutes) * time.Minute
}

// SessionStoreTimeout bounds every session store round trip.
func (a AuthConfig) SessionStoreTimeout() time.Duration {
	if a.SessionStoreTimeoutMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(a.SessionStoreTimeoutMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
