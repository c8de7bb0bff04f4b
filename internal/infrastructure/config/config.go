package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig

	// DefaultRole is assigned to newly registered accounts.
	DefaultRole string `env:"DEFAULT_ROLE, default=USER"`
}

// JWTConfig holds the token codec settings. Exactly one of Secret or
// SecretBase64 must resolve to at least 32 bytes of key material; the codec
// refuses to construct otherwise.
type JWTConfig struct {
	Issuer                  string `env:"JWT_ISSUER,   default=energy-simulator"`
	Audience                string `env:"JWT_AUDIENCE, default=energy-simulator-api"`
	Secret                  string `env:"JWT_SECRET"`
	SecretBase64            string `env:"JWT_SECRET_BASE64"`
	ExpirationSeconds       int    `env:"JWT_EXPIRATION_SECONDS,        default=3600"`
	NotBeforeSkewSeconds    int    `env:"JWT_NOT_BEFORE_SKEW_SECONDS,   default=0"`
	AllowedClockSkewSeconds int    `env:"JWT_ALLOWED_CLOCK_SKEW_SECONDS, default=0"`
}

// RateLimitConfig controls the login fixed-window limiter.
type RateLimitConfig struct {
	Enabled           bool   `env:"RATELIMIT_ENABLED,             default=true"`
	Strategy          string `env:"RATELIMIT_STRATEGY,            default=IP"` // IP or IP_USER
	MaxAttempts       int    `env:"RATELIMIT_MAX_ATTEMPTS,        default=5"`
	WindowSeconds     int    `env:"RATELIMIT_WINDOW_SECONDS,      default=60"`
	RetryAfterSeconds int    `env:"RATELIMIT_RETRY_AFTER_SECONDS, default=30"`
	LoginPath         string `env:"RATELIMIT_LOGIN_PATH,          default=/auth/login"`
	// UseRedis selects the redis-backed window counter so the limit holds
	// across replicas. Default is the in-process counter.
	UseRedis bool `env:"RATELIMIT_USE_REDIS, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=energy_simulator"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Validate enforces the startup-time invariants the environment surface
// promises: a sane token lifetime and a known rate-limit strategy. Key
// material is checked by the token codec itself.
func (c *Config) Validate() error {
	if c.JWT.ExpirationSeconds < 60 {
		return fmt.Errorf("config: JWT_EXPIRATION_SECONDS must be at least 60, got %d", c.JWT.ExpirationSeconds)
	}
	if s := c.RateLimit.Strategy; s != "IP" && s != "IP_USER" {
		return fmt.Errorf("config: RATELIMIT_STRATEGY must be IP or IP_USER, got %q", s)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
