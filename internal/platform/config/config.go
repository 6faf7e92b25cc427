// Package config loads server configuration from CIVICFUND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name declared in the structs below.
const EnvPrefix = "CIVICFUND_"

// DevSigningKey is the fallback JWT key; production refuses to start with it.
const DevSigningKey = "dev-secret-key-change-in-production"

// Config is the full server configuration.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Environment     string        `env:"ENV" envDefault:"development"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	SeedFixtures    bool          `env:"SEED_FIXTURES" envDefault:"true"`

	// TrustedProxies are addresses or CIDR ranges allowed to set the client
	// IP through X-Forwarded-For and X-Real-IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	Log       LogConfig
	Auth      AuthConfig
	OTP       OTPConfig
	Database  DatabaseConfig
	Blog      BlogConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Otel      OtelConfig
	RateLimit RateLimitConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT"` // json or text; empty picks by environment
}

// AuthConfig configures password hashing and session tokens.
type AuthConfig struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"civicfund"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
}

// OTPConfig configures the one-time code step of login.
type OTPConfig struct {
	DemoMode       bool          `env:"OTP_DEMO_MODE" envDefault:"false"`
	TTL            time.Duration `env:"OTP_TTL" envDefault:"5m"`
	ResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN" envDefault:"30s"`
	MaxAttempts    int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
}

// DatabaseConfig configures PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// BlogConfig configures the SQLite blog store. An empty path selects the in-memory store.
type BlogConfig struct {
	DBPath string `env:"BLOG_DB_PATH"`
}

// RedisConfig configures Redis. An empty URL selects in-memory OTP and rate-limit stores.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig enables the Kafka audit publisher when brokers are set.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"civicfund.audit"`
}

// OtelConfig enables OTLP/HTTP tracing when an endpoint is set.
type OtelConfig struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// RateLimitConfig caps form submissions per client IP per window.
type RateLimitConfig struct {
	Window    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	Login     int           `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
	OTP       int           `env:"RATE_LIMIT_OTP" envDefault:"10"`
	Donation  int           `env:"RATE_LIMIT_DONATION" envDefault:"30"`
	Register  int           `env:"RATE_LIMIT_REGISTER" envDefault:"5"`
	Allowlist []string      `env:"RATE_LIMIT_ALLOWLIST" envSeparator:","`
}

// ParseEnv loads configuration from CIVICFUND_* environment variables into target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds and validates a Config so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with production guards.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects configurations that are unsafe or meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.OTP.MaxAttempts < 1 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS must be at least 1"))
	}
	if c.OTP.TTL <= 0 || c.OTP.ResendCooldown < 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive and OTP_RESEND_COOLDOWN non-negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.IsProduction() {
		if c.Auth.JWTSigningKey == DevSigningKey || len(c.Auth.JWTSigningKey) < 32 {
			errs = append(errs, errors.New("JWT_SIGNING_KEY must be set to at least 32 bytes in production"))
		}
		if c.OTP.DemoMode {
			errs = append(errs, errors.New("OTP_DEMO_MODE cannot be enabled in production"))
		}
	}
	return errors.Join(errs...)
}
