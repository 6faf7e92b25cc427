package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 30*time.Second, cfg.OTP.ResendCooldown)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.False(t, cfg.OTP.DemoMode)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "civicfund.audit", cfg.Kafka.AuditTopic)
	assert.True(t, cfg.SeedFixtures)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CIVICFUND_ADDR", ":9090")
	t.Setenv("CIVICFUND_OTP_DEMO_MODE", "true")
	t.Setenv("CIVICFUND_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CIVICFUND_RATE_LIMIT_LOGIN", "3")
	t.Setenv("CIVICFUND_TRUSTED_PROXIES", "127.0.0.1,10.0.0.0/8")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.OTP.DemoMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.RateLimit.Login)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestFromEnvParseError(t *testing.T) {
	t.Setenv("CIVICFUND_OTP_MAX_ATTEMPTS", "many")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateProductionGuards(t *testing.T) {
	t.Setenv("CIVICFUND_ENV", "production")
	t.Setenv("CIVICFUND_OTP_DEMO_MODE", "true")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
	assert.Contains(t, err.Error(), "OTP_DEMO_MODE")
}

func TestValidateProductionAcceptsStrongKey(t *testing.T) {
	t.Setenv("CIVICFUND_ENV", "production")
	t.Setenv("CIVICFUND_JWT_SIGNING_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
