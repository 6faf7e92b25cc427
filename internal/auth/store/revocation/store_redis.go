package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "civicfund_session_revocation_check_duration_ms",
		Help:    "Latency of session revocation checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

const revokedSessionKeyPrefix = "revoked:session:"

// RedisList shares revoked sessions across server instances. Keys expire
// with the tokens they block.
type RedisList struct {
	client *redis.Client
}

func NewRedisList(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

func (l *RedisList) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if sessionID == "" {
		return nil
	}
	// key existence is the marker
	return l.client.Set(ctx, revokedSessionKeyPrefix+sessionID, "1", ttl).Err()
}

func (l *RedisList) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if sessionID == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedSessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
