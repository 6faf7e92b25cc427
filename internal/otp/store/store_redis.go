package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
)

const (
	challengeKeyPrefix = "otp:challenge:"
	maxWatchRetries    = 5
)

// RedisStore keeps challenges as JSON values that expire shortly after the code does.
// Updates use WATCH/MULTI so concurrent verifications cannot lose an attempt.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(challengeID id.ChallengeID) string {
	return challengeKeyPrefix + challengeID.String()
}

func ttlFor(c *models.Challenge) time.Duration {
	remaining := time.Until(c.ExpiresAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining + retention
}

func (s *RedisStore) Create(ctx context.Context, c *models.Challenge) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(c.ID), payload, ttlFor(c)).Result()
	if err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	raw, err := s.client.Get(ctx, key(challengeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	return decode(raw)
}

// Update persists whatever fn did to the challenge, then returns fn's error
// alongside the updated copy.
func (s *RedisStore) Update(ctx context.Context, challengeID id.ChallengeID, fn func(*models.Challenge) error) (*models.Challenge, error) {
	k := key(challengeID)
	var (
		result *models.Challenge
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load challenge: %w", err)
		}
		c, err := decode(raw)
		if err != nil {
			return err
		}
		fnErr = fn(c)
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode challenge: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, ttlFor(c))
			return nil
		})
		result = c
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return result, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func decode(raw []byte) (*models.Challenge, error) {
	var c models.Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &c, nil
}
