package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
)

type challengeStore interface {
	Create(ctx context.Context, c *models.Challenge) error
	FindByID(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error)
	Update(ctx context.Context, challengeID id.ChallengeID, fn func(*models.Challenge) error) (*models.Challenge, error)
}

type storeContractSuite struct {
	suite.Suite
	store challengeStore
	ctx   context.Context
}

var policy = models.Policy{TTL: 5 * time.Minute, ResendCooldown: 30 * time.Second, MaxAttempts: 5}

func (s *storeContractSuite) newChallenge() *models.Challenge {
	c := models.NewChallenge(id.ChallengeID(uuid.New()), id.UserID(uuid.New()), "hash", policy, time.Now().UTC().Truncate(time.Second))
	s.Require().NoError(s.store.Create(s.ctx, c))
	return c
}

func (s *storeContractSuite) TestCreateFind() {
	c := s.newChallenge()
	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.UserID, found.UserID)
	s.True(c.ExpiresAt.Equal(found.ExpiresAt))

	s.ErrorIs(s.store.Create(s.ctx, c), ErrConflict)
	_, err = s.store.FindByID(s.ctx, id.ChallengeID(uuid.New()))
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestUpdatePersistsEvenWhenFnFails() {
	c := s.newChallenge()
	mismatch := errors.New("mismatch")

	updated, err := s.store.Update(s.ctx, c.ID, func(c *models.Challenge) error {
		c.Attempts++
		return mismatch
	})
	s.ErrorIs(err, mismatch)
	s.Require().NotNil(updated)
	s.Equal(1, updated.Attempts)

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(1, found.Attempts)

	_, err = s.store.Update(s.ctx, id.ChallengeID(uuid.New()), func(*models.Challenge) error { return nil })
	s.ErrorIs(err, ErrNotFound)
}
