package store

import (
	"context"
	"sync"
	"time"

	"civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// retention keeps finished challenges around long enough to answer status
// polls with a meaningful error instead of not_found.
const retention = 10 * time.Minute

// InMemoryStore holds challenges in a map; stale entries are swept on Create.
type InMemoryStore struct {
	mu         sync.Mutex
	challenges map[id.ChallengeID]*models.Challenge
	now        func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		challenges: make(map[id.ChallengeID]*models.Challenge),
		now:        time.Now,
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	if _, ok := s.challenges[c.ID]; ok {
		return ErrConflict
	}
	clone := *c
	s.challenges[c.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[challengeID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// Update persists whatever fn did to the challenge, then returns fn's error
// alongside the updated copy. Failed verifications still count.
func (s *InMemoryStore) Update(_ context.Context, challengeID id.ChallengeID, fn func(*models.Challenge) error) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[challengeID]
	if !ok {
		return nil, ErrNotFound
	}
	working := *c
	fnErr := fn(&working)
	s.challenges[challengeID] = &working
	result := working
	return &result, fnErr
}

func (s *InMemoryStore) sweepLocked() {
	cutoff := s.now().Add(-retention)
	for key, c := range s.challenges {
		if c.ExpiresAt.Before(cutoff) {
			delete(s.challenges, key)
		}
	}
}
