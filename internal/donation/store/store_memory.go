package store

import (
	"context"
	"sort"
	"sync"

	"civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// InMemoryStore keeps donations in insertion order.
type InMemoryStore struct {
	mu        sync.RWMutex
	donations []*models.Donation
	byID      map[id.DonationID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[id.DonationID]int)}
}

func (s *InMemoryStore) Create(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; ok {
		return ErrConflict
	}
	clone := *d
	s.byID[d.ID] = len(s.donations)
	s.donations = append(s.donations, &clone)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, donationID id.DonationID) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *s.donations[idx]
	return &clone, nil
}

// List returns matching donations newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Donation, 0)
	for _, d := range s.donations {
		if filter.Matches(d) {
			clone := *d
			result = append(result, &clone)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
