package store

import (
	"context"
	"sort"
	"sync"

	"civicfund/internal/registration/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

type InMemoryStore struct {
	mu            sync.RWMutex
	registrations map[id.RegistrationID]*models.Registration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{registrations: make(map[id.RegistrationID]*models.Registration)}
}

// Create returns ErrConflict when the email already has a pending application.
func (s *InMemoryStore) Create(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; ok {
		return ErrConflict
	}
	for _, existing := range s.registrations {
		if existing.IsPending() && existing.Email == r.Email {
			return ErrConflict
		}
	}
	s.registrations[r.ID] = clone(r)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[registrationID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

// List returns matching registrations, oldest submission first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Registration, 0, len(s.registrations))
	for _, r := range s.registrations {
		if filter.Matches(r) {
			result = append(result, clone(r))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.Before(result[j].SubmittedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *InMemoryStore) Execute(_ context.Context, registrationID id.RegistrationID, validate func(*models.Registration) error, mutate func(*models.Registration)) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.registrations[registrationID]
	if !ok {
		return nil, ErrNotFound
	}
	working := clone(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.registrations[registrationID] = working
	return clone(working), nil
}

func clone(r *models.Registration) *models.Registration {
	c := *r
	c.Documents = append([]models.DocumentMeta(nil), r.Documents...)
	return &c
}
