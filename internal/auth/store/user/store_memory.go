package user

import (
	"context"
	"sort"
	"sync"

	"civicfund/internal/auth/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/email"
	"civicfund/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// InMemoryUserStore indexes users by ID and normalized email.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// Create returns ErrConflict when the ID or email is already registered.
func (s *InMemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := email.Normalize(u.Email)
	if _, ok := s.users[u.ID]; ok {
		return ErrConflict
	}
	if _, ok := s.byEmail[key]; ok {
		return ErrConflict
	}
	clone := *u
	s.users[u.ID] = &clone
	s.byEmail[key] = u.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *InMemoryUserStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	userID, ok := s.byEmail[email.Normalize(address)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, userID)
}

// List returns matching users, newest first.
func (s *InMemoryUserStore) List(_ context.Context, filter models.ListFilter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		if filter.Matches(u) {
			clone := *u
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
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

// Execute validates and mutates one user under the store lock.
func (s *InMemoryUserStore) Execute(_ context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	working := *current
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	s.users[userID] = &working
	result := working
	return &result, nil
}
