package store

import (
	"context"
	"sort"
	"sync"

	"civicfund/internal/campaign/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/sentinel"
)

// Error aliases keep store callers on the shared sentinels.
var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// InMemoryStore is a mutex-guarded campaign store for development and tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	campaigns map[id.CampaignID]*models.Campaign
	slugs     map[string]id.CampaignID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		campaigns: make(map[id.CampaignID]*models.Campaign),
		slugs:     make(map[string]id.CampaignID),
	}
}

// Create inserts a campaign. Returns ErrConflict when the slug or ID is taken.
func (s *InMemoryStore) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return ErrConflict
	}
	if _, ok := s.slugs[c.Slug]; ok {
		return ErrConflict
	}
	clone := *c
	s.campaigns[c.ID] = &clone
	s.slugs[c.Slug] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemoryStore) FindBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	s.mu.RLock()
	campaignID, ok := s.slugs[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, campaignID)
}

// List returns matching campaigns, featured first, then newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if filter.Matches(c) {
			clone := *c
			result = append(result, &clone)
		}
	}
	sortForListing(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Execute validates and mutates one campaign under the store lock.
// The campaign is only changed when validate returns nil.
func (s *InMemoryStore) Execute(_ context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.campaigns[campaignID]
	if !ok {
		return nil, ErrNotFound
	}
	working := *current
	if err := validate(&working); err != nil {
		return nil, err
	}
	mutate(&working)
	s.campaigns[campaignID] = &working

	result := working
	return &result, nil
}

func sortForListing(campaigns []*models.Campaign) {
	sort.SliceStable(campaigns, func(i, j int) bool {
		a, b := campaigns[i], campaigns[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
