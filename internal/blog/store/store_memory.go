package store

import (
	"context"
	"sync"

	"civicfund/internal/blog/models"
	"civicfund/pkg/platform/sentinel"
)

var ErrNotFound = sentinel.ErrNotFound

// InMemoryStore keeps posts keyed by slug.
type InMemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{posts: make(map[string]*models.Post)}
}

// Upsert inserts the post or replaces the one with the same slug.
func (s *InMemoryStore) Upsert(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.Slug] = p.Clone()
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// IncrementViews bumps the view counter and returns the updated post.
func (s *InMemoryStore) IncrementViews(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[slug]
	if !ok {
		return nil, ErrNotFound
	}
	p.Views++
	return p.Clone(), nil
}
