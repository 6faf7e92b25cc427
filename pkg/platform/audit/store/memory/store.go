package memory

import (
	"context"
	"sync"

	audit "civicfund/pkg/platform/audit"
)

const defaultCapacity = 1000

// InMemoryStore keeps the most recent audit events in a bounded ring. When
// full, the oldest event is overwritten.
type InMemoryStore struct {
	mu      sync.RWMutex
	events  []audit.Event
	head    int
	count   int
	dropped int64
}

// NewInMemoryStore creates a store holding up to capacity events.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryStore{events: make([]audit.Event, capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[s.head] = event
	s.head = (s.head + 1) % len(s.events)
	if s.count < len(s.events) {
		s.count++
	} else {
		s.dropped++
	}
	return nil
}

// ListRecent returns up to limit events, most recent first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.count {
		limit = s.count
	}
	result := make([]audit.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.head - i + len(s.events)) % len(s.events)
		result = append(result, s.events[idx])
	}
	return result, nil
}

// Dropped returns how many events were overwritten.
func (s *InMemoryStore) Dropped() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}
