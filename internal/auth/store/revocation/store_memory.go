package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryList holds revoked session IDs until their tokens would have expired.
type InMemoryList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   Clock
}

type InMemoryOption func(*InMemoryList)

func WithClock(clock Clock) InMemoryOption {
	return func(l *InMemoryList) {
		if clock != nil {
			l.clock = clock
		}
	}
}

func NewInMemoryList(opts ...InMemoryOption) *InMemoryList {
	l := &InMemoryList{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *InMemoryList) RevokeSession(_ context.Context, sessionID string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if sessionID == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	for key, until := range l.revoked {
		if !now.Before(until) {
			delete(l.revoked, key)
		}
	}
	l.revoked[sessionID] = now.Add(ttl)
	return nil
}

func (l *InMemoryList) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.revoked[sessionID]
	if !ok {
		return false, nil
	}
	return l.clock().Before(until), nil
}
