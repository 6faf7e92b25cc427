package bucket

import (
	"context"
	"sync"
	"time"

	"civicfund/internal/ratelimit/models"
)

const defaultSweepInterval = time.Minute

// InMemoryStore is a per-process sliding window limiter. Buckets whose
// window has emptied are swept on a later call.
type InMemoryStore struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

type bucket struct {
	timestamps []time.Time
	window     time.Duration
}

type Option func(*InMemoryStore)

func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func WithSweepInterval(d time.Duration) Option {
	return func(s *InMemoryStore) {
		s.sweepInterval = d
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		buckets:       make(map[string]*bucket),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Allow records a request under key when fewer than limit requests fall
// inside the trailing window.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	b.window = window
	b.timestamps = prune(b.timestamps, now.Add(-window))

	if len(b.timestamps) >= limit {
		resetAt := b.timestamps[0].Add(window)
		return &models.Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(resetAt, now),
		}, nil
	}

	b.timestamps = append(b.timestamps, now)
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(b.timestamps),
		ResetAt:   b.timestamps[0].Add(window),
	}, nil
}

// sweep drops buckets with no request left inside their window. Callers hold mu.
func (s *InMemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweepInterval {
		return
	}
	s.lastSweep = now
	for key, b := range s.buckets {
		b.timestamps = prune(b.timestamps, now.Add(-b.window))
		if len(b.timestamps) == 0 {
			delete(s.buckets, key)
		}
	}
}

// Len reports how many keys hold state.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Reset clears a key.
func (s *InMemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// prune drops timestamps at or before cutoff. Timestamps are ascending.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(timestamps); i++ {
		if timestamps[i].After(cutoff) {
			break
		}
	}
	return timestamps[i:]
}
