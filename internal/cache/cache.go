package cache

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

// Package cache holds the last successful result per (source, category) key.

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 5 * time.Minute

// Producer performs the upstream fetch for a missing or expired key.
type Producer func(ctx context.Context) ([]domain.Article, error)

// Entry is the stored result of the most recent successful fetch for a key.
type Entry struct {
	Data      []domain.Article
	Timestamp time.Time
}

// Store is an unbounded in-memory TTL cache. Entries are never evicted,
// only overwritten by a later successful fetch.
//
// Concurrent misses on the same key are not coalesced: every caller that
// observes a miss runs its producer, and the last one to finish wins.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the freshness window. Non-positive values keep DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key composes the cache key for a source and category.
func Key(sourceID, category string) string {
	return sourceID + "-" + category
}

// TTL returns the configured freshness window.
func (s *Store) TTL() time.Duration { return s.ttl }

// GetOrFetch returns the fresh entry for key, or runs produce and stores its result.
// A producer error is returned as-is and leaves the store untouched.
func (s *Store) GetOrFetch(ctx context.Context, key string, produce Producer) ([]domain.Article, error) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	fresh := ok && s.now().Sub(entry.Timestamp) < s.ttl
	s.mu.Unlock()

	if fresh {
		return domain.CloneArticles(entry.Data), nil
	}

	data, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	stored := domain.CloneArticles(data)
	s.mu.Lock()
	s.entries[key] = Entry{Data: stored, Timestamp: s.now()}
	s.mu.Unlock()

	return domain.CloneArticles(stored), nil
}

// Peek returns a copy of the entry for key regardless of freshness.
func (s *Store) Peek(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry.Data = domain.CloneArticles(entry.Data)
	return entry, true
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
