package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func countingProducer(calls *int, articles ...domain.Article) Producer {
	return func(context.Context) ([]domain.Article, error) {
		*calls++
		return articles, nil
	}
}

func TestGetOrFetchServesFreshEntry(t *testing.T) {
	clock := newClock()
	store := New(WithClock(clock.Now))
	calls := 0
	produce := countingProducer(&calls, domain.Article{Title: "a", Category: "sports"})

	first, err := store.GetOrFetch(context.Background(), Key("newsapi", "sports"), produce)
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	clock.Advance(DefaultTTL - time.Millisecond)
	second, err := store.GetOrFetch(context.Background(), Key("newsapi", "sports"), produce)
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 producer call, got %d", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	clock := newClock()
	store := New(WithClock(clock.Now), WithTTL(time.Minute))
	calls := 0
	produce := countingProducer(&calls, domain.Article{Title: "a"})
	key := Key("guardian", "health")

	if _, err := store.GetOrFetch(context.Background(), key, produce); err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	before, _ := store.Peek(key)

	clock.Advance(time.Minute)
	if _, err := store.GetOrFetch(context.Background(), key, produce); err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	after, _ := store.Peek(key)

	if calls != 2 {
		t.Fatalf("expected 2 producer calls, got %d", calls)
	}
	if !after.Timestamp.After(before.Timestamp) {
		t.Fatalf("expected timestamp to advance, before=%v after=%v", before.Timestamp, after.Timestamp)
	}
}

func TestGetOrFetchDoesNotCacheFailures(t *testing.T) {
	clock := newClock()
	store := New(WithClock(clock.Now))
	key := Key("newsapi", "science")
	boom := errors.New("boom")
	calls := 0
	failing := func(context.Context) ([]domain.Article, error) {
		calls++
		return nil, boom
	}

	if _, err := store.GetOrFetch(context.Background(), key, failing); !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}
	if _, ok := store.Peek(key); ok {
		t.Fatal("failure must not create an entry")
	}
	if _, err := store.GetOrFetch(context.Background(), key, failing); err == nil {
		t.Fatal("expected second failure")
	}
	if calls != 2 {
		t.Fatalf("expected immediate retry on next call, got %d calls", calls)
	}
}

func TestGetOrFetchFailureKeepsPreviousEntry(t *testing.T) {
	clock := newClock()
	store := New(WithClock(clock.Now))
	key := Key("newsapi", "business")
	calls := 0

	if _, err := store.GetOrFetch(context.Background(), key, countingProducer(&calls, domain.Article{Title: "kept"})); err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	clock.Advance(DefaultTTL)

	_, err := store.GetOrFetch(context.Background(), key, func(context.Context) ([]domain.Article, error) {
		return nil, errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error")
	}

	entry, ok := store.Peek(key)
	if !ok || len(entry.Data) != 1 || entry.Data[0].Title != "kept" {
		t.Fatalf("expected previous entry to remain, got %+v ok=%v", entry, ok)
	}
}

func TestGetOrFetchReturnsCopies(t *testing.T) {
	store := New()
	calls := 0
	key := Key("newsapi", "sports")
	produce := countingProducer(&calls, domain.Article{Title: "orig"})

	got, _ := store.GetOrFetch(context.Background(), key, produce)
	got[0].Title = "mutated"

	again, _ := store.GetOrFetch(context.Background(), key, produce)
	if again[0].Title != "orig" {
		t.Fatalf("cache mutated through returned slice: %q", again[0].Title)
	}
}

func TestConcurrentMissesBothFetchLastWriteWins(t *testing.T) {
	store := New()
	key := Key("guardian", "politics")

	var mu sync.Mutex
	calls := 0
	slowProducer := func(title string, entered chan<- struct{}, release <-chan struct{}) Producer {
		return func(context.Context) ([]domain.Article, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(entered)
			<-release
			return []domain.Article{{Title: title}}, nil
		}
	}

	enteredA, releaseA, doneA := make(chan struct{}), make(chan struct{}), make(chan struct{})
	enteredB, releaseB, doneB := make(chan struct{}), make(chan struct{}), make(chan struct{})

	go func() {
		defer close(doneA)
		_, _ = store.GetOrFetch(context.Background(), key, slowProducer("first", enteredA, releaseA))
	}()
	<-enteredA
	go func() {
		defer close(doneB)
		_, _ = store.GetOrFetch(context.Background(), key, slowProducer("second", enteredB, releaseB))
	}()
	<-enteredB

	close(releaseB)
	<-doneB
	close(releaseA)
	<-doneA

	if calls != 2 {
		t.Fatalf("expected both callers to fetch, got %d", calls)
	}
	entry, ok := store.Peek(key)
	if !ok || entry.Data[0].Title != "first" {
		t.Fatalf("expected last resolved value to win, got %+v", entry)
	}
}

func TestWithTTLIgnoresNonPositive(t *testing.T) {
	if got := New(WithTTL(0)).TTL(); got != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", got)
	}
	if Key("newsapi", "sports") != "newsapi-sports" {
		t.Fatalf("unexpected key %q", Key("newsapi", "sports"))
	}
}
