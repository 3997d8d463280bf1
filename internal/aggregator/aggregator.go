package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/cache"
	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// Aggregator serves normalized articles per (source, category) through a TTL cache.
// Fetch methods never return errors: a failing source yields an empty slice.
type Aggregator struct {
	reg      *sources.Registry
	fetchers sources.FetcherRegistry
	ids      []string
	cache    *cache.Store
	log      logger.Logger
}

type settings struct {
	client    sources.HTTPClient
	log       logger.Logger
	fetchers  []sources.Fetcher
	cacheOpts []cache.Option
}

// Option configures an Aggregator.
type Option func(*settings)

// WithHTTPClient sets the transport shared by the built-in fetchers.
func WithHTTPClient(c sources.HTTPClient) Option {
	return func(s *settings) { s.client = c }
}

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithClock overrides the cache time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, cache.WithClock(now)) }
}

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, cache.WithTTL(ttl)) }
}

// WithFetchers replaces the fetchers built from the registry.
func WithFetchers(fs ...sources.Fetcher) Option {
	return func(s *settings) { s.fetchers = fs }
}

// New builds an aggregator over the sources in reg.
func New(reg *sources.Registry, opts ...Option) (*Aggregator, error) {
	if reg == nil {
		return nil, fmt.Errorf("source registry must not be nil")
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	fetchers := s.fetchers
	if len(fetchers) == 0 {
		built, err := sources.BuildFetchers(reg, s.client)
		if err != nil {
			return nil, fmt.Errorf("build fetchers: %w", err)
		}
		fetchers = built
	}

	ids := make([]string, 0, len(fetchers))
	for _, f := range fetchers {
		ids = append(ids, f.ID())
	}

	return &Aggregator{
		reg:      reg,
		fetchers: sources.NewFetcherRegistry(fetchers...),
		ids:      ids,
		cache:    cache.New(s.cacheOpts...),
		log:      logger.Ensure(s.log),
	}, nil
}

// FetchFromSource returns articles for category from one source, using the cache.
func (a *Aggregator) FetchFromSource(ctx context.Context, sourceID, category string) []domain.Article {
	f, err := a.fetchers.FetcherFor(sourceID)
	if err != nil {
		a.log.WarnObj("source lookup failed", "source_error", map[string]any{
			"source_id": sourceID,
			"category":  category,
			"error":     err.Error(),
		})
		return []domain.Article{}
	}

	articles, err := a.cache.GetOrFetch(ctx, cache.Key(f.ID(), category), func(ctx context.Context) ([]domain.Article, error) {
		return a.fetch(ctx, f, category)
	})
	if err != nil {
		return []domain.Article{}
	}
	return articles
}

// fetch runs one upstream call and logs its outcome.
func (a *Aggregator) fetch(ctx context.Context, f sources.Fetcher, category string) ([]domain.Article, error) {
	start := time.Now()
	articles, err := f.Fetch(ctx, category)
	if err != nil {
		fields := map[string]any{
			"source_id": f.ID(),
			"category":  category,
			"kind":      sources.KindName(err),
			"error":     err.Error(),
		}
		var fe *sources.FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			fields["status_code"] = fe.StatusCode
		}
		a.log.ErrorObj("source fetch failed", "source_error", fields)
		return nil, err
	}

	a.log.InfoObj("source fetch completed", "source_result", map[string]any{
		"source_id":  f.ID(),
		"category":   category,
		"articles":   len(articles),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return articles, nil
}

// FetchHeadlines fetches category from the built-in headlines source.
func (a *Aggregator) FetchHeadlines(ctx context.Context, category string) []domain.Article {
	return a.FetchFromSource(ctx, sources.HeadlinesSourceID, category)
}

// FetchEditorial fetches category from the built-in editorial source.
func (a *Aggregator) FetchEditorial(ctx context.Context, category string) []domain.Article {
	return a.FetchFromSource(ctx, sources.EditorialSourceID, category)
}

// FetchAll queries every source concurrently and concatenates the results in
// source order. Duplicates across sources are kept.
func (a *Aggregator) FetchAll(ctx context.Context, category string) []domain.Article {
	results := make([][]domain.Article, len(a.ids))

	var wg sync.WaitGroup
	for i, id := range a.ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = a.FetchFromSource(ctx, id, category)
		}(i, id)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]domain.Article, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// Sources returns the ids of the configured sources in registry order.
func (a *Aggregator) Sources() []string {
	return append([]string(nil), a.ids...)
}

// Categories returns the shared category vocabulary.
func (a *Aggregator) Categories() []string {
	return a.reg.Categories()
}
