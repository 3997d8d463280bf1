package sources

import (
	"context"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
)

// Fetcher retrieves and normalizes one category worth of articles from exactly one source.
type Fetcher interface {
	ID() string
	Label() string
	Fetch(ctx context.Context, category string) ([]domain.Article, error)
}

// FetcherRegistry resolves the fetcher for a source id.
type FetcherRegistry interface {
	FetcherFor(sourceID string) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
