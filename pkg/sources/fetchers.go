package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
)

// fetcherRegistry implements FetcherRegistry.
type fetcherRegistry struct {
	fetchers map[string]Fetcher
}

// NewFetcherRegistry builds a registry for the provided fetchers keyed by source id.
// A later fetcher with the same id replaces the earlier one.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{fetchers: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.ID()))
	if key == "" {
		return
	}
	r.fetchers[key] = f
}

// FetcherFor returns the fetcher registered for sourceID.
func (r *fetcherRegistry) FetcherFor(sourceID string) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	key := strings.ToLower(strings.TrimSpace(sourceID))
	if key == "" {
		return nil, fmt.Errorf("source id is empty")
	}
	if f, ok := r.fetchers[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for source %q", sourceID)
}

// DefaultHTTPClient returns the resty-backed client used when none is injected.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// BuildFetchers creates one fetcher per registry entry, sharing client.
func BuildFetchers(reg *Registry, client HTTPClient) ([]Fetcher, error) {
	if reg == nil {
		return nil, fmt.Errorf("source registry is nil")
	}
	if client == nil {
		client = DefaultHTTPClient()
	}

	srcs := reg.All()
	out := make([]Fetcher, 0, len(srcs))
	for _, src := range srcs {
		f, err := NewFetcher(src, client)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
