package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/aggregator"
	"github.com/samvad-hq/samvad-news-aggregator/internal/config"
	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// App wires config, sources and the aggregator, and runs a one-shot fetch
// that writes the result as JSON.
type App struct {
	cfg *config.Config
	agg *aggregator.Aggregator
	log logger.Logger
	out io.Writer
}

// New builds the runtime from config. out defaults to stdout.
func New(cfg *config.Config, log logger.Logger, out io.Writer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if out == nil {
		out = os.Stdout
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}

	srcs := reg.All()
	ids := make([]string, 0, len(srcs))
	for _, s := range srcs {
		ids = append(ids, s.ID)
		if s.Credential == "" {
			log.WarnObj("source has no credential; upstream will likely reject requests", "source_id", s.ID)
		}
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(ids),
		"ids":   ids,
		"file":  cfg.SourcesFile,
	})

	agg, err := aggregator.New(reg,
		aggregator.WithHTTPClient(httpclient.NewRestyClient(cfg.HTTPTimeout)),
		aggregator.WithTTL(cfg.CacheTTL),
		aggregator.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("init aggregator: %w", err)
	}

	return &App{cfg: cfg, agg: agg, log: log, out: out}, nil
}

func loadRegistry(cfg *config.Config) (*sources.Registry, error) {
	if cfg.SourcesFile != "" {
		return sources.LoadRegistry(cfg.SourcesFile, os.Getenv)
	}
	return sources.NewRegistry(sources.DefaultSources(sources.DefaultOptions{
		NewsAPIURL:  cfg.NewsAPIURL,
		NewsAPIKey:  cfg.NewsAPIKey,
		GuardianURL: cfg.GuardianURL,
		GuardianKey: cfg.GuardianKey,
		Language:    cfg.Language,
	})...)
}

// Run fetches every requested category from all sources and writes
// {category: [articles...]} to the output.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.agg == nil {
		return fmt.Errorf("app is not initialized")
	}

	categories := a.cfg.FetchCategories
	if len(categories) == 0 {
		categories = a.agg.Categories()
	}

	start := time.Now()
	result := make(map[string][]domain.Article, len(categories))
	for _, c := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sources.IsCategory(c) {
			a.log.WarnObj("skipping unknown category", "category", c)
			continue
		}
		result[c] = a.agg.FetchAll(ctx, c)
	}

	total := 0
	for _, arts := range result {
		total += len(arts)
	}
	a.log.InfoObj("fetch completed", "fetch_meta", map[string]any{
		"categories": len(result),
		"articles":   total,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
