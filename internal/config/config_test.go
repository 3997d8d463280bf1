package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CACHE_TTL_MS", "")
	t.Setenv("FETCH_CATEGORIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", cfg.CacheTTL)
	}
	if cfg.NewsAPIURL != DefaultNewsAPIURL || cfg.GuardianURL != DefaultGuardianURL {
		t.Fatalf("unexpected endpoints %q %q", cfg.NewsAPIURL, cfg.GuardianURL)
	}
	if cfg.Language != "en" {
		t.Fatalf("expected language en, got %q", cfg.Language)
	}
	if len(cfg.FetchCategories) != 0 {
		t.Fatalf("expected no categories, got %v", cfg.FetchCategories)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CACHE_TTL_MS", "1500")
	t.Setenv("NEWSAPI_KEY", "secret")
	t.Setenv("FETCH_CATEGORIES", " Sports, ,health")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CacheTTL != 1500*time.Millisecond {
		t.Fatalf("unexpected ttl %v", cfg.CacheTTL)
	}
	if cfg.NewsAPIKey != "secret" {
		t.Fatalf("expected key from env, got %q", cfg.NewsAPIKey)
	}
	if len(cfg.FetchCategories) != 2 || cfg.FetchCategories[0] != "sports" || cfg.FetchCategories[1] != "health" {
		t.Fatalf("unexpected categories %v", cfg.FetchCategories)
	}
	if got := cfg.Redacted().NewsAPIKey; got != "****" {
		t.Fatalf("expected masked key, got %q", got)
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CACHE_TTL_MS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
