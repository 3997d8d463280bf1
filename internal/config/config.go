package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName     string `mapstructure:"app_name"`
	Env         string `mapstructure:"app_env"`
	LogLevel    string `mapstructure:"log_level"`
	SourcesFile string `mapstructure:"sources_file"`

	CacheTTLMs         int64         `mapstructure:"cache_ttl_ms"`
	CacheTTL           time.Duration `mapstructure:"-"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	NewsAPIURL  string `mapstructure:"newsapi_url"`
	NewsAPIKey  string `mapstructure:"newsapi_key"`
	GuardianURL string `mapstructure:"guardian_url"`
	GuardianKey string `mapstructure:"guardian_key"`
	Language    string `mapstructure:"headlines_language"`

	FetchCategoriesRaw string   `mapstructure:"fetch_categories"`
	FetchCategories    []string `mapstructure:"-"`
}

const (
	DefaultNewsAPIURL  = "https://newsapi.org/v2/top-headlines"
	DefaultGuardianURL = "https://content.guardianapis.com/search"
	DefaultCacheTTLMs  = int64((5 * time.Minute) / time.Millisecond)
)

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-news-aggregator")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "")
	v.SetDefault("cache_ttl_ms", DefaultCacheTTLMs)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("newsapi_url", DefaultNewsAPIURL)
	v.SetDefault("newsapi_key", "")
	v.SetDefault("guardian_url", DefaultGuardianURL)
	v.SetDefault("guardian_key", "")
	v.SetDefault("headlines_language", "en")
	v.SetDefault("fetch_categories", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	if c.CacheTTLMs <= 0 {
		return fmt.Errorf("invalid cache_ttl_ms (must be positive milliseconds)")
	}
	c.CacheTTL = time.Duration(c.CacheTTLMs) * time.Millisecond

	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	c.SourcesFile = strings.TrimSpace(c.SourcesFile)
	c.FetchCategories = splitList(c.FetchCategoriesRaw)
	return nil
}

// Redacted returns a copy safe for logging: credentials are masked.
func (c Config) Redacted() Config {
	c.NewsAPIKey = mask(c.NewsAPIKey)
	c.GuardianKey = mask(c.GuardianKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
