package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobradar/internal/cache"
	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/query"
	"github.com/amishk599/jobradar/internal/search"
)

// Provider names accepted in search.providers.
const (
	ProviderDuckDuckGo       = "duckduckgo"
	ProviderGoogle           = "google"
	ProviderRemoteRocketship = "remoterocketship"
)

var knownProviders = map[string]bool{
	ProviderDuckDuckGo:       true,
	ProviderGoogle:           true,
	ProviderRemoteRocketship: true,
}

// Config is the root configuration for jobradar.
type Config struct {
	Search       SearchConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	AI           AIConfig
	Notification NotificationConfig
	Store        StoreConfig
	Server       ServerConfig
	Watch        WatchConfig
}

// SearchConfig tunes the search pipeline.
type SearchConfig struct {
	Workers       int
	FetchTimeout  time.Duration
	BatchTimeout  time.Duration
	MaxQueries    int
	Providers     []string
	PolitenessMin time.Duration
	PolitenessMax time.Duration
	SnippetLength int
	SpamPhrases   []string // added to filter.DefaultSpamPhrases
}

// RateLimitConfig controls per-provider rate limiting.
type RateLimitConfig struct {
	MinDelay  time.Duration            // minimum gap between requests to the same provider
	Overrides map[string]time.Duration // per-provider overrides, keyed by provider name
}

// MinDelayFor returns the configured delay for the given provider, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(provider string) time.Duration {
	if d, ok := r.Overrides[provider]; ok {
		return d
	}
	return r.MinDelay
}

// CacheConfig controls provider response caching. An empty RedisURL keeps the
// cache in memory.
type CacheConfig struct {
	Enabled    bool
	TTL        time.Duration
	RedisURL   string
	MaxEntries int
}

// AIConfig controls the optional LLM posting generator.
type AIConfig struct {
	Enabled      bool
	BaseURL      string // defaults to https://api.openai.com/v1
	Model        string // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey       string // expanded from env var by Load
	Timeout      time.Duration
	GenerateJobs bool
	MaxJobs      int
	MaxRetries   int
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string
	RateLimitPerMin int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// WatchConfig lists the saved searches run by watch mode and browse.
type WatchConfig struct {
	Interval time.Duration
	MinDelay time.Duration // pause between saved searches
	Searches []SavedSearch
}

// SavedSearch is a named search request.
type SavedSearch struct {
	Name           string `yaml:"name"`
	search.Request `yaml:",inline"`
	MinScore       int `yaml:"min_score"`
}

// Find returns the saved search with the given name.
func (w WatchConfig) Find(name string) (SavedSearch, bool) {
	for _, s := range w.Searches {
		if s.Name == name {
			return s, true
		}
	}
	return SavedSearch{}, false
}

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultDBPath          = "jobradar.db"
	defaultListenAddr      = ":8080"
	defaultRateLimitPerMin = 30
	defaultWatchInterval   = time.Hour
	defaultAITimeout       = 30 * time.Second
	defaultAIRetries       = 3
	defaultProviderDelay   = 2 * time.Second
	defaultShutdownTimeout = 15 * time.Second
	slackWebhookPrefix     = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Search       rawSearchConfig    `yaml:"search"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Cache        rawCacheConfig     `yaml:"cache"`
	AI           rawAIConfig        `yaml:"ai"`
	Notification NotificationConfig `yaml:"notification"`
	Store        StoreConfig        `yaml:"store"`
	Server       rawServerConfig    `yaml:"server"`
	Watch        rawWatchConfig     `yaml:"watch"`
}

type rawSearchConfig struct {
	Workers       int      `yaml:"workers"`
	FetchTimeout  string   `yaml:"fetch_timeout"`
	BatchTimeout  string   `yaml:"batch_timeout"`
	MaxQueries    int      `yaml:"max_queries"`
	Providers     []string `yaml:"providers"`
	PolitenessMin string   `yaml:"politeness_min"`
	PolitenessMax string   `yaml:"politeness_max"`
	SnippetLength int      `yaml:"snippet_length"`
	SpamPhrases   []string `yaml:"spam_phrases"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

type rawCacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTL        string `yaml:"ttl"`
	RedisURL   string `yaml:"redis_url"`
	MaxEntries int    `yaml:"max_entries"`
}

type rawAIConfig struct {
	Enabled      bool   `yaml:"enabled"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	Timeout      string `yaml:"timeout"`
	GenerateJobs bool   `yaml:"generate_jobs"`
	MaxJobs      int    `yaml:"max_jobs"`
	MaxRetries   *int   `yaml:"max_retries"`
}

type rawServerConfig struct {
	Addr            string   `yaml:"addr"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

type rawWatchConfig struct {
	Interval string        `yaml:"interval"`
	MinDelay string        `yaml:"min_delay"`
	Searches []SavedSearch `yaml:"searches"`
}

// envOverrides are applied after the file is parsed; set variables win.
type envOverrides struct {
	OpenAIAPIKey    string `env:"JOBRADAR_OPENAI_API_KEY"`
	RedisURL        string `env:"JOBRADAR_REDIS_URL"`
	SlackWebhookURL string `env:"JOBRADAR_SLACK_WEBHOOK_URL"`
	ListenAddr      string `env:"JOBRADAR_LISTEN_ADDR"`
	DBPath          string `env:"JOBRADAR_DB_PATH"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no config file exists.
func Default() (*Config, error) {
	return Parse(nil)
}

// Parse builds a Config from YAML, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	applyOverrides(cfg, ov)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// durationOr parses s, returning def when s is empty.
func durationOr(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func fromRaw(raw rawConfig) (*Config, error) {
	var errs []error
	dur := func(field, s string, def time.Duration) time.Duration {
		d, err := durationOr(field, s, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	providers := raw.Search.Providers
	if len(providers) == 0 {
		providers = []string{ProviderDuckDuckGo}
	}

	overrides := make(map[string]time.Duration)
	for name, s := range raw.RateLimit.Overrides {
		overrides[name] = dur("rate_limit.overrides["+name+"]", s, 0)
	}

	maxRetries := defaultAIRetries
	if raw.AI.MaxRetries != nil {
		maxRetries = *raw.AI.MaxRetries
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	searches := raw.Watch.Searches
	for i := range searches {
		searches[i].Request = normalizeRequest(searches[i].Request)
	}

	cfg := &Config{
		Search: SearchConfig{
			Workers:       intOr(raw.Search.Workers, search.DefaultWorkers),
			FetchTimeout:  dur("search.fetch_timeout", raw.Search.FetchTimeout, fetch.DefaultTimeout),
			BatchTimeout:  dur("search.batch_timeout", raw.Search.BatchTimeout, search.DefaultBatchTimeout),
			MaxQueries:    intOr(raw.Search.MaxQueries, query.DefaultMaxQueries),
			Providers:     providers,
			PolitenessMin: dur("search.politeness_min", raw.Search.PolitenessMin, fetch.DefaultPolitenessMin),
			PolitenessMax: dur("search.politeness_max", raw.Search.PolitenessMax, fetch.DefaultPolitenessMax),
			SnippetLength: intOr(raw.Search.SnippetLength, filter.DefaultSnippetLength),
			SpamPhrases:   raw.Search.SpamPhrases,
		},
		RateLimit: RateLimitConfig{
			MinDelay:  dur("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultProviderDelay),
			Overrides: overrides,
		},
		Cache: CacheConfig{
			Enabled:    raw.Cache.Enabled,
			TTL:        dur("cache.ttl", raw.Cache.TTL, cache.DefaultTTL),
			RedisURL:   raw.Cache.RedisURL,
			MaxEntries: intOr(raw.Cache.MaxEntries, cache.DefaultMaxEntries),
		},
		AI: AIConfig{
			Enabled:      raw.AI.Enabled,
			BaseURL:      aiBaseURL,
			Model:        raw.AI.Model,
			APIKey:       raw.AI.APIKey,
			Timeout:      dur("ai.timeout", raw.AI.Timeout, defaultAITimeout),
			GenerateJobs: raw.AI.GenerateJobs,
			MaxJobs:      raw.AI.MaxJobs,
			MaxRetries:   maxRetries,
		},
		Notification: raw.Notification,
		Store:        raw.Store,
		Server: ServerConfig{
			Addr:            raw.Server.Addr,
			RateLimitPerMin: intOr(raw.Server.RateLimitPerMin, defaultRateLimitPerMin),
			CORSOrigins:     raw.Server.CORSOrigins,
			ShutdownTimeout: dur("server.shutdown_timeout", raw.Server.ShutdownTimeout, defaultShutdownTimeout),
		},
		Watch: WatchConfig{
			Interval: dur("watch.interval", raw.Watch.Interval, defaultWatchInterval),
			MinDelay: dur("watch.min_delay", raw.Watch.MinDelay, 0),
			Searches: searches,
		},
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultDBPath
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultListenAddr
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	return cfg, nil
}

// normalizeRequest lets config files write location modes in any casing.
func normalizeRequest(r search.Request) search.Request {
	if r.LocationMode == "" {
		return r
	}
	if mode, err := model.ParseLocationMode(string(r.LocationMode)); err == nil {
		r.LocationMode = mode
	}
	return r
}

func applyOverrides(cfg *Config, ov envOverrides) {
	if ov.OpenAIAPIKey != "" {
		cfg.AI.APIKey = ov.OpenAIAPIKey
	}
	if ov.RedisURL != "" {
		cfg.Cache.RedisURL = ov.RedisURL
	}
	if ov.SlackWebhookURL != "" {
		cfg.Notification.WebhookURL = ov.SlackWebhookURL
	}
	if ov.ListenAddr != "" {
		cfg.Server.Addr = ov.ListenAddr
	}
	if ov.DBPath != "" {
		cfg.Store.Path = ov.DBPath
	}
}

func validate(cfg *Config) error {
	s := cfg.Search
	if s.Workers < 1 || s.Workers > search.MaxWorkers {
		return fmt.Errorf("search.workers must be between 1 and %d, got %d", search.MaxWorkers, s.Workers)
	}
	if s.MaxQueries < 1 || s.MaxQueries > query.MaxQueriesLimit {
		return fmt.Errorf("search.max_queries must be between 1 and %d, got %d", query.MaxQueriesLimit, s.MaxQueries)
	}
	if s.FetchTimeout <= 0 || s.BatchTimeout <= 0 {
		return fmt.Errorf("search.fetch_timeout and search.batch_timeout must be positive")
	}
	if s.PolitenessMax < s.PolitenessMin {
		return fmt.Errorf("search.politeness_max (%v) must not be below politeness_min (%v)", s.PolitenessMax, s.PolitenessMin)
	}
	if s.SnippetLength < 1 {
		return fmt.Errorf("search.snippet_length must be positive, got %d", s.SnippetLength)
	}
	for _, p := range s.Providers {
		if !knownProviders[p] {
			return fmt.Errorf("search.providers: unknown provider %q", p)
		}
	}

	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache.enabled is true")
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
		if cfg.AI.MaxRetries < 0 {
			return fmt.Errorf("ai.max_retries must not be negative, got %d", cfg.AI.MaxRetries)
		}
	}

	if cfg.Server.RateLimitPerMin < 1 {
		return fmt.Errorf("server.rate_limit_per_min must be positive, got %d", cfg.Server.RateLimitPerMin)
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}
	seen := make(map[string]bool)
	for i, ws := range cfg.Watch.Searches {
		if ws.Name == "" {
			return fmt.Errorf("watch.searches[%d]: name is required", i)
		}
		if seen[ws.Name] {
			return fmt.Errorf("watch.searches: duplicate name %q", ws.Name)
		}
		seen[ws.Name] = true
		if err := ws.Validate(); err != nil {
			return fmt.Errorf("watch.searches[%q]: %w", ws.Name, err)
		}
	}

	return nil
}
