package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/search"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
search:
  workers: 4
  fetch_timeout: 10s
  batch_timeout: 1m
  max_queries: 8
  providers: [duckduckgo, google]
  spam_phrases: ["crypto airdrop"]
rate_limit:
  min_delay: 3s
  overrides:
    google: 10s
cache:
  enabled: true
  ttl: 30m
notification:
  type: slack
  webhook_url: https://hooks.slack.com/services/T/B/X
store:
  path: /tmp/radar.db
server:
  addr: ":9090"
  cors_origins: ["https://example.com"]
watch:
  interval: 2h
  searches:
    - name: remote-analyst
      role_title: Data Analyst
      location_mode: remote
      recency: week
      min_score: 20
    - name: nyc
      role_title: Data Analyst
      location_mode: Onsite
      location_text: New York
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Workers != 4 || cfg.Search.MaxQueries != 8 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Search.FetchTimeout != 10*time.Second || cfg.Search.BatchTimeout != time.Minute {
		t.Errorf("timeouts = %v, %v", cfg.Search.FetchTimeout, cfg.Search.BatchTimeout)
	}
	if len(cfg.Search.Providers) != 2 || cfg.Search.Providers[1] != ProviderGoogle {
		t.Errorf("Providers = %v", cfg.Search.Providers)
	}
	if got := cfg.RateLimit.MinDelayFor("google"); got != 10*time.Second {
		t.Errorf("MinDelayFor(google) = %v, want 10s", got)
	}
	if got := cfg.RateLimit.MinDelayFor("duckduckgo"); got != 3*time.Second {
		t.Errorf("MinDelayFor(duckduckgo) = %v, want 3s", got)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Path != "/tmp/radar.db" || cfg.Server.Addr != ":9090" {
		t.Errorf("Store = %+v, Server = %+v", cfg.Store, cfg.Server)
	}
	if cfg.Watch.Interval != 2*time.Hour || len(cfg.Watch.Searches) != 2 {
		t.Fatalf("Watch = %+v", cfg.Watch)
	}

	ws, ok := cfg.Watch.Find("remote-analyst")
	if !ok {
		t.Fatal("Find(remote-analyst) = false")
	}
	want := search.Request{RoleTitle: "Data Analyst", LocationMode: model.Remote, Recency: model.RecencyWeek}
	if ws.Request != want || ws.MinScore != 20 {
		t.Errorf("saved search = %+v, want %+v with min_score 20", ws, want)
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.Search.Workers != search.DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Search.Workers, search.DefaultWorkers)
	}
	if len(cfg.Search.Providers) != 1 || cfg.Search.Providers[0] != ProviderDuckDuckGo {
		t.Errorf("Providers = %v, want [duckduckgo]", cfg.Search.Providers)
	}
	if cfg.Notification.Type != "log" || cfg.Store.Path != defaultDBPath {
		t.Errorf("Notification = %+v, Store = %+v", cfg.Notification, cfg.Store)
	}
	if cfg.AI.MaxRetries != defaultAIRetries {
		t.Errorf("AI.MaxRetries = %d, want %d", cfg.AI.MaxRetries, defaultAIRetries)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "search: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SLACK_HOOK", "https://hooks.slack.com/services/abc")
	cfg, err := Load(writeConfig(t, `
notification:
  type: slack
  webhook_url: ${TEST_SLACK_HOOK}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.WebhookURL != "https://hooks.slack.com/services/abc" {
		t.Errorf("WebhookURL = %q", cfg.Notification.WebhookURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JOBRADAR_OPENAI_API_KEY", "sk-env")
	t.Setenv("JOBRADAR_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("JOBRADAR_LISTEN_ADDR", ":7000")
	t.Setenv("JOBRADAR_DB_PATH", "/data/env.db")

	cfg, err := Load(writeConfig(t, `
ai:
  enabled: true
  model: gpt-4o-mini
  api_key: sk-file
store:
  path: file.db
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want env override", cfg.AI.APIKey)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Server.Addr != ":7000" || cfg.Store.Path != "/data/env.db" {
		t.Errorf("Addr = %q, Path = %q", cfg.Server.Addr, cfg.Store.Path)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"workers too high", "search:\n  workers: 11\n", "search.workers"},
		{"max queries too high", "search:\n  max_queries: 51\n", "search.max_queries"},
		{"unknown provider", "search:\n  providers: [bing]\n", "unknown provider"},
		{"bad duration", "search:\n  fetch_timeout: soon\n", "search.fetch_timeout"},
		{"politeness inverted", "search:\n  politeness_min: 2s\n  politeness_max: 1s\n", "politeness_max"},
		{"slack without webhook", "notification:\n  type: slack\n", "webhook_url is required"},
		{"slack bad webhook", "notification:\n  type: slack\n  webhook_url: https://example.com/hook\n", "hooks.slack.com"},
		{"unknown notifier", "notification:\n  type: email\n", "notification.type"},
		{"ai without key", "ai:\n  enabled: true\n  model: gpt-4o-mini\n", "ai.api_key"},
		{"zero watch interval", "watch:\n  interval: 0s\n", "watch.interval"},
		{"unnamed search", "watch:\n  searches:\n    - role_title: Analyst\n      location_mode: remote\n", "name is required"},
		{"duplicate search", "watch:\n  searches:\n    - {name: a, role_title: Analyst, location_mode: remote}\n    - {name: a, role_title: Analyst, location_mode: remote}\n", "duplicate name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Load: expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_SavedSearchNeedsLocation(t *testing.T) {
	_, err := Load(writeConfig(t, `
watch:
  searches:
    - name: hybrid
      role_title: Data Analyst
      location_mode: hybrid
`))
	if !errors.Is(err, model.ErrLocationRequired) {
		t.Errorf("err = %v, want ErrLocationRequired", err)
	}
}
