package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider != "openai" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "openai")
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens: got %d, want %d", cfg.MaxTokens, 4096)
	}
	if cfg.Collection != "process_executions" {
		t.Errorf("Collection: got %q, want %q", cfg.Collection, "process_executions")
	}
	if cfg.PollBackoff != "100ms" {
		t.Errorf("PollBackoff: got %q, want %q", cfg.PollBackoff, "100ms")
	}
	if cfg.CacheTTL != "0" {
		t.Errorf("CacheTTL: got %q, want %q", cfg.CacheTTL, "0")
	}
	if cfg.ModelFallback == "" {
		t.Error("ModelFallback must have a default")
	}
}

func TestIsAzureEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://myresource.openai.azure.com/openai/v1", true},
		{"https://myresource.services.ai.azure.com/anthropic/", true},
		{"https://myresource.azure.us/foo", true},
		{"https://api.anthropic.com/", false},
		{"https://api.openai.com/v1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsAzureEndpoint(tt.url)
			if got != tt.want {
				t.Errorf("IsAzureEndpoint(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseDurationOrDisable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMs  int64
		wantErr bool
	}{
		{"empty returns fallback", "", 5000, false},
		{"zero disables", "0", 0, false},
		{"off disables", "off", 0, false},
		{"disable disables", "disable", 0, false},
		{"valid duration", "30s", 30000, false},
		{"valid short duration", "500ms", 500, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationOrDisable(tt.input, 5*time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDurationOrDisable(%q): error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.Milliseconds() != tt.wantMs {
				t.Errorf("parseDurationOrDisable(%q) = %v, want %dms", tt.input, got, tt.wantMs)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DRAFT_PATROL_PROVIDER", "DRAFT_PATROL_MODEL", "DRAFT_PATROL_MODEL_EXCEPTION",
		"DRAFT_PATROL_MODEL_FALLBACK", "DRAFT_PATROL_BASE_URL", "DRAFT_PATROL_API_KEY",
		"DRAFT_PATROL_POSTGRES_DSN", "DRAFT_PATROL_COLLECTION", "DRAFT_PATROL_EVALUATIONS_DIR",
		"DRAFT_PATROL_EVENT_SOCKET", "DRAFT_PATROL_POLL_BACKOFF", "DRAFT_PATROL_CACHE_TTL",
		"DRAFT_PATROL_LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
		"AZURE_OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "AZURE_RESOURCE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".draft-patrol.yaml")
	content := `provider: anthropic
model: claude-sonnet-4-5
model_fallback: claude-opus-4-1
api_key: test-key-123
max_tokens: 8192
collection: drafting_runs
poll_backoff: "250ms"
cache_ttl: "10m"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Change to temp dir so Load() finds the config
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-sonnet-4-5" {
		t.Errorf("Model: got %q, want %q", cfg.Model, "claude-sonnet-4-5")
	}
	if cfg.ModelFallback != "claude-opus-4-1" {
		t.Errorf("ModelFallback: got %q, want %q", cfg.ModelFallback, "claude-opus-4-1")
	}
	if cfg.APIKey != "test-key-123" {
		t.Errorf("APIKey: got %q, want %q", cfg.APIKey, "test-key-123")
	}
	if cfg.MaxTokens != 8192 {
		t.Errorf("MaxTokens: got %d, want %d", cfg.MaxTokens, 8192)
	}
	if cfg.Collection != "drafting_runs" {
		t.Errorf("Collection: got %q, want %q", cfg.Collection, "drafting_runs")
	}
	if cfg.PollBackoffDuration != 250*time.Millisecond {
		t.Errorf("PollBackoffDuration: got %v, want 250ms", cfg.PollBackoffDuration)
	}
	if cfg.CacheTTLDuration != 10*time.Minute {
		t.Errorf("CacheTTLDuration: got %v, want 10m", cfg.CacheTTLDuration)
	}
	if cfg.ConfigFile != ".draft-patrol.yaml" {
		t.Errorf("ConfigFile: got %q, want %q", cfg.ConfigFile, ".draft-patrol.yaml")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `model: from-file
cache_ttl: "1m"
`
	if err := os.WriteFile(filepath.Join(dir, ".draft-patrol.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearEnv(t)
	t.Setenv("DRAFT_PATROL_MODEL", "from-env")
	t.Setenv("DRAFT_PATROL_CACHE_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "from-env" {
		t.Errorf("Model: got %q, want %q", cfg.Model, "from-env")
	}
	if cfg.CacheTTLDuration != 2*time.Minute {
		t.Errorf("CacheTTLDuration: got %v, want 2m", cfg.CacheTTLDuration)
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIKey != "sk-fallback" {
		t.Errorf("APIKey: got %q, want %q", cfg.APIKey, "sk-fallback")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	clearEnv(t)
	t.Setenv("DRAFT_PATROL_POLL_BACKOFF", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid poll backoff")
	}
}
