// Package config loads draft-patrol configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (DRAFT_PATROL_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .draft-patrol.yaml in current directory
//  2. ~/.config/draft-patrol/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all draft-patrol configuration.
type Config struct {
	// LLM settings
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	ModelException string `yaml:"model_exception"` // Used when the evaluated work-item was a prompt exception
	ModelFallback  string `yaml:"model_fallback"`  // Larger-context model for size-limit retries
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	MaxTokens      int64  `yaml:"max_tokens"`

	// Document store
	PostgresDSN string `yaml:"postgres_dsn"` // Empty selects the in-memory store
	Collection  string `yaml:"collection"`

	// Audit log
	EvaluationsDir string `yaml:"evaluations_dir"`

	// Event intake
	EventSocket string `yaml:"event_socket"` // Defaults to a per-user runtime path

	// Loop and cache
	PollBackoff string `yaml:"poll_backoff"` // Go duration string, e.g. "100ms"
	CacheTTL    string `yaml:"cache_ttl"`    // Go duration string, e.g. "5m"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// Logging
	LogLevel string `yaml:"log_level"`

	// Parsed durations (not from YAML, set after loading)
	PollBackoffDuration time.Duration `yaml:"-"`
	CacheTTLDuration    time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "gpt-4o",
		ModelException: "gpt-4o",
		ModelFallback:  "gpt-4o-mini",
		MaxTokens:      4096,
		Collection:     "process_executions",
		EvaluationsDir: "evaluations",
		PollBackoff:    "100ms",
		CacheTTL:       "0",
		LogLevel:       "info",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.PollBackoffDuration, err = parseDurationOrDisable(cfg.PollBackoff, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid poll backoff %q: %w", cfg.PollBackoff, err)
	}
	cfg.CacheTTLDuration, err = parseDurationOrDisable(cfg.CacheTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL %q: %w", cfg.CacheTTL, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".draft-patrol.yaml"); err == nil {
		return ".draft-patrol.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "draft-patrol", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.ModelException != "" {
		cfg.ModelException = file.ModelException
	}
	if file.ModelFallback != "" {
		cfg.ModelFallback = file.ModelFallback
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.PostgresDSN != "" {
		cfg.PostgresDSN = file.PostgresDSN
	}
	if file.Collection != "" {
		cfg.Collection = file.Collection
	}
	if file.EvaluationsDir != "" {
		cfg.EvaluationsDir = file.EvaluationsDir
	}
	if file.EventSocket != "" {
		cfg.EventSocket = file.EventSocket
	}
	if file.PollBackoff != "" {
		cfg.PollBackoff = file.PollBackoff
	}
	if file.CacheTTL != "" {
		cfg.CacheTTL = file.CacheTTL
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("DRAFT_PATROL_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DRAFT_PATROL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DRAFT_PATROL_MODEL_EXCEPTION"); v != "" {
		cfg.ModelException = v
	}
	if v := os.Getenv("DRAFT_PATROL_MODEL_FALLBACK"); v != "" {
		cfg.ModelFallback = v
	}
	if v := os.Getenv("DRAFT_PATROL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DRAFT_PATROL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DRAFT_PATROL_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("DRAFT_PATROL_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("DRAFT_PATROL_EVALUATIONS_DIR"); v != "" {
		cfg.EvaluationsDir = v
	}
	if v := os.Getenv("DRAFT_PATROL_EVENT_SOCKET"); v != "" {
		cfg.EventSocket = v
	}
	if v := os.Getenv("DRAFT_PATROL_POLL_BACKOFF"); v != "" {
		cfg.PollBackoff = v
	}
	if v := os.Getenv("DRAFT_PATROL_CACHE_TTL"); v != "" {
		cfg.CacheTTL = v
	}
	if v := os.Getenv("DRAFT_PATROL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks
	if cfg.APIKey == "" {
		if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}

	// Azure base URL fallback
	if cfg.BaseURL == "" {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			switch cfg.Provider {
			case "anthropic":
				cfg.BaseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", rn)
			case "openai":
				cfg.BaseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
			}
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}
