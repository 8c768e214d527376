package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/draft-patrol/internal/config"
	"github.com/timvw/draft-patrol/internal/gateway"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
)

var rootCmd = &cobra.Command{
	Use:   "draft-patrol",
	Short: "Secondary-model quality monitor for automated document drafting",
	Long: `draft-patrol supervises an automated document-drafting process.

The drafting process emits an event each time it saves a generation record.
draft-patrol picks the record up from the document store, asks a secondary
LLM to review the completion, appends the verdict to an audit log, and
merges the structured evaluation back into the record.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: anthropic, openai (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "primary evaluation model (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens (default: 4096; increase for reasoning models)")
}

// applyFlags layers command-line flags over the loaded configuration.
// Flags beat env vars beat file values.
func applyFlags(cfg *config.Config) {
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
}

// getGateway returns the configured LLM gateway.
func getGateway(cfg *config.Config) (gateway.Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set DRAFT_PATROL_API_KEY, AZURE_OPENAI_API_KEY, ANTHROPIC_API_KEY, or OPENAI_API_KEY")
	}

	// Azure AI Foundry needs the "api-key" header alongside the SDK default.
	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	switch cfg.Provider {
	case "anthropic":
		return gateway.NewAnthropicGateway(gateway.AnthropicConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: extraHeaders,
		}), nil
	case "openai":
		return gateway.NewOpenAIGateway(gateway.OpenAIConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: extraHeaders,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", cfg.Provider)
	}
}
