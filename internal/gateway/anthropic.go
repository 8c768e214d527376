package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/timvw/draft-patrol/internal/token"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AnthropicGateway asks models via the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicGateway struct {
	client    anthropic.Client
	maxTokens int64
}

// AnthropicConfig holds configuration for the Anthropic gateway.
type AnthropicConfig struct {
	// BaseURL is the API endpoint. Empty uses the SDK default.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// MaxTokens is the maximum number of output tokens per ask.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// NewAnthropicGateway creates a new Anthropic gateway.
func NewAnthropicGateway(cfg AnthropicConfig) *AnthropicGateway {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicGateway{
		client:    anthropic.NewClient(opts...),
		maxTokens: maxTokens,
	}
}

// Provider returns "anthropic".
func (g *AnthropicGateway) Provider() string {
	return "anthropic"
}

var gwTracer = otel.Tracer("draft-patrol/gateway")

// Ask sends the prompt to the named model and returns the response text.
func (g *AnthropicGateway) Ask(ctx context.Context, prompt, model string, counter *token.Counter) (*Reply, error) {
	// GenAI generation span per OTel semantic conventions: "{operation} {model}".
	ctx, span := gwTracer.Start(ctx, "chat "+model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "anthropic"),
			attribute.String("gen_ai.request.model", model),
			attribute.Int64("gen_ai.request.max_tokens", g.maxTokens),
		),
	)
	defer span.End()

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		if anthropicSizeLimit(err) {
			span.SetAttributes(attribute.String("error.type", "size_limit"))
			return nil, fmt.Errorf("anthropic model %s: %w", model, ErrSizeLimit)
		}
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	if len(resp.Content) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("anthropic API returned empty response")
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", model),
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
	)
	if string(resp.StopReason) != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.StopReason)}))
	}

	counter.Record(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return &Reply{
		Text:             resp.Content[0].Text,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}, nil
}

// anthropicSizeLimit classifies a Messages API error as a context-window
// failure. Anthropic reports these as 400 invalid_request_error with a
// "prompt is too long" message.
func anthropicSizeLimit(err error) bool {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Error())
	return strings.Contains(msg, "prompt is too long") ||
		strings.Contains(msg, "context length") ||
		strings.Contains(msg, "maximum number of tokens")
}
