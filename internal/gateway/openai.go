package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/timvw/draft-patrol/internal/token"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIGateway asks models via an OpenAI-compatible Chat Completions API.
// Works with OpenAI, Azure OpenAI, and any OpenAI-compatible endpoint.
type OpenAIGateway struct {
	client    openai.Client
	maxTokens int64
}

// OpenAIConfig holds configuration for the OpenAI gateway.
type OpenAIConfig struct {
	// BaseURL is the API endpoint. Empty uses the SDK default.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// MaxTokens is the maximum number of completion tokens per ask.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewOpenAIGateway creates a new OpenAI-compatible gateway.
func NewOpenAIGateway(cfg OpenAIConfig) *OpenAIGateway {
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

	return &OpenAIGateway{
		client:    openai.NewClient(opts...),
		maxTokens: maxTokens,
	}
}

// Provider returns "openai".
func (g *OpenAIGateway) Provider() string {
	return "openai"
}

// Ask sends the prompt to the named model and returns the response text.
func (g *OpenAIGateway) Ask(ctx context.Context, prompt, model string, counter *token.Counter) (*Reply, error) {
	ctx, span := gwTracer.Start(ctx, "chat "+model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "openai"),
			attribute.String("gen_ai.request.model", model),
			attribute.Int64("gen_ai.request.max_tokens", g.maxTokens),
		),
	)
	defer span.End()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		if openaiSizeLimit(err) {
			span.SetAttributes(attribute.String("error.type", "size_limit"))
			return nil, fmt.Errorf("openai model %s: %w", model, ErrSizeLimit)
		}
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("openai API returned empty response")
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		attribute.String("gen_ai.response.id", resp.ID),
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
	)
	if resp.Choices[0].FinishReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.Choices[0].FinishReason)}))
	}

	counter.Record(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return &Reply{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// openaiSizeLimit classifies a Chat Completions error as a context-window
// failure: the dedicated context_length_exceeded code, or a 400 whose message
// mentions the context length.
func openaiSizeLimit(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == "context_length_exceeded" {
		return true
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Error())
	return strings.Contains(msg, "context length") || strings.Contains(msg, "maximum context")
}
