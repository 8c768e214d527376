// Package gateway sends prompts to a named language model and returns text.
//
// The one error kind callers are allowed to branch on is ErrSizeLimit: the
// evaluator's fallback chain advances to the next model only when the prompt
// exceeded the model's context window. Every other failure is terminal for
// the attempt.
package gateway

import (
	"context"
	"errors"

	"github.com/timvw/draft-patrol/internal/token"
)

// ErrSizeLimit marks a model refusal caused by the prompt exceeding the
// model's context window. Test with errors.Is.
var ErrSizeLimit = errors.New("prompt exceeds model context window")

// Reply is one model response.
type Reply struct {
	Text             string
	PromptTokens     int64
	CompletionTokens int64
}

// Gateway asks a named model for a completion. Implementations record token
// usage on the supplied counter (nil-safe).
type Gateway interface {
	Ask(ctx context.Context, prompt, model string, counter *token.Counter) (*Reply, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string
}

// IsSizeLimit reports whether err is a context-window failure.
func IsSizeLimit(err error) bool {
	return errors.Is(err, ErrSizeLimit)
}
