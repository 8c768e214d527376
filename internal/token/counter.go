// Package token tracks LLM token usage per named counter, backed by
// tiktoken-go for pre-call prompt estimates with a heuristic fallback when
// the encoding is unavailable.
package token

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce  sync.Once
	encoding *tiktoken.Tiktoken
)

func initEncoding() {
	encOnce.Do(func() {
		// cl100k_base covers the GPT-4 family and is close enough for
		// Claude-side estimates.
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			encoding = enc
		}
	})
}

// Estimate returns a token count for text: exact via tiktoken when available,
// otherwise max(runes/4, word count).
func Estimate(text string) int {
	initEncoding()
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// Counter accumulates token usage under a name ("monitor", ...). Safe for
// concurrent use.
type Counter struct {
	name       string
	prompt     atomic.Int64
	completion atomic.Int64
	calls      atomic.Int64
}

func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

func (c *Counter) Name() string {
	return c.name
}

// Record adds one model call's usage.
func (c *Counter) Record(promptTokens, completionTokens int64) {
	if c == nil {
		return
	}
	c.prompt.Add(promptTokens)
	c.completion.Add(completionTokens)
	c.calls.Add(1)
}

// Usage returns the accumulated totals.
func (c *Counter) Usage() (promptTokens, completionTokens, calls int64) {
	if c == nil {
		return 0, 0, 0
	}
	return c.prompt.Load(), c.completion.Load(), c.calls.Load()
}
