package monitor

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/timvw/draft-patrol/internal/model"
)

// EvalCache caches completed evaluation outcomes keyed by prompt-content
// hash. The drafting process sometimes re-saves a document without changing
// anything the evaluation looks at; reusing the previous outcome saves an
// LLM call.
//
// Cache entries have a TTL. After expiry the document is re-evaluated even
// if its content is identical.
type EvalCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // keyed by document id
	ttl     time.Duration
}

type cacheEntry struct {
	contentHash string
	outcome     model.Outcome
	cachedAt    time.Time
	hitCount    int
}

// NewEvalCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewEvalCache(ttl time.Duration) *EvalCache {
	return &EvalCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Lookup returns the cached outcome when the document's evaluation content
// is unchanged and the entry is fresh.
func (c *EvalCache) Lookup(documentID, content string) (*model.Outcome, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	hash := hashContent(content)

	c.mu.RLock()
	entry, ok := c.entries[documentID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if entry.contentHash != hash {
		return nil, false
	}
	if time.Since(entry.cachedAt) > c.ttl {
		return nil, false
	}

	c.mu.Lock()
	entry.hitCount++
	c.mu.Unlock()

	o := entry.outcome
	return &o, true
}

// Store saves a completed outcome for the given document and content.
// Only completed evaluations are worth reusing.
func (c *EvalCache) Store(documentID, content string, outcome model.Outcome) {
	if c.ttl <= 0 || outcome.Kind != model.OutcomeCompleted {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[documentID] = &cacheEntry{
		contentHash: hashContent(content),
		outcome:     outcome,
		cachedAt:    time.Now(),
	}
}

// Invalidate removes the entry for a document, forcing re-evaluation on the
// next save regardless of content.
func (c *EvalCache) Invalidate(documentID string) {
	c.mu.Lock()
	delete(c.entries, documentID)
	c.mu.Unlock()
}

// hashContent returns a hex-encoded SHA256 hash of the content.
func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}
