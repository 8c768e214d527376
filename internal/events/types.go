package events

import (
	"fmt"
	"strings"
)

const (
	// KindDocSave signals that the drafting process saved a work-item.
	// Payload is the document id.
	KindDocSave = "doc_save"
	// KindPopContext signals that the drafting process popped its context.
	// Payload is ignored. Reserved hook; the monitor currently ignores it.
	KindPopContext = "pop_context_triggered"
)

// Event is one update from the monitored drafting process. Kinds outside the
// recognized set are carried through so the consumer can warn about them;
// they must never crash the loop.
type Event struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload,omitempty"`
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Kind) == "" {
		return fmt.Errorf("kind is required")
	}
	if e.Kind == KindDocSave && strings.TrimSpace(e.Payload) == "" {
		return fmt.Errorf("doc_save requires a document id payload")
	}
	return nil
}

// Recognized reports whether the monitor knows how to dispatch this kind.
func Recognized(kind string) bool {
	return kind == KindDocSave || kind == KindPopContext
}
