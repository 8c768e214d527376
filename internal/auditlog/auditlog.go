// Package auditlog appends evaluation records to category-routed text files.
//
// Two streams exist: one for function-call evaluations, one for general
// prompt evaluations. Appends to the same stream are serialized, and every
// append is a scoped open-write-close; the file is never held open across an
// evaluation's model calls.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Stream selects the audit target for an entry.
type Stream string

const (
	// StreamFunctionCalls records evaluations of function-call completions.
	StreamFunctionCalls Stream = "function_calls"
	// StreamGeneral records evaluations of plain prompt completions.
	StreamGeneral Stream = "general"
)

const (
	functionCallsFile = "function_calls_log.txt"
	generalFile       = "prompt_completions_log.txt"
)

// Entry is one immutable audit record. Append order is the timestamp.
type Entry struct {
	DocumentID       string
	PromptCompletion string
	EvaluationText   string
}

// Log is the append-only audit log. Write-only from the monitor's
// perspective; no read API.
type Log struct {
	dir string

	muFunction sync.Mutex
	muGeneral  sync.Mutex
}

// New creates the evaluations directory if needed and returns the log.
func New(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evaluations dir: %w", err)
	}
	return &Log{dir: dir}, nil
}

// Dir returns the evaluations directory.
func (l *Log) Dir() string {
	return l.dir
}

// Append writes one human-readable block to the stream's file.
func (l *Log) Append(stream Stream, entry Entry) error {
	var mu *sync.Mutex
	var name string
	switch stream {
	case StreamFunctionCalls:
		mu, name = &l.muFunction, functionCallsFile
	case StreamGeneral:
		mu, name = &l.muGeneral, generalFile
	default:
		return fmt.Errorf("unknown audit stream %q", stream)
	}

	block := fmt.Sprintf("Document ID: %s\nPrompt Completion: %s\nEvaluation: %s\n\n",
		entry.DocumentID, entry.PromptCompletion, entry.EvaluationText)

	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append to audit log %s: %w", name, err)
	}
	return nil
}

// StreamFor routes a finish reason to its audit stream.
func StreamFor(functionCall bool) Stream {
	if functionCall {
		return StreamFunctionCalls
	}
	return StreamGeneral
}
