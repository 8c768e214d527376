package model

import (
	"fmt"
	"strings"
)

// FinishReason discriminates the two shapes a work-item can take: a plain
// completion or a function/tool call.
type FinishReason string

const (
	FinishNormal       FinishReason = "normal"
	FinishFunctionCall FinishReason = "function_call"
)

// ChatTurn is one turn of the drafting process's ongoing chat.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WorkItem is a single generation record produced by the monitored drafting
// process. It is owned by that process; the monitor only reads it and later
// requests a merge-update with evaluation results.
type WorkItem struct {
	DocumentID       string       `json:"document_id"`
	SystemMessage    string       `json:"system_message"`
	OngoingChat      []ChatTurn   `json:"ongoing_chat"`
	PromptCompletion string       `json:"prompt_completion"`
	FinishReason     FinishReason `json:"finish_reason"`

	// Present only when FinishReason is function_call.
	FunctionName      string `json:"function_name,omitempty"`
	FunctionArguments string `json:"function_arguments,omitempty"`

	// Present only when FinishReason is normal.
	ResponseMessage string `json:"response_message,omitempty"`

	// PromptException marks completions produced while recovering from a
	// prompt error. Absent means true.
	PromptException *bool `json:"prompt_exception,omitempty"`

	// Descriptive only.
	Task            string `json:"task,omitempty"`
	TaskDescription string `json:"task_description,omitempty"`
}

// IsPromptException resolves the default-true semantics of the stored field.
func (w *WorkItem) IsPromptException() bool {
	if w.PromptException == nil {
		return true
	}
	return *w.PromptException
}

// Validate enforces the tagged-variant shape at the document store boundary:
// a function_call item must not carry a response message, and a normal item
// must not carry function-call fields. A function_call item with no function
// name is tolerated; the drafting process owns these records and sometimes
// omits the name, so prompt assembly substitutes a placeholder instead.
func (w *WorkItem) Validate() error {
	if strings.TrimSpace(w.DocumentID) == "" {
		return fmt.Errorf("document_id is required")
	}
	switch w.FinishReason {
	case FinishFunctionCall:
		if w.ResponseMessage != "" {
			return fmt.Errorf("document %s: function_call item carries a response message", w.DocumentID)
		}
	case FinishNormal:
		if w.FunctionName != "" || w.FunctionArguments != "" {
			return fmt.Errorf("document %s: normal item carries function-call fields", w.DocumentID)
		}
	default:
		return fmt.Errorf("document %s: unknown finish reason %q", w.DocumentID, w.FinishReason)
	}
	return nil
}

// ChatTranscript renders the ongoing chat as plain text for prompt assembly.
func (w *WorkItem) ChatTranscript() string {
	var b strings.Builder
	for _, turn := range w.OngoingChat {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// EvaluationReport holds the quality criteria a secondary model scores a
// work-item on. Every field is optional: a nil field was not evaluated this
// cycle and must be left untouched in the store.
type EvaluationReport struct {
	QualityScore      *float64 `json:"quality_score,omitempty"`
	Relevance         *string  `json:"relevance,omitempty"`
	Completeness      *string  `json:"completeness,omitempty"`
	Accuracy          *string  `json:"accuracy,omitempty"`
	Clarity           *string  `json:"clarity,omitempty"`
	InstructionsMatch *string  `json:"instructions_match,omitempty"`
	Issues            *string  `json:"issues,omitempty"`
	Suggestions       *string  `json:"suggestions,omitempty"`
}

// Fields returns the non-absent report fields as a map suitable for a
// merge-update. Fields the report leaves absent never appear in the map, so
// previously recorded values survive the merge.
func (r *EvaluationReport) Fields() map[string]any {
	fields := make(map[string]any)
	if r.QualityScore != nil {
		fields["quality_score"] = *r.QualityScore
	}
	if r.Relevance != nil {
		fields["relevance"] = *r.Relevance
	}
	if r.Completeness != nil {
		fields["completeness"] = *r.Completeness
	}
	if r.Accuracy != nil {
		fields["accuracy"] = *r.Accuracy
	}
	if r.Clarity != nil {
		fields["clarity"] = *r.Clarity
	}
	if r.InstructionsMatch != nil {
		fields["instructions_match"] = *r.InstructionsMatch
	}
	if r.Issues != nil {
		fields["issues"] = *r.Issues
	}
	if r.Suggestions != nil {
		fields["suggestions"] = *r.Suggestions
	}
	return fields
}

// Empty reports whether the parser found none of the known criteria.
func (r *EvaluationReport) Empty() bool {
	return len(r.Fields()) == 0
}

// OutcomeKind classifies how an evaluation cycle ended.
type OutcomeKind string

const (
	// OutcomeCompleted: a report was parsed and merged into the store.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeDocumentMissing: the store has no work-item for the id.
	OutcomeDocumentMissing OutcomeKind = "document_missing"
	// OutcomeModelUnavailable: every model attempt failed; no response text.
	OutcomeModelUnavailable OutcomeKind = "model_unavailable"
	// OutcomeParseFailed: the model responded but the text was not
	// interpretable. The raw text is still audited.
	OutcomeParseFailed OutcomeKind = "parse_failed"
	// OutcomePersistFailed: report parsed and audited, but the store
	// rejected the merge-update.
	OutcomePersistFailed OutcomeKind = "persist_failed"
)

// Outcome is the result of one evaluation cycle.
type Outcome struct {
	Kind       OutcomeKind       `json:"kind"`
	DocumentID string            `json:"document_id"`
	Report     *EvaluationReport `json:"report,omitempty"`   // set when Kind is completed or persist_failed
	RawText    string            `json:"raw_text,omitempty"` // model response text, when one was obtained
	Model      string            `json:"model,omitempty"`    // model that produced RawText
}
