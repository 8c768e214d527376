package model

import "testing"

func boolPtr(b bool) *bool      { return &b }
func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestWorkItem_Validate_Normal(t *testing.T) {
	w := WorkItem{
		DocumentID:       "doc-1",
		PromptCompletion: "completion",
		FinishReason:     FinishNormal,
		ResponseMessage:  "a response",
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("valid normal item rejected: %v", err)
	}
}

func TestWorkItem_Validate_FunctionCall(t *testing.T) {
	w := WorkItem{
		DocumentID:        "doc-2",
		FinishReason:      FinishFunctionCall,
		FunctionName:      "save_draft",
		FunctionArguments: `{"section":"2.1"}`,
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("valid function_call item rejected: %v", err)
	}
}

func TestWorkItem_Validate_ToleratesMissingFunctionName(t *testing.T) {
	// The drafting process owns these records and sometimes omits the
	// function name; the item is still evaluated.
	w := WorkItem{
		DocumentID:   "doc-fc",
		FinishReason: FinishFunctionCall,
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("function_call item without a function name rejected: %v", err)
	}
}

func TestWorkItem_Validate_RejectsMixedVariants(t *testing.T) {
	cases := []struct {
		name string
		item WorkItem
	}{
		{
			name: "function_call with response message",
			item: WorkItem{
				DocumentID:      "doc-3",
				FinishReason:    FinishFunctionCall,
				FunctionName:    "save_draft",
				ResponseMessage: "should not be here",
			},
		},
		{
			name: "normal with function fields",
			item: WorkItem{
				DocumentID:   "doc-4",
				FinishReason: FinishNormal,
				FunctionName: "save_draft",
			},
		},
		{
			name: "unknown finish reason",
			item: WorkItem{DocumentID: "doc-6", FinishReason: "stopped"},
		},
		{
			name: "missing document id",
			item: WorkItem{FinishReason: FinishNormal},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.item.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestWorkItem_IsPromptException_DefaultsTrue(t *testing.T) {
	w := WorkItem{DocumentID: "doc-7", FinishReason: FinishNormal}
	if !w.IsPromptException() {
		t.Error("absent prompt_exception should default to true")
	}

	w.PromptException = boolPtr(false)
	if w.IsPromptException() {
		t.Error("explicit false should win over the default")
	}
}

func TestWorkItem_ChatTranscript(t *testing.T) {
	w := WorkItem{
		OngoingChat: []ChatTurn{
			{Role: "user", Content: "draft section 2"},
			{Role: "assistant", Content: "done"},
		},
	}
	got := w.ChatTranscript()
	want := "user: draft section 2\nassistant: done\n"
	if got != want {
		t.Errorf("transcript: got %q, want %q", got, want)
	}
}

func TestEvaluationReport_Fields_OmitsAbsent(t *testing.T) {
	r := EvaluationReport{
		QualityScore: f64Ptr(0.8),
		Relevance:    strPtr("on topic"),
	}
	fields := r.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(fields), fields)
	}
	if fields["quality_score"] != 0.8 {
		t.Errorf("quality_score: got %v", fields["quality_score"])
	}
	if _, ok := fields["accuracy"]; ok {
		t.Error("absent field must not appear in the merge map")
	}
}

func TestEvaluationReport_Empty(t *testing.T) {
	var r EvaluationReport
	if !r.Empty() {
		t.Error("zero report should be empty")
	}
	r.Issues = strPtr("citation missing")
	if r.Empty() {
		t.Error("report with a field should not be empty")
	}
}
