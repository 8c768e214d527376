package monitor

import (
	"strings"
	"testing"

	"github.com/timvw/draft-patrol/internal/model"
)

func TestBuildPrompt_NormalCompletion(t *testing.T) {
	item := &model.WorkItem{
		DocumentID:    "doc-1",
		SystemMessage: "You are a drafting assistant.",
		OngoingChat: []model.ChatTurn{
			{Role: "user", Content: "Draft section 2.1."},
		},
		PromptCompletion: "Here is the draft.",
		FinishReason:     model.FinishNormal,
		ResponseMessage:  "Section 2.1 covers the study design.",
	}

	prompt := buildPrompt(item)

	for _, want := range []string{
		"## System Message",
		"You are a drafting assistant.",
		"## Chat History",
		"user: Draft section 2.1.",
		"## Prompt Completion",
		"Here is the draft.",
		"## Response Message",
		"Section 2.1 covers the study design.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if strings.Contains(prompt, "## Function Name") {
		t.Error("normal prompt must not include function-call sections")
	}
	if !strings.HasPrefix(prompt, secondaryAnalysisInstructions) {
		t.Error("normal prompt must start with the secondary analysis instructions")
	}
}

func TestBuildPrompt_FunctionCall(t *testing.T) {
	item := &model.WorkItem{
		DocumentID:        "doc-2",
		SystemMessage:     "You are a drafting assistant.",
		PromptCompletion:  "Calling save_draft.",
		FinishReason:      model.FinishFunctionCall,
		FunctionName:      "save_draft",
		FunctionArguments: `{"section": "2.1"}`,
	}

	prompt := buildPrompt(item)

	for _, want := range []string{
		"## Function Name",
		"save_draft",
		"## Function Arguments",
		`{"section": "2.1"}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if strings.Contains(prompt, "## Response Message") {
		t.Error("function-call prompt must not include a response message section")
	}
	if !strings.HasPrefix(prompt, functionCallInstructions) {
		t.Error("function-call prompt must start with the function-call instructions")
	}
}

func TestBuildPrompt_FunctionCallPlaceholders(t *testing.T) {
	item := &model.WorkItem{
		DocumentID:       "doc-3",
		SystemMessage:    "You are a drafting assistant.",
		PromptCompletion: "Calling something.",
		FinishReason:     model.FinishFunctionCall,
	}

	prompt := buildPrompt(item)

	if !strings.Contains(prompt, "Unknown function name") {
		t.Error("missing function name must be replaced by a placeholder")
	}
	if !strings.Contains(prompt, "Unknown arguments") {
		t.Error("missing function arguments must be replaced by a placeholder")
	}
}

func TestBuildPrompt_TemplatesRequestJSON(t *testing.T) {
	// Both embedded templates must ask for the JSON report the parser expects.
	for name, tpl := range map[string]string{
		"secondary":     secondaryAnalysisInstructions,
		"function_call": functionCallInstructions,
	} {
		if !strings.Contains(tpl, "quality_score") {
			t.Errorf("%s template does not mention quality_score", name)
		}
		if !strings.Contains(tpl, "JSON") {
			t.Errorf("%s template does not ask for JSON output", name)
		}
	}
}
