package monitor

import (
	_ "embed"
	"strings"

	"github.com/timvw/draft-patrol/internal/model"
)

// Evaluation instructions are loaded at compile time; the work-item's
// content is appended as labeled sections at runtime.

//go:embed prompts/secondary_analysis.md
var secondaryAnalysisInstructions string

//go:embed prompts/function_call_analysis.md
var functionCallInstructions string

// buildPrompt selects the evaluation template by finish reason and fills in
// the work-item's content.
func buildPrompt(item *model.WorkItem) string {
	var b strings.Builder

	if item.FinishReason == model.FinishFunctionCall {
		// The drafting process sometimes records a call without name or
		// arguments; the reviewer still gets the completion to judge.
		name := item.FunctionName
		if name == "" {
			name = "Unknown function name"
		}
		args := item.FunctionArguments
		if args == "" {
			args = "Unknown arguments"
		}
		b.WriteString(functionCallInstructions)
		writeSection(&b, "System Message", item.SystemMessage)
		writeSection(&b, "Chat History", item.ChatTranscript())
		writeSection(&b, "Function Name", name)
		writeSection(&b, "Function Arguments", args)
		writeSection(&b, "Prompt Completion", item.PromptCompletion)
		return b.String()
	}

	b.WriteString(secondaryAnalysisInstructions)
	writeSection(&b, "System Message", item.SystemMessage)
	writeSection(&b, "Chat History", item.ChatTranscript())
	writeSection(&b, "Prompt Completion", item.PromptCompletion)
	writeSection(&b, "Response Message", item.ResponseMessage)
	return b.String()
}

func writeSection(b *strings.Builder, title, content string) {
	b.WriteString("\n## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteString("\n")
}
