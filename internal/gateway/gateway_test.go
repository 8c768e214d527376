package gateway

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSizeLimit(t *testing.T) {
	wrapped := fmt.Errorf("anthropic model claude-sonnet-4-5: %w", ErrSizeLimit)
	if !IsSizeLimit(wrapped) {
		t.Error("wrapped ErrSizeLimit should be detected")
	}
	if IsSizeLimit(errors.New("rate limited")) {
		t.Error("unrelated error should not classify as size limit")
	}
	if IsSizeLimit(nil) {
		t.Error("nil should not classify as size limit")
	}
}

func TestSizeLimitClassifiers_IgnoreUnrelatedErrors(t *testing.T) {
	plain := errors.New("connection refused")
	if anthropicSizeLimit(plain) {
		t.Error("anthropic classifier matched a non-API error")
	}
	if openaiSizeLimit(plain) {
		t.Error("openai classifier matched a non-API error")
	}
}
