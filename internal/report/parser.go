// Package report parses free-text model output into a structured evaluation
// report.
//
// Model output is rarely clean JSON: it arrives wrapped in markdown fences,
// surrounded by prose, or with trailing commas and unquoted keys. The parser
// strips the wrapping, repairs the payload with jsonrepair when plain
// unmarshaling fails, and treats null or empty-string fields as absent. The
// monitor has no clear-field operation, so a sentinel must never turn into
// one.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/timvw/draft-patrol/internal/model"
)

// Parse extracts an EvaluationReport from model output text.
func Parse(text string) (*model.EvaluationReport, error) {
	payload := extractJSONObject(stripMarkdownFences(text))
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return nil, fmt.Errorf("unparseable evaluation payload: %w (repair also failed: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("unparseable evaluation payload after repair: %w", err)
		}
	}

	rep := &model.EvaluationReport{
		QualityScore:      floatField(raw, "quality_score"),
		Relevance:         stringField(raw, "relevance"),
		Completeness:      stringField(raw, "completeness"),
		Accuracy:          stringField(raw, "accuracy"),
		Clarity:           stringField(raw, "clarity"),
		InstructionsMatch: stringField(raw, "instructions_match"),
		Issues:            stringField(raw, "issues"),
		Suggestions:       stringField(raw, "suggestions"),
	}
	if rep.Empty() {
		return nil, fmt.Errorf("model output carries no recognized evaluation fields")
	}
	return rep, nil
}

// stripMarkdownFences removes a surrounding ```json ... ``` (or plain ```)
// fence, if present.
func stripMarkdownFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// extractJSONObject returns the outermost {...} span, tolerating prose
// before and after the payload. Empty when no object is present.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// stringField reads a string criterion. Null, empty, and whitespace-only
// values count as absent.
func stringField(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return nil
	}
	return &s
}

// floatField reads a numeric criterion, accepting both JSON numbers and
// numeric strings.
func floatField(raw map[string]any, key string) *float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}
