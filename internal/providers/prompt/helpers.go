package prompt

import (
	"encoding/json"
	"errors"
	"strings"

	"thumbstudio/internal/thumbnail"
)

// ErrEmptyConcept is returned when the model response carried no parseable JSON.
var ErrEmptyConcept = errors.New("prompt: empty concept payload")

func parseConcept(raw string) (*thumbnail.Concept, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, ErrEmptyConcept
	}
	var concept thumbnail.Concept
	if err := json.Unmarshal([]byte(cleaned), &concept); err != nil {
		return nil, err
	}
	if strings.TrimSpace(concept.FinalPrompt) == "" {
		return nil, errors.New("prompt: concept missing final_prompt")
	}
	return &concept, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
