package documents

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	titleWordLimit = 5
	fallbackTitle  = "Untitled Document"
	defaultSubject = "General"
)

type metadata struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Summary string `json:"summary"`
}

// parseMetadata parses the model's JSON metadata output. Code fences are
// stripped first since models wrap JSON in them despite instructions.
// title and summary are mandatory keys; subject falls back to "General".
func parseMetadata(raw string) (metadata, error) {
	cleaned := stripCodeFences(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &keys); err != nil {
		return metadata{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if _, ok := keys["title"]; !ok {
		return metadata{}, fmt.Errorf("%w: missing title", ErrMetadata)
	}
	if _, ok := keys["summary"]; !ok {
		return metadata{}, fmt.Errorf("%w: missing summary", ErrMetadata)
	}

	var meta metadata
	if err := json.Unmarshal([]byte(cleaned), &meta); err != nil {
		return metadata{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Summary = strings.TrimSpace(meta.Summary)
	meta.Subject = strings.TrimSpace(meta.Subject)
	if meta.Subject == "" {
		meta.Subject = defaultSubject
	}
	return meta, nil
}

func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// boundTitle truncates a title to the word limit; an empty result gets the
// fallback title.
func boundTitle(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return fallbackTitle
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	return strings.Join(words, " ")
}

var thinkingPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinking removes delimited reasoning segments from a model answer,
// non-greedily across the whole string.
func stripThinking(answer string) string {
	return strings.TrimSpace(thinkingPattern.ReplaceAllString(answer, ""))
}
