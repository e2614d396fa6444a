package llm

import (
	"strings"
	"testing"
)

func TestCleanupPromptSubstitution(t *testing.T) {
	out := CleanupPrompt("raw body text")
	if !strings.Contains(out, "raw body text") {
		t.Fatalf("expected raw text in prompt, got: %s", out)
	}
	if strings.Contains(out, "{{raw_text}}") {
		t.Fatal("placeholder left unreplaced")
	}
}

func TestMetadataPromptSubstitution(t *testing.T) {
	out := MetadataPrompt("document body")
	if !strings.Contains(out, "document body") {
		t.Fatalf("expected text in prompt, got: %s", out)
	}
	for _, key := range []string{`"title"`, `"subject"`, `"summary"`} {
		if !strings.Contains(out, key) {
			t.Fatalf("expected %s in metadata prompt", key)
		}
	}
}

func TestQuestionPromptSubstitution(t *testing.T) {
	out := QuestionPrompt("the content", "the question?")
	if !strings.Contains(out, "the content") || !strings.Contains(out, "the question?") {
		t.Fatalf("expected content and question in prompt, got: %s", out)
	}
	if strings.Contains(out, "{{") {
		t.Fatal("placeholder left unreplaced")
	}
}
