package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/cleanup.txt
	cleanupTemplate string
	//go:embed prompts/metadata.txt
	metadataTemplate string
	//go:embed prompts/question.txt
	questionTemplate string
)

// CleanupPrompt renders the text-cleanup template.
func CleanupPrompt(rawText string) string {
	return strings.ReplaceAll(cleanupTemplate, "{{raw_text}}", rawText)
}

// MetadataPrompt renders the title/subject/summary extraction template.
func MetadataPrompt(text string) string {
	return strings.ReplaceAll(metadataTemplate, "{{text}}", text)
}

// QuestionPrompt renders the question-answering template.
func QuestionPrompt(content, question string) string {
	out := strings.ReplaceAll(questionTemplate, "{{content}}", content)
	return strings.ReplaceAll(out, "{{question}}", question)
}
