package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"docquery-backend/internal/extract"
	"docquery-backend/internal/llm"
	"docquery-backend/internal/shared/metrics"
	"docquery-backend/internal/shared/telemetry"
)

// Service contains the ingestion and query pipelines.
type Service struct {
	Repo Repo
	LLM  llm.Client
	// CleanupEnabled inserts an LLM rewrite stage between extraction and
	// metadata extraction. Any gateway failure there aborts the ingestion.
	CleanupEnabled bool

	// extractFn defaults to extract.Text.
	extractFn func([]byte) (string, error)
}

func (s *Service) extractText(data []byte) (string, error) {
	if s.extractFn != nil {
		return s.extractFn(data)
	}
	return extract.Text(data)
}

// Ingest runs the upload pipeline: validate, extract, optionally clean,
// extract metadata, allocate an id and persist. Nothing is written until every
// upstream stage has succeeded.
func (s *Service) Ingest(ctx context.Context, userID, fileName, contentType string, data []byte) (Document, error) {
	metrics.IncIngestStarted()

	doc, err := s.ingest(ctx, userID, fileName, contentType, data)
	if err != nil {
		metrics.IncIngestFailed()
		return Document{}, err
	}

	metrics.IncIngestCompleted()
	telemetry.Info("document.ingested", map[string]any{
		"user_id":     userID,
		"document_id": doc.ID,
		"subject":     doc.Subject,
		"bytes":       len(data),
	})
	return doc, nil
}

func (s *Service) ingest(ctx context.Context, userID, fileName, contentType string, data []byte) (Document, error) {
	if !isPDF(fileName, contentType) {
		return Document{}, fmt.Errorf("%w: file must be a PDF", ErrInvalidInput)
	}

	text, err := s.extractText(data)
	if err != nil {
		return Document{}, err
	}

	content := text
	if s.CleanupEnabled {
		cleaned, err := s.LLM.Generate(ctx, llm.CleanupPrompt(text), llm.Options{})
		if err != nil {
			return Document{}, err
		}
		content = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))
	}

	raw, err := s.LLM.Generate(ctx, llm.MetadataPrompt(content), llm.Options{JSON: true})
	if err != nil {
		return Document{}, err
	}
	meta, err := parseMetadata(raw)
	if err != nil {
		return Document{}, err
	}

	id, err := s.Repo.NextID(ctx)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         id,
		UserID:     userID,
		Title:      boundTitle(meta.Title),
		Subject:    meta.Subject,
		Content:    content,
		Summary:    meta.Summary,
		UploadedAt: time.Now().UTC(),
		Queries:    []Query{},
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Ask runs the query pipeline: fetch, prompt, generate, post-process, append.
// If the append reports no document modified the whole call fails with
// ErrPersistence; the answer is not returned on a failed write.
func (s *Service) Ask(ctx context.Context, userID string, docID int64, question string) (Query, error) {
	metrics.IncQueryStarted()

	q, err := s.ask(ctx, userID, docID, question)
	if err != nil {
		metrics.IncQueryFailed()
		return Query{}, err
	}

	metrics.IncQueryCompleted()
	return q, nil
}

func (s *Service) ask(ctx context.Context, userID string, docID int64, question string) (Query, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Query{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Query{}, err
	}

	answer, err := s.LLM.Generate(ctx, llm.QuestionPrompt(doc.Content, question), llm.Options{})
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Question:  question,
		Answer:    stripThinking(answer),
		Timestamp: time.Now().UTC(),
	}
	if err := s.Repo.AppendQuery(ctx, userID, docID, q); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Query{}, fmt.Errorf("%w: query append modified no document", ErrPersistence)
		}
		return Query{}, err
	}
	return q, nil
}

// Get fetches a single document and touches its lastViewed timestamp.
func (s *Service) Get(ctx context.Context, userID string, docID int64) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}

	now := time.Now().UTC()
	if err := s.Repo.TouchLastViewed(ctx, userID, docID, now); err != nil {
		return Document{}, err
	}
	doc.LastViewed = &now
	return doc, nil
}

// List returns the user's documents, optionally filtered by subject.
// "All Subjects" and the empty string both mean no filter.
func (s *Service) List(ctx context.Context, userID, subject string) ([]Document, error) {
	if subject == "All Subjects" {
		subject = ""
	}
	return s.Repo.ListByUser(ctx, userID, subject)
}

// Delete removes a document and its query history.
func (s *Service) Delete(ctx context.Context, userID string, docID int64) error {
	return s.Repo.Delete(ctx, userID, docID)
}

func isPDF(fileName, contentType string) bool {
	if !strings.EqualFold(strings.TrimSpace(strings.Split(contentType, ";")[0]), "application/pdf") {
		return false
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}
