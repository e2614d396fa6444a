package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"docquery-backend/internal/llm"
)

// scriptedLLM returns canned responses in order and records the prompts it saw.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", llm.ErrMalformedResponse
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func newTestService(repo Repo, client llm.Client) *Service {
	return &Service{
		Repo:      repo,
		LLM:       client,
		extractFn: func([]byte) (string, error) { return "extracted text", nil },
	}
}

func TestIngestHappyPath(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{responses: []string{
		`{"title":"Linear Algebra Notes","subject":"Math","summary":"Vector spaces."}`,
	}}
	svc := newTestService(repo, client)

	doc, err := svc.Ingest(context.Background(), "u1", "notes.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.ID != 1 {
		t.Fatalf("expected id 1, got %d", doc.ID)
	}
	if doc.Title != "Linear Algebra Notes" || doc.Subject != "Math" || doc.Summary != "Vector spaces." {
		t.Fatalf("unexpected metadata: %+v", doc)
	}
	if doc.Content != "extracted text" {
		t.Fatalf("expected extracted content, got %q", doc.Content)
	}
	if doc.UploadedAt.IsZero() || doc.LastViewed != nil {
		t.Fatalf("unexpected timestamps: %+v", doc)
	}

	stored, err := repo.ListByUser(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != doc.ID {
		t.Fatalf("expected one stored document, got %+v", stored)
	}
}

func TestIngestRejectsNonPDF(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &scriptedLLM{})

	cases := []struct{ name, contentType string }{
		{"notes.txt", "text/plain"},
		{"notes.pdf", "text/plain"},
		{"notes.txt", "application/pdf"},
	}
	for _, tc := range cases {
		_, err := svc.Ingest(context.Background(), "u1", tc.name, tc.contentType, []byte("x"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s/%s: expected ErrInvalidInput, got %v", tc.name, tc.contentType, err)
		}
	}

	docs, _ := repo.ListByUser(context.Background(), "u1", "")
	if len(docs) != 0 {
		t.Fatalf("expected no documents persisted, got %d", len(docs))
	}
}

func TestIngestTitleBoundsAndFences(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{responses: []string{
		"```json\n" + `{"title":"one two three four five six","summary":"Sum"}` + "\n```",
	}}
	svc := newTestService(repo, client)

	doc, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Title != "one two three four five" {
		t.Fatalf("expected five-word title, got %q", doc.Title)
	}
	if doc.Subject != "General" {
		t.Fatalf("expected default subject, got %q", doc.Subject)
	}
}

func TestIngestMetadataFailureWritesNothing(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{responses: []string{`{"subject":"S"}`}}
	svc := newTestService(repo, client)

	_, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF"))
	if !errors.Is(err, ErrMetadata) {
		t.Fatalf("expected ErrMetadata, got %v", err)
	}
	docs, _ := repo.ListByUser(context.Background(), "u1", "")
	if len(docs) != 0 {
		t.Fatalf("expected no documents persisted, got %d", len(docs))
	}
}

func TestIngestGatewayFailureWritesNothing(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{err: llm.ErrUnavailable}
	svc := newTestService(repo, client)

	_, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF"))
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	docs, _ := repo.ListByUser(context.Background(), "u1", "")
	if len(docs) != 0 {
		t.Fatalf("expected no documents persisted, got %d", len(docs))
	}
}

func TestIngestCleanupStage(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{responses: []string{
		"```\ncleaned text\n```",
		`{"title":"T","subject":"S","summary":"Sum"}`,
	}}
	svc := newTestService(repo, client)
	svc.CleanupEnabled = true

	doc, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if doc.Content != "cleaned text" {
		t.Fatalf("expected cleaned content, got %q", doc.Content)
	}
	if len(client.prompts) != 2 {
		t.Fatalf("expected two generations, got %d", len(client.prompts))
	}
	if !strings.Contains(client.prompts[1], "cleaned text") {
		t.Fatal("expected metadata prompt to use cleaned content")
	}
}

func TestIngestCleanupFailureAborts(t *testing.T) {
	repo := NewMemoryRepo()
	client := &scriptedLLM{err: llm.ErrTimeout}
	svc := newTestService(repo, client)
	svc.CleanupEnabled = true

	_, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF"))
	if !errors.Is(err, llm.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	docs, _ := repo.ListByUser(context.Background(), "u1", "")
	if len(docs) != 0 {
		t.Fatalf("expected no documents persisted, got %d", len(docs))
	}
}

func seedDocument(t *testing.T, repo *MemoryRepo, userID string) Document {
	t.Helper()
	svc := newTestService(repo, &scriptedLLM{responses: []string{
		`{"title":"T","subject":"S","summary":"Sum"}`,
	}})
	doc, err := svc.Ingest(context.Background(), userID, "a.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("seed Ingest: %v", err)
	}
	return doc
}

func TestAskAppendsHistoryInOrder(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")

	client := &scriptedLLM{responses: []string{"answer 1", "answer 2", "answer 3"}}
	svc := newTestService(repo, client)

	for i := 1; i <= 3; i++ {
		q, err := svc.Ask(context.Background(), "u1", doc.ID, fmt.Sprintf("question %d", i))
		if err != nil {
			t.Fatalf("Ask %d: %v", i, err)
		}
		if q.Answer != fmt.Sprintf("answer %d", i) {
			t.Fatalf("unexpected answer %q", q.Answer)
		}
	}

	got, err := repo.GetByID(context.Background(), "u1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Queries) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(got.Queries))
	}
	for i, q := range got.Queries {
		if q.Question != fmt.Sprintf("question %d", i+1) {
			t.Fatalf("queries out of order: %+v", got.Queries)
		}
	}
}

func TestAskStripsThinkingSegments(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")

	client := &scriptedLLM{responses: []string{"<think>chain of thought</think>Just the answer."}}
	svc := newTestService(repo, client)

	q, err := svc.Ask(context.Background(), "u1", doc.ID, "why")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if q.Answer != "Just the answer." {
		t.Fatalf("expected stripped answer, got %q", q.Answer)
	}
}

func TestAskGatewayFailureWritesNothing(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")

	client := &scriptedLLM{err: llm.ErrUnavailable}
	svc := newTestService(repo, client)

	if _, err := svc.Ask(context.Background(), "u1", doc.ID, "why"); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	got, _ := repo.GetByID(context.Background(), "u1", doc.ID)
	if len(got.Queries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(got.Queries))
	}
}

func TestAskValidation(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")
	svc := newTestService(repo, &scriptedLLM{responses: []string{"a"}})

	if _, err := svc.Ask(context.Background(), "u1", doc.ID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank question, got %v", err)
	}
	if _, err := svc.Ask(context.Background(), "u1", doc.ID+99, "why"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Ask(context.Background(), "u2", doc.ID, "why"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestGetTouchesLastViewed(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")
	svc := newTestService(repo, &scriptedLLM{})

	got, err := svc.Get(context.Background(), "u1", doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastViewed == nil {
		t.Fatal("expected lastViewed to be set")
	}

	stored, _ := repo.GetByID(context.Background(), "u1", doc.ID)
	if stored.LastViewed == nil || !stored.LastViewed.Equal(*got.LastViewed) {
		t.Fatalf("expected persisted lastViewed %v, got %v", got.LastViewed, stored.LastViewed)
	}
}

func TestListFiltersBySubject(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &scriptedLLM{responses: []string{
		`{"title":"A","subject":"Math","summary":"s"}`,
		`{"title":"B","subject":"History","summary":"s"}`,
	}})

	for i := 0; i < 2; i++ {
		if _, err := svc.Ingest(context.Background(), "u1", "a.pdf", "application/pdf", []byte("%PDF")); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	all, _ := svc.List(context.Background(), "u1", "")
	if len(all) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(all))
	}
	everything, _ := svc.List(context.Background(), "u1", "All Subjects")
	if len(everything) != 2 {
		t.Fatalf("expected All Subjects to match everything, got %d", len(everything))
	}
	math, _ := svc.List(context.Background(), "u1", "Math")
	if len(math) != 1 || math[0].Subject != "Math" {
		t.Fatalf("expected one Math document, got %+v", math)
	}
	none, _ := svc.List(context.Background(), "u1", "Physics")
	if len(none) != 0 {
		t.Fatalf("expected no Physics documents, got %d", len(none))
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	repo := NewMemoryRepo()
	doc := seedDocument(t, repo, "u1")
	svc := newTestService(repo, &scriptedLLM{})

	if err := svc.Delete(context.Background(), "u1", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestNextIDUniqueUnderConcurrency(t *testing.T) {
	repo := NewMemoryRepo()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.NextID(context.Background())
			if err != nil {
				t.Errorf("NextID: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique ids, got %d", n, len(seen))
	}
}
