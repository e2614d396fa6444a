package documents

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.Mutex
	data    map[string][]Document // userId -> documents
	counter int64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Document)}
}

func (r *MemoryRepo) NextID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter, nil
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID, subject string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Document{}
	for _, doc := range r.data[userID] {
		if subject != "" && doc.Subject != subject {
			continue
		}
		out = append(out, copyDocument(doc))
	}
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string, docID int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == docID {
			return copyDocument(docs[i]), nil
		}
	}
	return Document{}, ErrNotFound
}

func (r *MemoryRepo) TouchLastViewed(ctx context.Context, userID string, docID int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == docID {
			docs[i].LastViewed = &at
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) AppendQuery(ctx context.Context, userID string, docID int64, q Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == docID {
			docs[i].Queries = append(docs[i].Queries, q)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string, docID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == docID {
			r.data[userID] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, userID)
	return nil
}

func copyDocument(doc Document) Document {
	out := doc
	out.Queries = append([]Query(nil), doc.Queries...)
	if doc.LastViewed != nil {
		at := *doc.LastViewed
		out.LastViewed = &at
	}
	return out
}
