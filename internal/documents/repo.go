package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents and their query history.
// All mutations are single-document atomic; NextID is the one cross-request
// coordination point and must never hand out a duplicate.
type Repo interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, doc Document) error
	ListByUser(ctx context.Context, userID, subject string) ([]Document, error)
	GetByID(ctx context.Context, userID string, docID int64) (Document, error)
	TouchLastViewed(ctx context.Context, userID string, docID int64, at time.Time) error
	AppendQuery(ctx context.Context, userID string, docID int64, q Query) error
	Delete(ctx context.Context, userID string, docID int64) error
	// DeleteAllForUser removes every document a user owns. Deleting nothing
	// is not an error.
	DeleteAllForUser(ctx context.Context, userID string) error
}
