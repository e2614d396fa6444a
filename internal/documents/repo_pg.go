package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Documents and queries live in
// normalized tables; the global document id comes from a single counter row.
type PGRepo struct {
	DB *sql.DB
}

// NextID atomically increments and reads the shared document counter.
func (r *PGRepo) NextID(ctx context.Context) (int64, error) {
	const query = `
UPDATE document_counter
SET seq = seq + 1
WHERE id = 1
RETURNING seq`

	var id int64
	if err := r.DB.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, title, subject, content, summary, uploaded_at, last_viewed)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)`

	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.Subject,
		doc.Content,
		doc.Summary,
		doc.UploadedAt,
	)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID, subject string) ([]Document, error) {
	query := `
SELECT id, user_id, title, subject, content, summary, uploaded_at, last_viewed
FROM documents
WHERE user_id = $1`
	args := []any{userID}
	if subject != "" {
		query += ` AND subject = $2`
		args = append(args, subject)
	}
	query += ` ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	index := map[int64]int{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		index[doc.ID] = len(docs)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return docs, nil
	}

	historyQuery := `
SELECT q.document_id, q.question, q.answer, q.created_at
FROM queries q
JOIN documents d ON d.id = q.document_id
WHERE d.user_id = $1`
	historyArgs := []any{userID}
	if subject != "" {
		historyQuery += ` AND d.subject = $2`
		historyArgs = append(historyArgs, subject)
	}
	historyQuery += ` ORDER BY q.document_id, q.id`

	historyRows, err := r.DB.QueryContext(ctx, historyQuery, historyArgs...)
	if err != nil {
		return nil, err
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var docID int64
		var q Query
		if err := historyRows.Scan(&docID, &q.Question, &q.Answer, &q.Timestamp); err != nil {
			return nil, err
		}
		if i, ok := index[docID]; ok {
			docs[i].Queries = append(docs[i].Queries, q)
		}
	}
	if err := historyRows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string, docID int64) (Document, error) {
	const query = `
SELECT id, user_id, title, subject, content, summary, uploaded_at, last_viewed
FROM documents
WHERE user_id = $1 AND id = $2`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, docID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	const historyQuery = `
SELECT question, answer, created_at
FROM queries
WHERE document_id = $1
ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, historyQuery, docID)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.Question, &q.Answer, &q.Timestamp); err != nil {
			return Document{}, err
		}
		doc.Queries = append(doc.Queries, q)
	}
	if err := rows.Err(); err != nil {
		return Document{}, err
	}

	return doc, nil
}

func (r *PGRepo) TouchLastViewed(ctx context.Context, userID string, docID int64, at time.Time) error {
	const query = `
UPDATE documents
SET last_viewed = $3
WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, userID, docID, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// AppendQuery inserts the query only if the document still belongs to the user.
func (r *PGRepo) AppendQuery(ctx context.Context, userID string, docID int64, q Query) error {
	const query = `
INSERT INTO queries (document_id, question, answer, created_at)
SELECT $2, $3, $4, $5
WHERE EXISTS (SELECT 1 FROM documents WHERE id = $2 AND user_id = $1)`

	res, err := r.DB.ExecContext(ctx, query, userID, docID, q.Question, q.Answer, q.Timestamp)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) Delete(ctx context.Context, userID string, docID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1 AND id = $2`, userID, docID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteAllForUser removes every document a user owns. The FK cascade
// removes the associated query rows.
func (r *PGRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1`, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var lastViewed sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Subject,
		&doc.Content,
		&doc.Summary,
		&doc.UploadedAt,
		&lastViewed,
	)
	if err != nil {
		return Document{}, err
	}
	if lastViewed.Valid {
		doc.LastViewed = &lastViewed.Time
	}
	return doc, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
