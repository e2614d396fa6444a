package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoNextID(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("UPDATE document_counter").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	id, err := repo.NextID(context.Background())
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendQueryRequiresOwnership(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repo := &PGRepo{DB: conn}
	at := time.Now().UTC()

	mock.ExpectExec("INSERT INTO queries").
		WithArgs("u1", int64(7), "q", "a", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AppendQuery(context.Background(), "u1", 7, Query{Question: "q", Answer: "a", Timestamp: at})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("SELECT id, user_id, title, subject, content, summary, uploaded_at, last_viewed").
		WithArgs("u1", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "subject", "content", "summary", "uploaded_at", "last_viewed"}))

	if _, err := repo.GetByID(context.Background(), "u1", 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repo := &PGRepo{DB: conn}

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("u1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "u1", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
