package documents

import "time"

// Document is a stored PDF's extracted text plus derived metadata and its
// question/answer history.
type Document struct {
	ID         int64
	UserID     string
	Title      string
	Subject    string
	Content    string
	Summary    string
	UploadedAt time.Time
	LastViewed *time.Time
	Queries    []Query
}

// Query is one question/answer pair attached to a document. Append-only.
type Query struct {
	Question  string
	Answer    string
	Timestamp time.Time
}
