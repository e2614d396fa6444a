package documents

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
	ErrMetadata     = errors.New("metadata extraction failed")
	ErrPersistence  = errors.New("persistence failed")
)
