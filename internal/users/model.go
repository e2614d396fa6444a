package users

import "time"

// User is a registered account owning zero or more documents.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
