package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"docquery-backend/internal/shared/auth"
)

var (
	ErrInvalidInput       = errors.New("email, password and name are required")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmptyUpdate        = errors.New("no valid fields to update")
)

// Service contains business logic for user accounts.
type Service struct {
	Repo Repo

	cascades []func(ctx context.Context, userID string) error
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// OnDelete registers a cleanup run after the account record is removed, for
// stores that do not cascade on their own.
func (s *Service) OnDelete(fn func(ctx context.Context, userID string) error) {
	s.cascades = append(s.cascades, fn)
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return User{}, ErrInvalidInput
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ResolveUser maps a token subject (email) to a stored user id.
// It satisfies the auth middleware's IdentityResolver.
func (s *Service) ResolveUser(ctx context.Context, email string) (string, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial name/email update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update Update) (User, error) {
	if update.Name == nil && update.Email == nil {
		return User{}, ErrEmptyUpdate
	}
	if update.Email != nil {
		normalized := normalizeEmail(*update.Email)
		if normalized == "" {
			return User{}, ErrEmptyUpdate
		}
		update.Email = &normalized
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return User{}, ErrEmptyUpdate
		}
		update.Name = &trimmed
	}
	return s.Repo.Update(ctx, userID, update)
}

// Delete removes the user and, transitively, all owned documents.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return err
	}
	for _, cascade := range s.cascades {
		if err := cascade(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
