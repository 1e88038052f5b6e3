// Package memory provides a mutex-guarded in-memory store. It mirrors the
// Postgres store's semantics, including conditional token consumption, and
// backs the service, middleware, and handler tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alvinobieroh/devlinks-api/internal/models"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.LinkStore = (*Store)(nil)
)

// Store keeps users and links in maps.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	links map[uuid.UUID][]models.Link
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]models.User),
		links: make(map[uuid.UUID][]models.Link),
	}
}

// CreateUser inserts a user, enforcing case-insensitive email uniqueness.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return user, nil
}

// FindByEmail looks a user up by case-normalized email.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByID looks a user up by ID.
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// DeleteUser removes a user and their links.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	delete(s.links, id)
	return nil
}

// ConsumeVerificationToken atomically claims a pending verification token.
func (s *Store) ConsumeVerificationToken(_ context.Context, tokenHash string, now time.Time) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.EmailVerifyTokenHash == tokenHash && tokenHash != "" &&
			user.EmailVerifyExpiresAt != nil && user.EmailVerifyExpiresAt.After(now) {
			user.IsVerified = true
			user.EmailVerifyTokenHash = ""
			user.EmailVerifyExpiresAt = nil
			s.users[id] = user
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// SetResetToken records a pending reset.
func (s *Store) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = &expiresAt
	s.users[id] = user
	return nil
}

// ClearResetToken drops any pending reset.
func (s *Store) ClearResetToken(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	s.users[id] = user
	return nil
}

// ConsumeResetToken atomically claims a pending reset token.
func (s *Store) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.ResetTokenHash == tokenHash && tokenHash != "" &&
			user.ResetExpiresAt != nil && user.ResetExpiresAt.After(now) {
			user.PasswordHash = newPasswordHash
			user.ResetTokenHash = ""
			user.ResetExpiresAt = nil
			s.users[id] = user
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// UpdateProfile mutates the owner-editable fields.
func (s *Store) UpdateProfile(_ context.Context, id uuid.UUID, firstName, lastName, photo string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.Photo = photo
	s.users[id] = user
	return user, nil
}

// LinksByUser returns the stored list in position order.
func (s *Store) LinksByUser(_ context.Context, userID uuid.UUID) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.links[userID]
	out := make([]models.Link, len(links))
	copy(out, links)
	return out, nil
}

// ReplaceLinks swaps the user's list.
func (s *Store) ReplaceLinks(_ context.Context, userID uuid.UUID, links []models.Link) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]models.Link, len(links))
	copy(stored, links)
	s.links[userID] = stored
	return stored, nil
}
