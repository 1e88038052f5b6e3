package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alvinobieroh/devlinks-api/internal/models"
)

// ErrNotFound indicates a record does not exist (or a conditional update
// matched no row).
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures the persistence operations the auth core needs. Token
// consumption is a single conditional update at the store so that exactly one
// of two concurrent presenters wins.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// ConsumeVerificationToken atomically marks the matching user verified and
	// clears the pending token. ErrNotFound means the token was never issued,
	// already consumed, or expired.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error)

	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error

	// ConsumeResetToken atomically swaps in the new password hash and clears
	// the pending reset, provided the token hash matches and is unexpired.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (models.User, error)

	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, photo string) (models.User, error)
}

// LinkStore persists a user's link list.
type LinkStore interface {
	LinksByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error)
	// ReplaceLinks swaps the user's entire list in one transaction.
	ReplaceLinks(ctx context.Context, userID uuid.UUID, links []models.Link) ([]models.Link, error)
}
