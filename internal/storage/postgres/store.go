package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alvinobieroh/devlinks-api/internal/models"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.LinkStore = (*Store)(nil)
)

// DB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides Postgres-backed persistence for users and links.
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

// New connects a pool, runs migrations, and returns a ready store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: pool, pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// NewWithDB wraps an existing connection, used by tests with pgxmock.
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			email_verify_token_hash TEXT,
			email_verify_expires_at TIMESTAMPTZ,
			reset_token_hash TEXT,
			reset_expires_at TIMESTAMPTZ,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS links (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			platform TEXT NOT NULL,
			url TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS links_user_position_idx ON links (user_id, position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = `id, email, password_hash, is_verified, email_verify_token_hash,
	email_verify_expires_at, reset_token_hash, reset_expires_at, first_name, last_name, photo, created_at`

// CreateUser inserts a new user row. The unique index on LOWER(email) makes
// the store the arbiter between concurrent signups for the same address.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, is_verified, email_verify_token_hash, email_verify_expires_at, first_name, last_name, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns
	row := s.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsVerified,
		nullable(user.EmailVerifyTokenHash), user.EmailVerifyExpiresAt,
		user.FirstName, user.LastName, user.Photo)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by case-normalized email.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1);`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

// FindByID fetches a user by ID.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

// DeleteUser removes a user row; links cascade.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken flips is_verified and clears the pending token in a
// single conditional update. A consumed or expired token matches no row.
func (s *Store) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE, email_verify_token_hash = NULL, email_verify_expires_at = NULL
		WHERE email_verify_token_hash = $1 AND email_verify_expires_at > $2
		RETURNING ` + userColumns
	return scanUser(s.db.QueryRow(ctx, query, tokenHash, now))
}

// SetResetToken records a pending password reset.
func (s *Store) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_expires_at = $3 WHERE id = $1;`,
		id, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClearResetToken rolls back a pending reset, e.g. after a failed email send.
func (s *Store) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL WHERE id = $1;`, id)
	return err
}

// ConsumeResetToken installs the new password hash and clears the pending
// reset, provided the token still matches and is unexpired.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_expires_at = NULL
		WHERE reset_token_hash = $1 AND reset_expires_at > $3
		RETURNING ` + userColumns
	return scanUser(s.db.QueryRow(ctx, query, tokenHash, newPasswordHash, now))
}

// UpdateProfile mutates the owner-editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, photo string) (models.User, error) {
	query := `
		UPDATE users SET first_name = $2, last_name = $3, photo = $4
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.db.QueryRow(ctx, query, id, firstName, lastName, photo))
}

// LinksByUser returns the user's links in display order.
func (s *Store) LinksByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, platform, url, position FROM links WHERE user_id = $1 ORDER BY position;`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.ID, &l.UserID, &l.Platform, &l.URL, &l.Position); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ReplaceLinks swaps the user's link list inside a transaction.
func (s *Store) ReplaceLinks(ctx context.Context, userID uuid.UUID, links []models.Link) ([]models.Link, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM links WHERE user_id = $1;`, userID); err != nil {
		return nil, err
	}
	for _, l := range links {
		if _, err := tx.Exec(ctx,
			`INSERT INTO links (id, user_id, platform, url, position) VALUES ($1, $2, $3, $4, $5);`,
			l.ID, l.UserID, l.Platform, l.URL, l.Position); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return links, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user       models.User
		verifyHash *string
		resetHash  *string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsVerified,
		&verifyHash, &user.EmailVerifyExpiresAt, &resetHash, &user.ResetExpiresAt,
		&user.FirstName, &user.LastName, &user.Photo, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	if verifyHash != nil {
		user.EmailVerifyTokenHash = *verifyHash
	}
	if resetHash != nil {
		user.ResetTokenHash = *resetHash
	}
	return user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
