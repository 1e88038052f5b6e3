// Package service orchestrates the credential lifecycle: signup with deferred
// activation, single-use verification and reset tokens, login, and the
// compensating cleanup around email delivery failures.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
	"github.com/alvinobieroh/devlinks-api/internal/auth"
	"github.com/alvinobieroh/devlinks-api/internal/email"
	"github.com/alvinobieroh/devlinks-api/internal/models"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// AuthService owns the signup, verification, login, and password reset flows.
type AuthService struct {
	users  storage.UserStore
	tokens *auth.TokenManager
	mailer email.Sender
	log    zerolog.Logger

	appBaseURL string
	verifyTTL  time.Duration
	resetTTL   time.Duration

	now func() time.Time
}

// NewAuthService wires the service. appBaseURL is the client origin embedded
// in email links; verifyTTL and resetTTL bound the two opaque token kinds.
func NewAuthService(users storage.UserStore, tokens *auth.TokenManager, mailer email.Sender,
	log zerolog.Logger, appBaseURL string, verifyTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		log:        log,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		verifyTTL:  verifyTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// Signup creates an unverified user and sends the verification email. The
// record persists first; if the send fails the record is deleted again so the
// caller is never told a verification email is on its way when it is not.
func (s *AuthService) Signup(ctx context.Context, emailAddr, password, confirmPassword string) error {
	if password != confirmPassword {
		return apperror.PasswordMismatch()
	}
	emailAddr = normalizeEmail(emailAddr)

	plaintext, digest, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.verifyTTL)
	user := models.User{
		ID:                   uuid.New(),
		Email:                emailAddr,
		PasswordHash:         passwordHash,
		EmailVerifyTokenHash: digest,
		EmailVerifyExpiresAt: &expiresAt,
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperror.DuplicateEmail()
		}
		return err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.appBaseURL, plaintext)
	body, err := email.VerificationBody(link)
	if err != nil {
		return err
	}
	msg := email.Message{To: emailAddr, Subject: email.VerificationSubject, HTMLBody: body}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// Roll the signup back so the address can be registered again.
		if delErr := s.users.DeleteUser(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", created.ID.String()).
				Msg("rollback of unverified user after failed send")
		}
		return apperror.EmailDelivery(
			"There was an error sending the verification email. Please try again later.").WithCause(err)
	}
	return nil
}

// VerifyEmail consumes a verification token. Exactly one of two concurrent
// presenters of the same token succeeds; the store clears the hash in the
// same statement that checks it.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperror.InvalidVerificationToken()
	}
	digest := auth.HashOpaqueToken(token)
	if _, err := s.users.ConsumeVerificationToken(ctx, digest, s.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.InvalidVerificationToken()
		}
		return err
	}
	return nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller; an unverified account
// with correct credentials is told so explicitly.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, "", apperror.InvalidCredentials()
		}
		return models.User{}, "", err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, "", apperror.InvalidCredentials()
	}
	if !user.IsVerified {
		return models.User{}, "", apperror.EmailNotVerified()
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// ForgotPassword mints a reset token bounded by the reset TTL and emails it.
// If the send fails, the pending reset fields are cleared again before the
// failure is reported.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.UserNotFound()
		}
		return err
	}

	plaintext, digest, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, plaintext)
	body, err := email.ResetBody(link)
	if err != nil {
		return err
	}
	msg := email.Message{To: user.Email, Subject: email.ResetSubject, HTMLBody: body}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID.String()).
				Msg("rollback of pending reset after failed send")
		}
		return apperror.EmailDelivery(
			"There was an error sending the password reset email. Please try again later.").WithCause(err)
	}
	return nil
}

// ResetPassword consumes a reset token, installs the new password, and issues
// a fresh session token so the user is logged in immediately.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirmPassword string) (models.User, string, error) {
	if password != confirmPassword {
		return models.User{}, "", apperror.PasswordMismatch()
	}
	if strings.TrimSpace(token) == "" {
		return models.User{}, "", apperror.InvalidResetToken()
	}

	newHash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}
	digest := auth.HashOpaqueToken(token)
	user, err := s.users.ConsumeResetToken(ctx, digest, newHash, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, "", apperror.InvalidResetToken()
		}
		return models.User{}, "", err
	}

	sessionToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, sessionToken, nil
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
