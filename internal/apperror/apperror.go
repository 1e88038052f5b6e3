// Package apperror defines the operational error taxonomy shared by the
// service layer, middleware, and HTTP boundary. An *Error carries the HTTP
// status and a message that is safe to show to clients; anything else reaching
// the boundary is treated as unclassified and masked.
package apperror

import (
	"fmt"
	"net/http"
)

// Kind identifies a stable failure category.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindDuplicateEmail        Kind = "duplicate_email"
	KindPasswordMismatch      Kind = "password_mismatch"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindEmailNotVerified      Kind = "email_not_verified"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindTokenInvalid          Kind = "token_invalid"
	KindTokenExpired          Kind = "token_expired"
	KindUserNotFound          Kind = "user_not_found"
	KindUserGone              Kind = "user_gone"
	KindEmailDelivery         Kind = "email_delivery_failed"
	KindNotAuthenticated      Kind = "not_authenticated"
	KindUnclassified          Kind = "unclassified"
)

// Error is an operational failure: anticipated, typed, and safe to describe
// to the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error // underlying cause, for server-side logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithCause attaches an underlying error for diagnostics without changing
// what the client sees.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.Err = cause
	return &clone
}

// New builds an operational error with an explicit status and message.
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Validation reports a 400 with the joined field messages.
func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message)
}

// DuplicateEmail hides the raw uniqueness conflict behind a fixed message.
func DuplicateEmail() *Error {
	return New(KindDuplicateEmail, http.StatusBadRequest,
		"This email is already registered. Please use a different email address.")
}

func PasswordMismatch() *Error {
	return New(KindPasswordMismatch, http.StatusBadRequest, "Passwords do not match.")
}

// InvalidCredentials is deliberately identical for unknown-email and
// wrong-password failures.
func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, http.StatusUnauthorized, "Invalid email or password.")
}

func EmailNotVerified() *Error {
	return New(KindEmailNotVerified, http.StatusUnauthorized,
		"Your email is not verified. Please verify your email address.")
}

// InvalidVerificationToken covers consumed, expired, and never-issued
// verification tokens alike.
func InvalidVerificationToken() *Error {
	return New(KindInvalidOrExpiredToken, http.StatusBadRequest,
		"Invalid or expired verification token.")
}

func InvalidResetToken() *Error {
	return New(KindInvalidOrExpiredToken, http.StatusBadRequest,
		"Password reset token is invalid or has expired.")
}

func TokenInvalid() *Error {
	return New(KindTokenInvalid, http.StatusUnauthorized, "Invalid token. Please log in again!")
}

func TokenExpired() *Error {
	return New(KindTokenExpired, http.StatusUnauthorized, "Your token has expired! Please log in again.")
}

func UserNotFound() *Error {
	return New(KindUserNotFound, http.StatusNotFound,
		"We can't find a user with that email address.")
}

// ProfileNotFound covers public profile lookups with an unknown or malformed id.
func ProfileNotFound() *Error {
	return New(KindUserNotFound, http.StatusNotFound,
		"We can't find a user with that id.")
}

func UserGone() *Error {
	return New(KindUserGone, http.StatusUnauthorized,
		"The user belonging to this token no longer exists.")
}

func EmailDelivery(message string) *Error {
	return New(KindEmailDelivery, http.StatusInternalServerError, message)
}

func NotAuthenticated() *Error {
	return New(KindNotAuthenticated, http.StatusUnauthorized,
		"You are not logged in! Please log in to get access.")
}
