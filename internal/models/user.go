package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity and credential-lifecycle aggregate. The password hash
// and pending token state never serialize into responses.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Photo      string    `json:"photo"`
	CreatedAt  time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`

	// Pending email verification, present only until the token is consumed.
	EmailVerifyTokenHash string     `json:"-"`
	EmailVerifyExpiresAt *time.Time `json:"-"`

	// Pending password reset, cleared on success or on send failure.
	ResetTokenHash string     `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
}
