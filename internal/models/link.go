package models

import "github.com/google/uuid"

// Link is a single entry on a user's public link list.
type Link struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"-"`
	Platform string    `json:"platform"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}
