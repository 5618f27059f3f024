package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. The record store only ever sees the ID; the
// rest exists for the auth layer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
