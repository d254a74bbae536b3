package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Participants on receipts are referenced by
// user ID everywhere else in the system.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	Email       string `json:"email"`
	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password. Never
	// serialized.
	PasswordHash string `json:"-"`

	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user with a fresh ID and creation timestamp.
func NewUser(email, displayName, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
