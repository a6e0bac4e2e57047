package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered identity. Accounts are created out of band (see
// cmd/admin); the server never mutates them after creation.
type User struct {
	// ID is the opaque identifier embedded in tokens and message rows (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Username is the unique login name.
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	// DisplayName is what other participants see.
	DisplayName string `gorm:"not null" json:"display_name"`
	// PasswordHash is a bcrypt hash of the password. Never serialized.
	PasswordHash string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID has
// not been set by the caller.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Identity is the token-verified view of a user that travels with a
// request or a live connection.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Identity returns the identity view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, DisplayName: u.DisplayName}
}
