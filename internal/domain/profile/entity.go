package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Profile represents the profiles table. The primary key is the user's own
// auth identity, which makes stub auto-provisioning idempotent: a concurrent
// duplicate insert fails safely on the key.
type Profile struct {
	ID           uuid.UUID
	Email        sql.NullString
	PasswordHash string
	FullName     string
	AvatarURL    string
	State        string
	LGA          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents the sessions table used for refresh-token rotation.
type Session struct {
	ID               uuid.UUID
	ProfileID        uuid.UUID
	RefreshTokenHash string
	ExpiresAt        time.Time
	IsRevoked        bool
	CreatedAt        time.Time
}

func (Profile) TableName() string {
	return "profiles"
}

func (Session) TableName() string {
	return "sessions"
}
