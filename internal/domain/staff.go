package domain

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole controls access to back-office operations.
type StaffRole string

const (
	RolePreparer StaffRole = "preparer"
	RoleAdmin    StaffRole = "admin"
)

func (r StaffRole) String() string { return string(r) }

func (r StaffRole) IsValid() bool {
	switch r {
	case RolePreparer, RoleAdmin:
		return true
	}
	return false
}

// StaffUser is a firm employee with back-office access.
type StaffUser struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         StaffRole
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffRefreshToken is a hashed refresh token stored for session rotation.
type StaffRefreshToken struct {
	ID        uuid.UUID
	StaffID   uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked returns true if the token has been revoked.
func (t *StaffRefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token has expired relative to now.
func (t *StaffRefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
