package models

import (
	"time"

	"github.com/google/uuid"
)

// Account role enums.
const (
	RoleTenantSeeker = "tenant_seeker"
	RoleProvider     = "provider"
)

// DefaultTrustScore is assigned to every account at registration.
const DefaultTrustScore = 50

type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	ContactPhone string     `json:"-"` // protected; revealed only through a paid unlock
	Balance      int        `json:"balance"`
	TrustScore   int        `json:"trust_score"`
	IsVerified   bool       `json:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
