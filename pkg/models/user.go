package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants. Root is the only role without a municipality.
const (
	RoleRoot   = "root"
	RoleAdmin  = "admin"
	RoleGestor = "gestor"
	RoleUser   = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleRoot, RoleAdmin, RoleGestor, RoleUser}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account scoped to one municipality, or to none for root.
// Invariant: Role == root ⇔ MunicipalityID == nil.
type User struct {
	ID             uuid.UUID  `json:"id"`
	MunicipalityID *uuid.UUID `json:"municipality_id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// Principal is the resolved identity attached to a request after the auth
// middleware re-fetched the live user row. Role and tenancy reflect the
// current database state, not the token claims.
type Principal struct {
	ID             uuid.UUID
	Email          string
	Role           string
	MunicipalityID *uuid.UUID
}

// IsRoot reports whether the principal holds the global administrator role.
func (p *Principal) IsRoot() bool {
	return p.Role == RoleRoot
}

// SameTenant reports whether the principal belongs to the given municipality.
func (p *Principal) SameTenant(municipalityID *uuid.UUID) bool {
	if p.MunicipalityID == nil || municipalityID == nil {
		return false
	}
	return *p.MunicipalityID == *municipalityID
}
