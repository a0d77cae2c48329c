package domain

import (
	"fmt"
	"time"
)

// Role enumerates the operator tiers of the workforce application.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleAgent   Role = "AGENT"
)

// Elevated reports whether the role belongs to the privileged tier that is
// exempt from single-session enforcement and receives a longer token lifetime.
func (r Role) Elevated() bool {
	return r == RoleAdmin
}

// ParseRole validates a role name from external input.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleManager, RoleAgent:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Subject is the authenticated principal. Owned by the subject directory;
// the auth core only reads it at issuance and validation time.
type Subject struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Elevated reports whether the subject is in the privileged tier.
func (s *Subject) Elevated() bool {
	return s.Role.Elevated()
}
