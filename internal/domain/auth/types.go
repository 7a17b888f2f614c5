package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and config parsing.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Roles lists every valid role. Order is not significant.
var Roles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

// Valid reports whether the role is one of the supported enum values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	default:
		return false
	}
}

// ParseRole validates a string against the role enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q (valid options: admin, staff, customer)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for Role.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity represents the backend's live proof that the credential the client
// currently holds is valid. Presence implies a provider-validated session;
// it carries no application-level profile data.
type Identity struct {
	ID        string // stable user identifier (e.g., sub)
	Email     string
	ExpiresAt time.Time // absolute expiry reported by the provider, zero if unknown
}

// Profile is the application-level record associated one-to-one with an
// Identity by ID. It is meaningful only while the matching session is live.
type Profile struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	FullName  string    `json:"full_name"  db:"full_name"`
	Phone     string    `json:"phone"      db:"phone"`
	Role      Role      `json:"role"       db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// State is the session controller's authoritative view of the current user.
// User is nil when unauthenticated; Loading is true only while a
// reconciliation pass is in flight or before the first one completes.
type State struct {
	User    *Profile
	Loading bool
}

// Authenticated reports whether a usable session is established.
func (s State) Authenticated() bool { return s.User != nil }

// RoleOf returns the current user's role, or false when unauthenticated.
func (s State) RoleOf() (Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}
