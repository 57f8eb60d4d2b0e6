// Package auth holds the authenticated principal and the role gate that
// guards every trip lifecycle operation.
package auth

import (
	"strings"

	"github.com/garyjia/perdin-approval/internal/domain/apperr"
)

// Role is a user role claim
type Role string

const (
	RoleSDM     Role = "sdm"
	RolePegawai Role = "pegawai"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	return r == RoleSDM || r == RolePegawai
}

// ParseRole normalises a role string
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", apperr.Validation("unknown role %q", s)
	}
	return r, nil
}

// Principal is a verified caller identity
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role"`
}

// HasRole reports whether the principal holds role
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Role == role
}
