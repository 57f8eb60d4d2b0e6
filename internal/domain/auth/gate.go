package auth

import (
	"strings"

	"github.com/garyjia/perdin-approval/internal/domain/apperr"
)

// Gate checks a principal against the roles an operation requires
type Gate struct{}

// NewGate creates a Gate
func NewGate() *Gate {
	return &Gate{}
}

// Require returns nil when p may perform the operation. With no roles
// any authenticated principal passes.
func (g *Gate) Require(p *Principal, roles ...Role) error {
	if p == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.HasRole(r) {
			return nil
		}
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return apperr.Forbidden("role %s required", strings.Join(names, " or "))
}

// Authenticated is Require with no roles
func (g *Gate) Authenticated(p *Principal) error {
	return g.Require(p)
}
