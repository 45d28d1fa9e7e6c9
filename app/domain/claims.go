package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by a session credential. The claim
// names are the wire contract consumed by downstream services and must not
// change. Subject and expiry live in the embedded registered claims.
type SessionClaims struct {
	Email   string `json:"email" validate:"required,email"`
	OrgID   string `json:"org_id" validate:"required"`
	IsOwner bool   `json:"is_owner"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the per-request identity context.
func (c *SessionClaims) Identity() *Identity {
	return &Identity{
		Subject:  c.Subject,
		Email:    c.Email,
		TenantID: c.OrgID,
		IsOwner:  c.IsOwner,
	}
}
