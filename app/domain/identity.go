package domain

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the verified claim set attached to an admitted request. It is
// never persisted and dies with the request.
type Identity struct {
	Subject  string `json:"google_sub"`
	Email    string `json:"email"`
	TenantID string `json:"org_id"`
	IsOwner  bool   `json:"is_owner"`
}

// UpstreamIdentity is the assertion extracted from a verified Google ID
// token. Untrusted until the originating handshake state has been matched.
type UpstreamIdentity struct {
	Subject string
	Email   string
	Name    string
}

// NewIdentityContext returns a context carrying the verified identity.
func NewIdentityContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the verified identity attached by the
// credential gate.
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil, ErrUnauthorized
	}
	return identity, nil
}
