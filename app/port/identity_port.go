package port

//go:generate mockgen -source=identity_port.go -destination=../mocks/mock_identity_port.go

import (
	"context"

	"identity-gateway/app/domain"
)

// IdentityUsecase defines the identity exchange business logic interface
type IdentityUsecase interface {
	// BeginLogin starts a handshake and returns the upstream consent URL
	BeginLogin(ctx context.Context) (string, error)
	// CompleteLogin exchanges the callback state and code for a signed
	// session credential
	CompleteLogin(ctx context.Context, state, code string) (string, error)
}

// IdentityProvider defines the upstream federated identity interface
type IdentityProvider interface {
	// AuthCodeURL builds the consent URL binding state and nonce to the
	// handshake
	AuthCodeURL(state, nonce string) string
	// Exchange redeems an authorization code and returns the verified
	// identity assertion. The ID token signature and nonce are checked
	// before any claim is extracted.
	Exchange(ctx context.Context, code, nonce string) (*domain.UpstreamIdentity, error)
}

// TokenService defines session credential minting and verification
type TokenService interface {
	// Issue signs a session credential for the resolved identity
	Issue(identity *domain.Identity) (string, error)
	// Verify parses and validates a compact credential, returning its claims
	Verify(token string) (*domain.SessionClaims, error)
}

// StateStore holds the state→nonce binding between login start and callback
type StateStore interface {
	Put(state, nonce string)
	// Take removes and returns the nonce for a state. A state can be taken
	// exactly once.
	Take(state string) (string, bool)
}
