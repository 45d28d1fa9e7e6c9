package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"identity-gateway/app/domain"
	"identity-gateway/app/port"
)

// handshakeTokenLength is the byte length of the state and nonce tokens
// minted for each login handshake
const handshakeTokenLength = 16

// IdentityUseCase implements the login handshake and code exchange logic
type IdentityUseCase struct {
	provider port.IdentityProvider
	tokens   port.TokenService
	states   port.StateStore
	resolver port.TenantResolver
	logger   *slog.Logger
}

// NewIdentityUseCase creates a new IdentityUseCase instance
func NewIdentityUseCase(
	provider port.IdentityProvider,
	tokens port.TokenService,
	states port.StateStore,
	resolver port.TenantResolver,
	logger *slog.Logger,
) *IdentityUseCase {
	return &IdentityUseCase{
		provider: provider,
		tokens:   tokens,
		states:   states,
		resolver: resolver,
		logger:   logger,
	}
}

// BeginLogin starts a new handshake and returns the upstream consent URL
func (uc *IdentityUseCase) BeginLogin(ctx context.Context) (string, error) {
	state, err := generateHandshakeToken(handshakeTokenLength)
	if err != nil {
		return "", err
	}

	nonce, err := generateHandshakeToken(handshakeTokenLength)
	if err != nil {
		return "", err
	}

	// Bind the nonce to the state so the callback can recover it
	uc.states.Put(state, nonce)

	return uc.provider.AuthCodeURL(state, nonce), nil
}

// CompleteLogin exchanges the callback state and code for a signed session
// credential
func (uc *IdentityUseCase) CompleteLogin(ctx context.Context, state, code string) (string, error) {
	// A state is honored exactly once; replays and forgeries fail here
	nonce, ok := uc.states.Take(state)
	if !ok {
		return "", domain.ErrStateMismatch
	}

	upstream, err := uc.provider.Exchange(ctx, code, nonce)
	if err != nil {
		return "", err
	}

	if upstream.Subject == "" || upstream.Email == "" {
		return "", domain.ErrIncompleteIdentity
	}

	tenantID, isOwner, err := uc.resolver.Resolve(ctx, upstream)
	if err != nil {
		return "", err
	}

	identity := &domain.Identity{
		Subject:  upstream.Subject,
		Email:    upstream.Email,
		TenantID: tenantID,
		IsOwner:  isOwner,
	}

	token, err := uc.tokens.Issue(identity)
	if err != nil {
		return "", err
	}

	uc.logger.Info("user logged in via Google", "email", identity.Email, "tenant_id", identity.TenantID)

	return token, nil
}

// generateHandshakeToken returns n cryptographically secure random bytes,
// hex encoded
func generateHandshakeToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
