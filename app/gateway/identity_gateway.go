package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"identity-gateway/app/domain"
	"identity-gateway/app/utils/logger"
)

// GoogleClient is the upstream surface the gateway maps into domain terms.
// Satisfied by driver/google.Client.
type GoogleClient interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// IdentityGateway implements port.IdentityProvider.
// It acts as an anti-corruption layer between the domain and the upstream
// identity provider.
type IdentityGateway struct {
	client GoogleClient
	logger *slog.Logger
}

// NewIdentityGateway creates a new IdentityGateway instance
func NewIdentityGateway(client GoogleClient, logger *slog.Logger) *IdentityGateway {
	return &IdentityGateway{
		client: client,
		logger: logger.With("component", "identity_gateway"),
	}
}

// AuthCodeURL builds the consent URL binding state and nonce to the handshake.
func (g *IdentityGateway) AuthCodeURL(state, nonce string) string {
	return g.client.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange redeems an authorization code and returns the verified identity
// assertion. The ID token signature is checked first, then its nonce is
// compared against the handshake's stored nonce; claims are only read from a
// token that passed both.
func (g *IdentityGateway) Exchange(ctx context.Context, code, nonce string) (*domain.UpstreamIdentity, error) {
	token, err := g.client.ExchangeCode(ctx, code)
	if err != nil {
		g.logger.Error("upstream code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		g.logger.Error("token response missing id_token")
		return nil, fmt.Errorf("%w: token response missing id_token", domain.ErrExchangeFailed)
	}

	idToken, err := g.client.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		g.logger.Warn("id token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamToken, err)
	}

	if idToken.Nonce != nonce {
		g.logger.Warn("id token nonce mismatch")
		return nil, domain.ErrNonceMismatch
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		g.logger.Error("failed to decode id token claims", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamToken, err)
	}

	logger.WithSubject(g.logger, idToken.Subject).Debug("upstream identity verified")

	return &domain.UpstreamIdentity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
