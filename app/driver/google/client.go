package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"identity-gateway/app/config"
	"identity-gateway/app/utils/logger"
)

// IssuerURL is Google's OIDC issuer, the discovery root for endpoints and
// signing keys.
const IssuerURL = "https://accounts.google.com"

// Client wraps the Google OAuth code exchange and ID token verification.
type Client struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	logger   *slog.Logger
}

// NewClient discovers Google's OIDC configuration and builds the exchange
// client. Discovery runs once at startup so a misconfigured upstream aborts
// boot instead of surfacing per request.
func NewClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google client credentials are required")
	}
	if !isValidURL(cfg.GoogleRedirectURL) {
		return nil, fmt.Errorf("invalid google redirect URL: %s", cfg.GoogleRedirectURL)
	}

	discoverCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(discoverCtx, IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc configuration: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID})

	clientLogger := logger.GoogleLogger(log)
	clientLogger.Info("Google client initialized",
		"redirect_url", cfg.GoogleRedirectURL)

	return &Client{
		oauth:    oauthConfig,
		verifier: verifier,
		logger:   clientLogger,
	}, nil
}

// AuthCodeURL builds the consent URL for a handshake.
func (c *Client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.oauth.AuthCodeURL(state, opts...)
}

// ExchangeCode redeems an authorization code at Google's token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return token, nil
}

// VerifyIDToken checks the signature and audience of a raw ID token against
// Google's published keys.
func (c *Client) VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}
	return idToken, nil
}

// isValidURL validates if a URL is properly formatted
func isValidURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	return parsedURL.Scheme != "" && parsedURL.Host != ""
}
