package gateway

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"identity-gateway/app/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGoogleClient struct {
	authCodeURL string
	lastState   string
	lastOptsLen int

	exchangeToken *oauth2.Token
	exchangeErr   error

	idToken   *oidc.IDToken
	verifyErr error
	verified  string
}

func (f *fakeGoogleClient) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	f.lastState = state
	f.lastOptsLen = len(opts)
	return f.authCodeURL
}

func (f *fakeGoogleClient) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeToken, nil
}

func (f *fakeGoogleClient) VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	f.verified = rawIDToken
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.idToken, nil
}

func tokenWithIDToken(raw string) *oauth2.Token {
	return (&oauth2.Token{AccessToken: "upstream-access-token"}).
		WithExtra(map[string]interface{}{"id_token": raw})
}

func TestIdentityGateway_AuthCodeURL(t *testing.T) {
	client := &fakeGoogleClient{authCodeURL: "https://accounts.google.com/o/oauth2/auth?state=abc"}
	gateway := NewIdentityGateway(client, testLogger())

	url := gateway.AuthCodeURL("abc", "nonce-1")

	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=abc", url)
	assert.Equal(t, "abc", client.lastState)
	// The nonce travels as an auth code option
	assert.Equal(t, 1, client.lastOptsLen)
}

func TestIdentityGateway_Exchange(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeGoogleClient
		wantErr error
	}{
		{
			name:    "code exchange failure",
			client:  &fakeGoogleClient{exchangeErr: assert.AnError},
			wantErr: domain.ErrExchangeFailed,
		},
		{
			name:    "token response missing id_token",
			client:  &fakeGoogleClient{exchangeToken: &oauth2.Token{AccessToken: "upstream-access-token"}},
			wantErr: domain.ErrExchangeFailed,
		},
		{
			name: "id token verification failure",
			client: &fakeGoogleClient{
				exchangeToken: tokenWithIDToken("raw-id-token"),
				verifyErr:     assert.AnError,
			},
			wantErr: domain.ErrInvalidUpstreamToken,
		},
		{
			name: "nonce mismatch",
			client: &fakeGoogleClient{
				exchangeToken: tokenWithIDToken("raw-id-token"),
				idToken:       &oidc.IDToken{Subject: "g-1", Nonce: "some-other-nonce"},
			},
			wantErr: domain.ErrNonceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := NewIdentityGateway(tt.client, testLogger())

			identity, err := gateway.Exchange(context.Background(), "auth-code", "nonce-1")

			assert.Nil(t, identity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIdentityGateway_ExchangeVerifiesRawToken(t *testing.T) {
	client := &fakeGoogleClient{
		exchangeToken: tokenWithIDToken("raw-id-token"),
		verifyErr:     assert.AnError,
	}
	gateway := NewIdentityGateway(client, testLogger())

	_, err := gateway.Exchange(context.Background(), "auth-code", "nonce-1")

	assert.Error(t, err)
	assert.Equal(t, "raw-id-token", client.verified)
}
