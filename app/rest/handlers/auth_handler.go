package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"identity-gateway/app/domain"
	"identity-gateway/app/port"
)

// AuthHandler handles the login handshake HTTP requests
type AuthHandler struct {
	identityUsecase port.IdentityUsecase
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityUsecase port.IdentityUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identityUsecase: identityUsecase,
		logger:          logger,
	}
}

// Login handles GET request to start the Google login handshake
// @Summary Start Google login
// @Description Redirect to the Google consent screen with a fresh state and nonce
// @Tags authentication
// @Produce json
// @Success 302 "Redirect to Google"
// @Failure 500 {object} ErrorPayload
// @Router /auth/login [get]
func (h *AuthHandler) Login(c echo.Context) error {
	url, err := h.identityUsecase.BeginLogin(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to begin login", "error", err)
		return err
	}

	return c.Redirect(http.StatusFound, url)
}

// Callback handles the consent screen redirect back from Google
// @Summary Complete Google login
// @Description Exchange the callback state and code for a signed session token
// @Tags authentication
// @Produce json
// @Param state query string true "Handshake state"
// @Param code query string true "Authorization code"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorPayload
// @Failure 502 {object} ErrorPayload
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")

	token, err := h.identityUsecase.CompleteLogin(c.Request().Context(), state, code)
	if err != nil {
		return h.mapCallbackError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// mapCallbackError translates exchange failures into their wire responses
func (h *AuthHandler) mapCallbackError(err error) error {
	switch {
	case errors.Is(err, domain.ErrStateMismatch):
		h.logger.Warn("OAuth callback failed: mismatching state")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OAuth state")
	case errors.Is(err, domain.ErrNonceMismatch),
		errors.Is(err, domain.ErrInvalidUpstreamToken):
		h.logger.Warn("invalid ID token from Google", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid Google response")
	case errors.Is(err, domain.ErrIncompleteIdentity):
		h.logger.Error("incomplete user info from Google")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid Google response")
	case errors.Is(err, domain.ErrExchangeFailed):
		h.logger.Error("code exchange with Google failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Login with Google failed")
	default:
		h.logger.Error("login completion failed", "error", err)
		return err
	}
}

// TokenResponse carries the signed session credential back to the caller
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorPayload is the error envelope rendered by the HTTP error handler
type ErrorPayload struct {
	Message string `json:"message"`
}
