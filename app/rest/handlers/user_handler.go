package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"identity-gateway/app/domain"
)

// UserHandler handles identity introspection HTTP requests
type UserHandler struct {
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger) *UserHandler {
	return &UserHandler{
		logger: logger,
	}
}

// WhoAmI handles GET request for the caller's verified identity
// @Summary Current user context
// @Description Return the identity claims verified by the credential gate
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WhoAmIResponse
// @Failure 401 {object} ErrorPayload
// @Router /secure/whoami [get]
func (h *UserHandler) WhoAmI(c echo.Context) error {
	identity, err := domain.IdentityFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	h.logger.Info("user accessed whoami endpoint",
		"email", identity.Email,
		"tenant_id", identity.TenantID)

	return c.JSON(http.StatusOK, WhoAmIResponse{User: identity})
}

// WhoAmIResponse wraps the verified identity for the response body
type WhoAmIResponse struct {
	User *domain.Identity `json:"user"`
}
