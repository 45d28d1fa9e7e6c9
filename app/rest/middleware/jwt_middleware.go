package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"identity-gateway/app/domain"
	"identity-gateway/app/port"
)

// JWTMiddleware gates every route outside the exempt set behind a valid
// bearer credential
type JWTMiddleware struct {
	tokens      port.TokenService
	exemptPaths map[string]struct{}
	logger      *slog.Logger
}

// NewJWTMiddleware creates a new credential gate for the given exempt paths
func NewJWTMiddleware(tokens port.TokenService, exemptPaths []string, logger *slog.Logger) *JWTMiddleware {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		exempt[path] = struct{}{}
	}

	return &JWTMiddleware{
		tokens:      tokens,
		exemptPaths: exempt,
		logger:      logger,
	}
}

// RequireToken validates the Authorization header and attaches the caller's
// identity to the request context
func (m *JWTMiddleware) RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Exact-match exemption; subpaths stay gated
			if _, ok := m.exemptPaths[c.Request().URL.Path]; ok {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := m.tokens.Verify(token)
			if err != nil {
				// The credential itself is never logged
				m.logger.Warn("token validation failed",
					"path", c.Request().URL.Path,
					"error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := domain.NewIdentityContext(c.Request().Context(), claims.Identity())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
