package rest

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"identity-gateway/app/port"
	"identity-gateway/app/rest/handlers"
	custommw "identity-gateway/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityUsecase port.IdentityUsecase
	TokenService    port.TokenService
	DB              handlers.Pinger
	ExemptPaths     []string
	AuthRateLimit   int
	AuthRateBurst   int
	EnableDebug     bool
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.Debug = config.EnableDebug

	// Create handlers
	authHandler := handlers.NewAuthHandler(config.IdentityUsecase, config.Logger)
	userHandler := handlers.NewUserHandler(config.Logger)
	healthHandler := handlers.NewHealthHandler(config.DB, config.Logger)

	// Create middleware
	jwtMiddleware := custommw.NewJWTMiddleware(config.TokenService, config.ExemptPaths, config.Logger)
	rateLimiter := custommw.NewRateLimiter(config.AuthRateLimit, config.AuthRateBurst)

	// Global middleware. Metrics runs outermost so it observes the final
	// status of every request, including rejections from the gate.
	e.Use(custommw.Metrics())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(config.Logger))
	e.Use(middleware.Recover())
	e.Use(jwtMiddleware.RequireToken())

	// Login handshake endpoints, rate limited per client IP
	auth := e.Group("/auth", rateLimiter.RateLimit())
	auth.GET("/login", authHandler.Login)
	auth.GET("/callback", authHandler.Callback)

	// Gated endpoints
	secure := e.Group("/secure")
	secure.GET("/whoami", userHandler.WhoAmI)

	// Health endpoints
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/live", healthHandler.LivenessCheck)
	e.GET("/ready", healthHandler.ReadinessCheck)

	// Prometheus exposition
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// requestLogger emits one structured line per completed request.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				logger.LogAttrs(c.Request().Context(), slog.LevelWarn, "request", attrs...)
				return nil
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}
