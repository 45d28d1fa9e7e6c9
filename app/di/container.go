package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"identity-gateway/app/config"
	"identity-gateway/app/driver/cache"
	"identity-gateway/app/driver/google"
	"identity-gateway/app/driver/postgres"
	"identity-gateway/app/driver/token"
	"identity-gateway/app/gateway"
	"identity-gateway/app/port"
	"identity-gateway/app/rest"
	"identity-gateway/app/rest/handlers"
	"identity-gateway/app/usecase"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	DB           *postgres.DB
	GoogleClient *google.Client
	StateCache   *cache.StateCache
	TokenService port.TokenService

	// Gateways
	IdentityGateway port.IdentityProvider

	// Usecases
	TenantResolver  port.TenantResolver
	IdentityUsecase port.IdentityUsecase
}

// NewContainer creates and initializes a new dependency injection container.
// The context bounds startup work against the outside world: OIDC discovery
// and the first database ping.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Postgres backs tenant resolution only in persistent mode; the static
	// mode runs without a database
	if cfg.TenantMode == config.TenantModePostgres {
		db, err := postgres.NewConnection(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		container.DB = db

		accounts := postgres.NewAccountRepository(db.Pool(), logger)
		container.TenantResolver = usecase.NewPersistentTenantResolver(accounts, logger)
	} else {
		container.TenantResolver = usecase.NewStaticTenantResolver(cfg.DefaultTenantID)
	}

	googleClient, err := google.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google client: %w", err)
	}
	container.GoogleClient = googleClient

	container.StateCache = cache.NewStateCache(cfg.StateTTL)

	tokenService, err := token.NewService(token.Config{
		Secret: cfg.JWTSecret,
		Expiry: cfg.JWTExpiry,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	container.TokenService = tokenService

	container.IdentityGateway = gateway.NewIdentityGateway(googleClient, logger)

	container.IdentityUsecase = usecase.NewIdentityUseCase(
		container.IdentityGateway,
		container.TokenService,
		container.StateCache,
		container.TenantResolver,
		logger,
	)

	logger.Info("container initialized", "tenant_mode", cfg.TenantMode)

	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	// Leave the pinger nil in static mode so readiness does not probe a
	// database that was never opened
	var db handlers.Pinger
	if c.DB != nil {
		db = c.DB
	}

	return rest.NewRouter(rest.RouterConfig{
		Logger:          c.Logger,
		IdentityUsecase: c.IdentityUsecase,
		TokenService:    c.TokenService,
		DB:              db,
		ExemptPaths:     c.Config.ExemptPaths,
		AuthRateLimit:   c.Config.AuthRateLimit,
		AuthRateBurst:   c.Config.AuthRateBurst,
		EnableDebug:     c.Config.Env == "development",
	})
}

// Close closes all resources
func (c *Container) Close() error {
	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("container closed")
	return nil
}
