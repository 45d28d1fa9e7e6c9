package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"identity-gateway/app/domain"
	"identity-gateway/app/utils/logger"
	"identity-gateway/app/utils/validator"
)

// Config holds the session credential signing parameters
type Config struct {
	Secret string
	Expiry time.Duration
}

// Service mints and verifies HS256 session credentials. The claim set it
// signs is the wire contract downstream services decode.
type Service struct {
	config    Config
	validator *validator.Validator
	logger    *slog.Logger
}

// NewService creates a token service. An empty signing secret is a
// configuration fault and refuses construction.
func NewService(config Config, log *slog.Logger) (*Service, error) {
	if config.Secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if config.Expiry <= 0 {
		return nil, fmt.Errorf("credential expiry must be positive")
	}

	return &Service{
		config:    config,
		validator: validator.New(),
		logger:    logger.WithComponent(log, "token"),
	}, nil
}

// Issue signs a session credential for the resolved identity. Expiry is the
// only lifetime control; credentials are never revoked or updated.
func (s *Service) Issue(identity *domain.Identity) (string, error) {
	now := time.Now()
	claims := &domain.SessionClaims{
		Email:   identity.Email,
		OrgID:   identity.TenantID,
		IsOwner: identity.IsOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}

	s.logger.Debug("Issued session credential",
		"subject", identity.Subject,
		"tenant_id", identity.TenantID,
		"expires_at", now.Add(s.config.Expiry).Format(time.RFC3339))

	return signed, nil
}

// Verify parses and validates a compact credential. Only HMAC-signed tokens
// are accepted; the claim shape is checked after the signature so a valid
// signature over incomplete claims still fails.
func (s *Service) Verify(tokenString string) (*domain.SessionClaims, error) {
	claims := &domain.SessionClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrExpiredCredential
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrMalformedCredential
		default:
			return nil, domain.ErrInvalidCredential
		}
	}

	if !parsed.Valid {
		return nil, domain.ErrInvalidCredential
	}

	if claims.Subject == "" {
		return nil, domain.ErrInvalidClaims
	}
	if err := s.validator.Validate(claims); err != nil {
		return nil, domain.ErrInvalidClaims
	}

	return claims, nil
}
