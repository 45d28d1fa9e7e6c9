package domain

import "errors"

// Identity exchange and credential validation errors
var (
	// Identity exchange errors
	ErrStateMismatch        = errors.New("oauth state mismatch")
	ErrNonceMismatch        = errors.New("id token nonce mismatch")
	ErrInvalidUpstreamToken = errors.New("invalid upstream id token")
	ErrIncompleteIdentity   = errors.New("upstream identity incomplete")
	ErrExchangeFailed       = errors.New("upstream exchange failed")

	// Credential errors
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("credential expired")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrInvalidClaims       = errors.New("invalid credential claims")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")

	// Account errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTenantNotFound    = errors.New("tenant not found")

	// Rate limiting errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// General errors
	ErrInternal = errors.New("internal error")
)
