package port

//go:generate mockgen -source=tenant_port.go -destination=../mocks/mock_tenant_port.go

import (
	"context"

	"identity-gateway/app/domain"
)

// TenantResolver maps a verified upstream identity to the tenant it belongs
// to. The implementation is chosen at startup: a fixed default tenant, or
// durable postgres-backed records.
type TenantResolver interface {
	Resolve(ctx context.Context, upstream *domain.UpstreamIdentity) (tenantID string, isOwner bool, err error)
}

// AccountRepository defines durable account and user data access
type AccountRepository interface {
	// FindUserByGoogleSub returns the user for an upstream subject, or
	// domain.ErrUserNotFound
	FindUserByGoogleSub(ctx context.Context, googleSub string) (*domain.User, error)
	// CreateAccountWithUser creates the account and user rows for a first
	// sighting in one transaction. When a concurrent login wins the insert,
	// the winner's row is returned instead.
	CreateAccountWithUser(ctx context.Context, upstream *domain.UpstreamIdentity) (*domain.User, error)
}
