package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"identity-gateway/app/domain"
	"identity-gateway/app/port"
)

// StaticTenantResolver places every identity in one fixed tenant. It backs
// the single-tenant deployment where no database is attached.
type StaticTenantResolver struct {
	tenantID string
}

// NewStaticTenantResolver creates a resolver pinned to the given tenant ID
func NewStaticTenantResolver(tenantID string) *StaticTenantResolver {
	return &StaticTenantResolver{tenantID: tenantID}
}

// Resolve returns the fixed tenant. Every member is an owner under this
// policy.
func (r *StaticTenantResolver) Resolve(_ context.Context, _ *domain.UpstreamIdentity) (string, bool, error) {
	return r.tenantID, true, nil
}

// PersistentTenantResolver resolves identities against durable account
// records, creating an account and user on first sighting.
type PersistentTenantResolver struct {
	accounts port.AccountRepository
	logger   *slog.Logger
}

// NewPersistentTenantResolver creates a resolver backed by the account
// repository
func NewPersistentTenantResolver(accounts port.AccountRepository, logger *slog.Logger) *PersistentTenantResolver {
	return &PersistentTenantResolver{
		accounts: accounts,
		logger:   logger,
	}
}

// Resolve looks up the user for the upstream subject, creating an account
// and user on first sighting. Repeat logins for the same subject always
// land in the same account.
func (r *PersistentTenantResolver) Resolve(ctx context.Context, upstream *domain.UpstreamIdentity) (string, bool, error) {
	user, err := r.accounts.FindUserByGoogleSub(ctx, upstream.Subject)
	if err == nil {
		return user.AccountID.String(), true, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return "", false, fmt.Errorf("failed to look up user: %w", err)
	}

	r.logger.Info("first sighting, creating account", "google_sub", upstream.Subject)

	user, err = r.accounts.CreateAccountWithUser(ctx, upstream)
	if err != nil {
		return "", false, fmt.Errorf("failed to create account: %w", err)
	}

	return user.AccountID.String(), true, nil
}
