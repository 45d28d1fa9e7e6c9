package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"identity-gateway/app/domain"
)

// uniqueViolation is the postgres error code raised when an insert loses a
// uniqueness race.
const uniqueViolation = "23505"

// AccountRepository implements port.AccountRepository for PostgreSQL
type AccountRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db DatabaseIface, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger.With("component", "account_repository"),
	}
}

// FindUserByGoogleSub retrieves the user recorded for an upstream subject
func (r *AccountRepository) FindUserByGoogleSub(ctx context.Context, googleSub string) (*domain.User, error) {
	query := `
		SELECT user_id, account_id, email, full_name, google_sub, created_at
		FROM users WHERE google_sub = $1`

	var user domain.User
	err := r.db.QueryRow(ctx, query, googleSub).Scan(
		&user.ID,
		&user.AccountID,
		&user.Email,
		&user.FullName,
		&user.GoogleSub,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("Failed to find user", "google_sub", googleSub, "error", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// CreateAccountWithUser records a first-sighted subject: one account row and
// one user row, inserted in a single transaction. When a concurrent login
// wins the race, the users.google_sub uniqueness constraint rejects this
// insert only after the winner has committed, so the follow-up read always
// sees the winner's row.
func (r *AccountRepository) CreateAccountWithUser(ctx context.Context, upstream *domain.UpstreamIdentity) (*domain.User, error) {
	account := domain.NewAccount()
	user, err := domain.NewUser(account.ID, upstream.Email, upstream.Name, upstream.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid user data: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	accountQuery := `INSERT INTO accounts (account_id, created_at) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, accountQuery, account.ID, account.CreatedAt); err != nil {
		return r.recoverFromConflict(ctx, tx, upstream.Subject, err)
	}

	userQuery := `
		INSERT INTO users (user_id, account_id, email, full_name, google_sub, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, userQuery,
		user.ID,
		user.AccountID,
		user.Email,
		user.FullName,
		user.GoogleSub,
		user.CreatedAt,
	); err != nil {
		return r.recoverFromConflict(ctx, tx, upstream.Subject, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit first sighting: %w", err)
	}

	r.logger.Info("First sighting recorded",
		"user_id", user.ID,
		"account_id", account.ID,
		"google_sub", user.GoogleSub)

	return user, nil
}

// recoverFromConflict resolves a lost insert race by returning the winner's
// row. Non-conflict errors pass through unchanged.
func (r *AccountRepository) recoverFromConflict(ctx context.Context, tx pgx.Tx, googleSub string, cause error) (*domain.User, error) {
	if !isUniqueViolation(cause) {
		r.logger.Error("Failed to record first sighting", "google_sub", googleSub, "error", cause)
		return nil, fmt.Errorf("failed to record first sighting: %w", cause)
	}

	_ = tx.Rollback(ctx)

	r.logger.Debug("First sighting lost insert race, re-reading", "google_sub", googleSub)

	user, err := r.FindUserByGoogleSub(ctx, googleSub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The conflict was on another column (e.g. email already taken
			// by a different subject), not on this subject's row.
			return nil, fmt.Errorf("%w: %v", domain.ErrUserAlreadyExists, cause)
		}
		return nil, err
	}

	return user, nil
}

// isUniqueViolation reports whether err is a postgres uniqueness conflict
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
