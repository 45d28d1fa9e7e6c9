package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identity-gateway/app/domain"
	"identity-gateway/app/utils/logger"
)

// Helper function to create a test account repository with mocked database
func createTestAccountRepository(t *testing.T) (*AccountRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)

	testLogger, err := logger.New("debug")
	require.NoError(t, err)

	repo := NewAccountRepository(mockDB, testLogger)

	return repo, mockDB
}

func userColumns() []string {
	return []string{"user_id", "account_id", "email", "full_name", "google_sub", "created_at"}
}

func TestAccountRepository_FindUserByGoogleSub(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	createdAt := time.Now()

	tests := []struct {
		name      string
		googleSub string
		setupDB   func(pgxmock.PgxPoolIface)
		wantErr   error
		wantUser  bool
	}{
		{
			name:      "user found",
			googleSub: "g-1",
			setupDB: func(mockDB pgxmock.PgxPoolIface) {
				mockDB.ExpectQuery("SELECT user_id, account_id, email, full_name, google_sub, created_at").
					WithArgs("g-1").
					WillReturnRows(pgxmock.NewRows(userColumns()).
						AddRow(userID, accountID, "test@example.com", "Test User", "g-1", createdAt))
			},
			wantUser: true,
		},
		{
			name:      "user not found",
			googleSub: "g-unknown",
			setupDB: func(mockDB pgxmock.PgxPoolIface) {
				mockDB.ExpectQuery("SELECT user_id, account_id, email, full_name, google_sub, created_at").
					WithArgs("g-unknown").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:      "database error",
			googleSub: "g-1",
			setupDB: func(mockDB pgxmock.PgxPoolIface) {
				mockDB.ExpectQuery("SELECT user_id, account_id, email, full_name, google_sub, created_at").
					WithArgs("g-1").
					WillReturnError(assert.AnError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mockDB := createTestAccountRepository(t)
			defer mockDB.Close()

			tt.setupDB(mockDB)

			user, err := repo.FindUserByGoogleSub(context.Background(), tt.googleSub)

			if tt.wantUser {
				require.NoError(t, err)
				assert.Equal(t, userID, user.ID)
				assert.Equal(t, accountID, user.AccountID)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, "g-1", user.GoogleSub)
			} else {
				require.Error(t, err)
				assert.Nil(t, user)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}

			assert.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_CreateAccountWithUser(t *testing.T) {
	upstream := &domain.UpstreamIdentity{
		Subject: "g-new",
		Email:   "new@example.com",
		Name:    "New User",
	}

	t.Run("successful first sighting", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO accounts").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "new@example.com", "New User", "g-new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectCommit()

		user, err := repo.CreateAccountWithUser(context.Background(), upstream)

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "New User", user.FullName)
		assert.Equal(t, "g-new", user.GoogleSub)
		assert.NotEqual(t, uuid.UUID{}, user.ID)
		assert.NotEqual(t, uuid.UUID{}, user.AccountID)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("lost insert race returns winner row", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		winnerID := uuid.New()
		winnerAccountID := uuid.New()

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO accounts").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "new@example.com", "New User", "g-new", pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_google_sub_key"})
		mockDB.ExpectRollback()
		mockDB.ExpectQuery("SELECT user_id, account_id, email, full_name, google_sub, created_at").
			WithArgs("g-new").
			WillReturnRows(pgxmock.NewRows(userColumns()).
				AddRow(winnerID, winnerAccountID, "new@example.com", "New User", "g-new", time.Now()))

		user, err := repo.CreateAccountWithUser(context.Background(), upstream)

		require.NoError(t, err)
		assert.Equal(t, winnerID, user.ID)
		assert.Equal(t, winnerAccountID, user.AccountID)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("conflict on another column surfaces already-exists", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO accounts").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDB.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "new@example.com", "New User", "g-new", pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		mockDB.ExpectRollback()
		mockDB.ExpectQuery("SELECT user_id, account_id, email, full_name, google_sub, created_at").
			WithArgs("g-new").
			WillReturnError(pgx.ErrNoRows)

		user, err := repo.CreateAccountWithUser(context.Background(), upstream)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("non-conflict insert error passes through", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO accounts").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(assert.AnError)
		mockDB.ExpectRollback()

		user, err := repo.CreateAccountWithUser(context.Background(), upstream)

		assert.Nil(t, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("begin failure", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		mockDB.ExpectBegin().WillReturnError(assert.AnError)

		user, err := repo.CreateAccountWithUser(context.Background(), upstream)

		assert.Nil(t, user)
		assert.Error(t, err)
	})

	t.Run("incomplete upstream identity is rejected before any write", func(t *testing.T) {
		repo, mockDB := createTestAccountRepository(t)
		defer mockDB.Close()

		user, err := repo.CreateAccountWithUser(context.Background(), &domain.UpstreamIdentity{
			Subject: "g-new",
			Email:   "",
		})

		assert.Nil(t, user)
		assert.Error(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
