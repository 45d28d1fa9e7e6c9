package usecase

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"identity-gateway/app/domain"
	mock_port "identity-gateway/app/mocks"
	"identity-gateway/app/utils/logger"
)

func TestStaticTenantResolver_Resolve(t *testing.T) {
	resolver := NewStaticTenantResolver("11111111-1111-1111-1111-111111111111")

	tenantID, isOwner, err := resolver.Resolve(context.Background(), &domain.UpstreamIdentity{
		Subject: "g-1",
		Email:   "user@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", tenantID)
	assert.True(t, isOwner)
}

func TestPersistentTenantResolver_Resolve(t *testing.T) {
	accountID := uuid.New()
	upstream := &domain.UpstreamIdentity{
		Subject: "g-117",
		Email:   "user@example.com",
		Name:    "Test User",
	}
	existingUser := &domain.User{
		ID:        uuid.New(),
		AccountID: accountID,
		Email:     "user@example.com",
		FullName:  "Test User",
		GoogleSub: "g-117",
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name         string
		setupMocks   func(*mock_port.MockAccountRepository)
		wantTenantID string
		expectErr    bool
	}{
		{
			name: "known subject returns existing account",
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().FindUserByGoogleSub(gomock.Any(), "g-117").Return(existingUser, nil)
			},
			wantTenantID: accountID.String(),
		},
		{
			name: "first sighting creates account",
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().FindUserByGoogleSub(gomock.Any(), "g-117").Return(nil, domain.ErrUserNotFound)
				accounts.EXPECT().CreateAccountWithUser(gomock.Any(), upstream).Return(existingUser, nil)
			},
			wantTenantID: accountID.String(),
		},
		{
			name: "lookup failure",
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().FindUserByGoogleSub(gomock.Any(), "g-117").Return(nil, assert.AnError)
			},
			expectErr: true,
		},
		{
			name: "creation failure",
			setupMocks: func(accounts *mock_port.MockAccountRepository) {
				accounts.EXPECT().FindUserByGoogleSub(gomock.Any(), "g-117").Return(nil, domain.ErrUserNotFound)
				accounts.EXPECT().CreateAccountWithUser(gomock.Any(), upstream).Return(nil, assert.AnError)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			accounts := mock_port.NewMockAccountRepository(ctrl)
			tt.setupMocks(accounts)

			var buf bytes.Buffer
			log, err := logger.NewWithWriter("info", &buf)
			require.NoError(t, err)

			resolver := NewPersistentTenantResolver(accounts, log)

			tenantID, isOwner, err := resolver.Resolve(context.Background(), upstream)

			if tt.expectErr {
				assert.Error(t, err)
				assert.Empty(t, tenantID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTenantID, tenantID)
				assert.True(t, isOwner)
			}
		})
	}
}

// racingAccountRepository enforces the google_sub uniqueness constraint the
// way the database does, so concurrent first sightings race for one row.
type racingAccountRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newRacingAccountRepository() *racingAccountRepository {
	return &racingAccountRepository{users: make(map[string]*domain.User)}
}

func (r *racingAccountRepository) FindUserByGoogleSub(_ context.Context, googleSub string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[googleSub]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *racingAccountRepository) CreateAccountWithUser(_ context.Context, upstream *domain.UpstreamIdentity) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A lost race resolves to the winner's row, like the conflict re-read
	if user, ok := r.users[upstream.Subject]; ok {
		return user, nil
	}

	account := domain.NewAccount()
	user, err := domain.NewUser(account.ID, upstream.Email, upstream.Name, upstream.Subject)
	if err != nil {
		return nil, err
	}
	r.users[upstream.Subject] = user
	return user, nil
}

func TestPersistentTenantResolver_ConcurrentFirstSighting(t *testing.T) {
	repo := newRacingAccountRepository()

	var buf bytes.Buffer
	log, err := logger.NewWithWriter("info", &buf)
	require.NoError(t, err)

	resolver := NewPersistentTenantResolver(repo, log)
	upstream := &domain.UpstreamIdentity{
		Subject: "g-racer",
		Email:   "racer@example.com",
		Name:    "Racer",
	}

	const logins = 16
	tenantIDs := make([]string, logins)

	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tenantID, _, resolveErr := resolver.Resolve(context.Background(), upstream)
			assert.NoError(t, resolveErr)
			tenantIDs[n] = tenantID
		}(i)
	}
	wg.Wait()

	// Exactly one user row exists and every login landed in its account
	require.Len(t, repo.users, 1)
	want := repo.users["g-racer"].AccountID.String()
	for _, got := range tenantIDs {
		assert.Equal(t, want, got)
	}
}
