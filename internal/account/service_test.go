// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, a *Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*Account)
	return a, args.Error(1)
}

func (m *mockRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	args := m.Called(ctx, username)
	a, _ := args.Get(0).(*Account)
	return a, args.Error(1)
}

func (m *mockRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) List(ctx context.Context, params ListAccountsParams) ([]Account, int, error) {
	args := m.Called(ctx, params)
	accounts, _ := args.Get(0).([]Account)
	return accounts, args.Int(1), args.Error(2)
}

func (m *mockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) Totals(ctx context.Context) (*Totals, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(*Totals)
	return t, args.Error(1)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)
	ctx := context.Background()

	var stored *Account
	repo.On("Create", ctx, mock.AnythingOfType("*account.Account")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Account) }).
		Return(nil)

	acc, err := svc.Create(ctx, CreateAccountRequest{
		Username: " padaria1 ",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "padaria1", acc.Username)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	ok, err := core.VerifyPassword("secret1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("create account: %w", core.ErrDuplicateKey))

	_, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "padaria1",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateAccountRequest{
		Username: "padaria1",
		Password: "12345",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteRejectsSelf(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), 4, 4)
	assert.ErrorIs(t, err, ErrSelfDelete)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBootstrap(t *testing.T) {
	creds := config.BootstrapConfig{
		Username:   "admin",
		Password:   "change-me",
		BakeryName: "Padaria Central",
	}

	t.Run("non-empty store is left alone", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Count", mock.Anything).Return(2, nil)

		seeded, err := NewService(repo).Bootstrap(context.Background(), config.BootstrapConfig{})
		require.NoError(t, err)
		assert.False(t, seeded)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty store without credentials fails", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Count", mock.Anything).Return(0, nil)

		_, err := NewService(repo).Bootstrap(context.Background(), config.BootstrapConfig{
			Username: "admin",
		})
		assert.ErrorIs(t, err, ErrBootstrapMissing)
	})

	t.Run("empty store seeds one privileged account", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Count", mock.Anything).Return(0, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a *Account) bool {
			return a.Username == "admin" &&
				a.Privileged &&
				a.BakeryName != nil && *a.BakeryName == "Padaria Central" &&
				a.Email == nil
		})).Return(nil).Once()

		seeded, err := NewService(repo).Bootstrap(context.Background(), creds)
		require.NoError(t, err)
		assert.True(t, seeded)
		repo.AssertExpectations(t)
	})
}

func TestAccountInfoCarriesTokenVersion(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	repo.On("GetByID", mock.Anything, int64(9)).Return(&Account{
		ID:           9,
		Username:     "padaria1",
		PasswordHash: "hash",
		Privileged:   true,
		TokenVersion: 3,
	}, nil)

	info, err := svc.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.ID)
	assert.Equal(t, 3, info.TokenVersion)
	assert.True(t, info.Privileged)
}

func TestListAccountsParamsNormalize(t *testing.T) {
	p := ListAccountsParams{Page: 0, PageSize: 1000, Search: "  pad "}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 200, p.PageSize)
	assert.Equal(t, "pad", p.Search)
	assert.Equal(t, 0, p.Offset())

	p = ListAccountsParams{Page: 3, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 100, p.Offset())
}

func TestPasswordTagMatchesMinimum(t *testing.T) {
	field, ok := reflect.TypeOf(CreateAccountRequest{}).FieldByName("Password")
	require.True(t, ok)
	assert.Contains(t, field.Tag.Get("validate"), fmt.Sprintf("min=%d,", core.MinPasswordLength))
}
