// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bakery-orders/internal/client"
	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, accountID, id int64) (*Order, error) {
	args := m.Called(ctx, accountID, id)
	o, _ := args.Get(0).(*Order)
	return o, args.Error(1)
}

func (m *mockRepository) List(
	ctx context.Context,
	accountID int64,
	filter ListFilter,
) ([]Order, error) {
	args := m.Called(ctx, accountID, filter)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, accountID, id int64) error {
	args := m.Called(ctx, accountID, id)
	return args.Error(0)
}

// Transition hands the stored "from" status to the guard the way the real
// repository does, so guard logic is exercised.
func (m *mockRepository) Transition(
	ctx context.Context,
	accountID, id int64,
	to Status,
	at time.Time,
	guard GuardFunc,
) (*Order, error) {
	args := m.Called(ctx, accountID, id, to, at)
	if from, ok := args.Get(0).(Status); ok && guard != nil {
		if err := guard(from); err != nil {
			return nil, err
		}
	}
	o, _ := args.Get(1).(*Order)
	return o, args.Error(2)
}

func (m *mockRepository) Counts(ctx context.Context, accountID int64) (Counts, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(Counts), args.Error(1)
}

type mockClients struct {
	mock.Mock
}

func (m *mockClients) Get(ctx context.Context, accountID, clientID int64) (*client.Client, error) {
	args := m.Called(ctx, accountID, clientID)
	c, _ := args.Get(0).(*client.Client)
	return c, args.Error(1)
}

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 123456789, time.UTC)

func newTestService(strict bool) (*Service, *mockRepository, *mockClients) {
	repo := &mockRepository{}
	clients := &mockClients{}
	svc := NewService(repo, clients, config.OrdersConfig{StrictTransitions: strict})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, clients
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc, repo, _ := newTestService(true)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool {
		return o.Status == StatusPending &&
			o.PaidAt == nil &&
			o.DeliveredAt == nil &&
			o.Flavor == "Chocolate" &&
			o.AccountID == 7 &&
			o.DueDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Order).ID = 42
	}).Return(nil)
	repo.On("GetByID", ctx, int64(7), int64(42)).
		Return(&Order{ID: 42, Status: StatusPending}, nil)

	o, err := svc.Create(ctx, 7, CreateOrderRequest{
		ClientID: 3,
		Flavor:   " Chocolate ",
		DueDate:  "2024-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), o.ID)
	repo.AssertExpectations(t)
}

func TestCreateAsPaidStampsPaidAt(t *testing.T) {
	svc, repo, _ := newTestService(true)
	ctx := context.Background()

	want := fixedNow.Truncate(time.Microsecond)
	repo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool {
		return o.Status == StatusPaid &&
			o.PaidAt != nil && o.PaidAt.Equal(want) &&
			o.DeliveredAt == nil
	})).Return(nil)
	repo.On("GetByID", ctx, int64(1), mock.Anything).Return(&Order{}, nil)

	_, err := svc.Create(ctx, 1, CreateOrderRequest{
		ClientID: 1,
		Flavor:   "Morango",
		DueDate:  "2024-06-01",
		Status:   "Pago (Em preparação)",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, repo, _ := newTestService(true)
	negative := -1.0
	huge := 1e12
	aboveMax := 100000000.0
	fractional := 12.345

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"blank flavor", CreateOrderRequest{ClientID: 1, Flavor: "  ", DueDate: "2024-06-01"}, core.ErrInvalidInput},
		{"negative price", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "2024-06-01", Price: &negative}, core.ErrInvalidInput},
		{"price overflows column", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "2024-06-01", Price: &huge}, core.ErrInvalidInput},
		{"price just above max", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "2024-06-01", Price: &aboveMax}, core.ErrInvalidInput},
		{"price with three decimals", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "2024-06-01", Price: &fractional}, core.ErrInvalidInput},
		{"bad date", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "01/06/2024"}, core.ErrInvalidInput},
		{"bad status", CreateOrderRequest{ClientID: 1, Flavor: "A", DueDate: "2024-06-01", Status: "Cancelado"}, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransitionRejectsInvalidEdgeWhenStrict(t *testing.T) {
	svc, repo, _ := newTestService(true)

	repo.On("Transition", mock.Anything, int64(1), int64(9), StatusPending, mock.Anything).
		Return(StatusDelivered, nil, nil)

	_, err := svc.Transition(context.Background(), 1, 9, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionAllowsAnyEdgeWhenLenient(t *testing.T) {
	svc, repo, _ := newTestService(false)

	updated := &Order{ID: 9, Status: StatusPending}
	repo.On("Transition", mock.Anything, int64(1), int64(9), StatusPending, mock.Anything).
		Return(StatusDelivered, updated, nil)

	got, err := svc.Transition(context.Background(), 1, 9, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestTransitionPassesTruncatedTimestamp(t *testing.T) {
	svc, repo, _ := newTestService(true)

	repo.On("Transition", mock.Anything, int64(1), int64(9), StatusPaid,
		fixedNow.Truncate(time.Microsecond)).
		Return(StatusPending, &Order{ID: 9}, nil)

	_, err := svc.Transition(context.Background(), 1, 9, StatusPaid)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTransitionNotFound(t *testing.T) {
	svc, repo, _ := newTestService(true)

	repo.On("Transition", mock.Anything, int64(2), int64(9), StatusPaid, mock.Anything).
		Return(nil, nil, fmt.Errorf("get order: %w", core.ErrNotFound))

	_, err := svc.Transition(context.Background(), 2, 9, StatusPaid)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc, repo, _ := newTestService(true)

	_, err := svc.Transition(context.Background(), 1, 9, Status("Cancelado"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "Transition")
}

func TestListByClientChecksOwnership(t *testing.T) {
	svc, repo, clients := newTestService(true)
	ctx := context.Background()

	clients.On("Get", ctx, int64(1), int64(5)).
		Return(nil, fmt.Errorf("get client: %w", core.ErrNotFound))

	_, err := svc.ListByClient(ctx, 1, 5)
	assert.ErrorIs(t, err, core.ErrNotFound)
	repo.AssertNotCalled(t, "List")
}

func TestListByClientFiltersByClient(t *testing.T) {
	svc, repo, clients := newTestService(true)
	ctx := context.Background()

	clients.On("Get", ctx, int64(1), int64(5)).Return(&client.Client{ID: 5}, nil)
	repo.On("List", ctx, int64(1), mock.MatchedBy(func(f ListFilter) bool {
		return f.ClientID != nil && *f.ClientID == 5 && f.Status == nil
	})).Return([]Order{{ID: 1}, {ID: 2}}, nil)

	orders, err := svc.ListByClient(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestNewCountsHasEveryStatus(t *testing.T) {
	counts := newCounts()

	assert.Len(t, counts.ByStatus, 3)
	for _, s := range Statuses {
		n, ok := counts.ByStatus[s]
		assert.True(t, ok)
		assert.Zero(t, n)
	}
}

func TestCheckPriceAcceptsStorableValues(t *testing.T) {
	for _, p := range []float64{0, 0.5, 12.34, 45.9, MaxPrice} {
		assert.NoError(t, checkPrice(p), "price %v", p)
	}
}

func TestCreateAcceptsMaxPrice(t *testing.T) {
	svc, repo, _ := newTestService(true)
	price := MaxPrice

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *Order) bool {
		return o.Price != nil && *o.Price == MaxPrice
	})).Return(nil).Once()
	repo.On("GetByID", mock.Anything, int64(1), mock.Anything).
		Return(&Order{ID: 1, Price: &price}, nil).Once()

	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		ClientID: 1, Flavor: "Chocolate", DueDate: "2024-06-01", Price: &price,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
