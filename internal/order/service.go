// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/bakery-orders/internal/client"
	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
)

// ClientLookup resolves a client under an account.
type ClientLookup interface {
	Get(ctx context.Context, accountID, clientID int64) (*client.Client, error)
}

type Service struct {
	repo    Repository
	clients ClientLookup
	strict  bool
	now     func() time.Time
}

func NewService(
	repo Repository,
	clients ClientLookup,
	cfg config.OrdersConfig,
) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		strict:  cfg.StrictTransitions,
		now:     time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create stores a new order for a client of the account. Status defaults
// to pending; creating directly as paid or delivered stamps the matching
// timestamp.
func (s *Service) Create(
	ctx context.Context,
	accountID int64,
	req CreateOrderRequest,
) (*Order, error) {
	flavor := strings.TrimSpace(req.Flavor)
	if flavor == "" {
		return nil, fmt.Errorf("create order: flavor required: %w", core.ErrInvalidInput)
	}

	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}

	dueDate, err := time.Parse(DateLayout, strings.TrimSpace(req.DueDate))
	if err != nil {
		return nil, fmt.Errorf("create order: due date %q: %w", req.DueDate, core.ErrInvalidInput)
	}

	status := StatusPending
	if strings.TrimSpace(req.Status) != "" {
		status, err = ParseStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}

	order := &Order{
		AccountID: accountID,
		ClientID:  req.ClientID,
		Flavor:    flavor,
		Size:      core.NilIfBlank(req.Size),
		Price:     req.Price,
		DueDate:   dueDate,
		Status:    status,
		Notes:     core.NilIfBlank(req.Notes),
	}
	order.stamp(status, s.timestamp())

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, accountID, order.ID)
}

// checkPrice rejects prices the price column cannot store exactly: negative,
// above MaxPrice, or with more than two decimal places.
func checkPrice(p float64) error {
	if math.IsNaN(p) || p < 0 || p > MaxPrice {
		return fmt.Errorf("price %v out of range [0, %.2f]: %w", p, MaxPrice, core.ErrInvalidInput)
	}

	text := strconv.FormatFloat(p, 'f', -1, 64)
	if dot := strings.IndexByte(text, '.'); dot >= 0 && len(text)-dot-1 > 2 {
		return fmt.Errorf("price %v has more than two decimals: %w", p, core.ErrInvalidInput)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, accountID, orderID int64) (*Order, error) {
	return s.repo.GetByID(ctx, accountID, orderID)
}

func (s *Service) List(
	ctx context.Context,
	accountID int64,
	filter ListFilter,
) ([]Order, error) {
	return s.repo.List(ctx, accountID, filter)
}

// ListByClient lists the orders of one client. An unknown client, or one
// owned by another account, is core.ErrNotFound rather than an empty list.
func (s *Service) ListByClient(
	ctx context.Context,
	accountID, clientID int64,
) ([]Order, error) {
	if _, err := s.clients.Get(ctx, accountID, clientID); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, accountID, ListFilter{ClientID: &clientID})
}

func (s *Service) Delete(ctx context.Context, accountID, orderID int64) error {
	return s.repo.Delete(ctx, accountID, orderID)
}

// Transition moves an order to a new status and stamps its lifecycle
// timestamp. With strict transitions enabled, edges outside the lifecycle
// fail with ErrInvalidTransition.
func (s *Service) Transition(
	ctx context.Context,
	accountID, orderID int64,
	to Status,
) (*Order, error) {
	ctx, span := core.StartSpan(ctx, "order.Transition",
		attribute.Int64("account.id", accountID),
		attribute.Int64("order.id", orderID),
		attribute.String("order.status.to", to.String()),
	)
	defer span.End()

	if err := to.Validate(); err != nil {
		return nil, err
	}

	var from Status
	guard := func(current Status) error {
		from = current
		if !CanTransition(current, to, s.strict) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
		}
		return nil
	}

	order, err := s.repo.Transition(ctx, accountID, orderID, to, s.timestamp(), guard)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(ctx, err)
		}
		return nil, err
	}

	core.AddSpanEvent(ctx, "order.status_changed",
		attribute.String("order.status.from", from.String()),
	)

	slog.InfoContext(ctx, "order status changed",
		"account_id", accountID,
		"order_id", orderID,
		"from", from,
		"to", to,
	)

	return order, nil
}

func (s *Service) Counts(ctx context.Context, accountID int64) (Counts, error) {
	return s.repo.Counts(ctx, accountID)
}

// Dashboard bundles the per-status counts with the orders still waiting
// for payment and those in preparation.
func (s *Service) Dashboard(
	ctx context.Context,
	accountID int64,
) (*DashboardResponse, error) {
	counts, err := s.repo.Counts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pendingStatus := StatusPending
	pending, err := s.repo.List(ctx, accountID, ListFilter{Status: &pendingStatus})
	if err != nil {
		return nil, err
	}

	paidStatus := StatusPaid
	inPreparation, err := s.repo.List(ctx, accountID, ListFilter{Status: &paidStatus})
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Counts:        ToCountsResponse(counts),
		Pending:       ToOrderResponseList(pending),
		InPreparation: ToOrderResponseList(inPreparation),
	}, nil
}
