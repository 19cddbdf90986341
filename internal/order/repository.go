// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

// GuardFunc decides whether an order in status from may move on. A non-nil
// error aborts the transition.
type GuardFunc func(from Status) error

// Repository persists orders. Reads and writes are scoped to one account;
// a miss under that account is core.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, accountID, id int64) (*Order, error)
	List(ctx context.Context, accountID int64, filter ListFilter) ([]Order, error)
	Delete(ctx context.Context, accountID, id int64) error
	Transition(
		ctx context.Context,
		accountID, id int64,
		to Status,
		at time.Time,
		guard GuardFunc,
	) (*Order, error)
	Counts(ctx context.Context, accountID int64) (Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT o.id, o.account_id, o.client_id, c.name AS client_name,
		o.flavor, o.size, o.price, o.due_date, o.status, o.notes,
		o.created_at, o.paid_at, o.delivered_at
	FROM orders o
	JOIN clients c ON c.id = o.client_id`

// Create inserts the order only when its client belongs to the same
// account; otherwise it reports the client as not found.
func (r *repository) Create(ctx context.Context, order *Order) error {
	query := `
		INSERT INTO orders (
			account_id, client_id, flavor, size, price, due_date,
			status, notes, paid_at, delivered_at
		)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $8, $9, $10
		FROM clients c
		WHERE c.id = $2 AND c.account_id = $1
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		order.AccountID,
		order.ClientID,
		order.Flavor,
		order.Size,
		order.Price,
		order.DueDate,
		string(order.Status),
		order.Notes,
		order.PaidAt,
		order.DeliveredAt,
	).Scan(&order.ID, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create order: client %d: %w", order.ClientID, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	accountID, id int64,
) (*Order, error) {
	return getOrder(ctx, r.db, accountID, id, false)
}

func getOrder(
	ctx context.Context,
	q sqlx.QueryerContext,
	accountID, id int64,
	forUpdate bool,
) (*Order, error) {
	query := orderSelect + `
		WHERE o.id = $1 AND o.account_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF o`
	}

	var order Order
	err := sqlx.GetContext(ctx, q, &order, query, id, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

func (r *repository) List(
	ctx context.Context,
	accountID int64,
	filter ListFilter,
) ([]Order, error) {
	conditions := []string{"o.account_id = $1"}
	args := []any{accountID}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("o.client_id = $%d", len(args)))
	}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}

	query := orderSelect + `
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY o.due_date ASC, o.created_at DESC, o.id DESC`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

func (r *repository) Delete(ctx context.Context, accountID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND account_id = $2`,
		id, accountID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	return core.RequireAffected(result, "delete order")
}

// Transition locks the order row, asks guard about the current status and
// then writes the new status. paid_at or delivered_at is stamped only when
// the status actually changes into Paid or Delivered; repeating the
// current status keeps the recorded time. Timestamps are never cleared.
func (r *repository) Transition(
	ctx context.Context,
	accountID, id int64,
	to Status,
	at time.Time,
	guard GuardFunc,
) (*Order, error) {
	var updated *Order

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getOrder(ctx, tx, accountID, id, true)
		if err != nil {
			return err
		}

		if guard != nil {
			if err := guard(current.Status); err != nil {
				return err
			}
		}

		entering := current.Status != to

		set := "status = $3"
		args := []any{id, accountID, string(to)}
		if column := to.timestampColumn(); column != "" && entering {
			set += ", " + column + " = $4"
			args = append(args, at)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET `+set+` WHERE id = $1 AND account_id = $2`,
			args...)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		if err := core.RequireAffected(result, "update order status"); err != nil {
			return err
		}

		if entering {
			current.Status = to
			current.stamp(to, at)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *repository) Counts(ctx context.Context, accountID int64) (Counts, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	err := r.db.SelectContext(ctx, &rows, `
		SELECT status, COUNT(*) AS count
		FROM orders
		WHERE account_id = $1
		GROUP BY status`, accountID)
	if err != nil {
		return Counts{}, fmt.Errorf("count orders: %w", err)
	}

	counts := newCounts()
	for _, row := range rows {
		counts.ByStatus[Status(row.Status)] += row.Count
		counts.Total += row.Count
	}

	return counts, nil
}
