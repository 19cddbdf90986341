// AngelaMos | 2026
// repository.go

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

// Repository persists clients. Every method is scoped to one account and
// reports core.ErrNotFound when the client does not exist under it.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, accountID, id int64) (*Client, error)
	List(ctx context.Context, accountID int64) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, accountID, id int64) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const clientColumns = `id, account_id, name, phone, notes, created_at`

func (r *repository) Create(ctx context.Context, client *Client) error {
	query := `
		INSERT INTO clients (account_id, name, phone, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		client.AccountID,
		client.Name,
		client.Phone,
		client.Notes,
	).Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create client: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	accountID, id int64,
) (*Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE id = $1 AND account_id = $2`

	var client Client
	err := r.db.GetContext(ctx, &client, query, id, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &client, nil
}

func (r *repository) List(ctx context.Context, accountID int64) ([]Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE account_id = $1
		ORDER BY name ASC, id ASC`

	clients := []Client{}
	if err := r.db.SelectContext(ctx, &clients, query, accountID); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	return clients, nil
}

func (r *repository) Update(ctx context.Context, client *Client) error {
	query := `
		UPDATE clients
		SET name = $3, phone = $4, notes = $5
		WHERE id = $1 AND account_id = $2
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		client.ID,
		client.AccountID,
		client.Name,
		client.Phone,
		client.Notes,
	).Scan(&client.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update client: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	return nil
}

// Delete removes the client's orders and then the client in one
// transaction.
func (r *repository) Delete(ctx context.Context, accountID, id int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM orders WHERE client_id = $1 AND account_id = $2`,
			id, accountID); err != nil {
			return fmt.Errorf("delete client orders: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM clients WHERE id = $1 AND account_id = $2`,
			id, accountID)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}

		return core.RequireAffected(result, "delete client")
	})
}
