// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListAccountsParams) ([]Account, int, error)
	Count(ctx context.Context) (int, error)
	Totals(ctx context.Context) (*Totals, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const accountColumns = `
	id, username, password_hash, bakery_name, email, is_privileged,
	token_version, created_at`

func (r *repository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (username, password_hash, bakery_name, email, is_privileged)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, token_version, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		account.Username,
		account.PasswordHash,
		account.BakeryName,
		account.Email,
		account.Privileged,
	)

	err := row.Scan(&account.ID, &account.TokenVersion, &account.CreatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `SELECT` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	var account Account
	err := r.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*Account, error) {
	query := `SELECT` + accountColumns + `
		FROM accounts
		WHERE username = $1`

	var account Account
	err := r.db.GetContext(ctx, &account, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}

	return &account, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE accounts
		SET password_hash = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return core.RequireAffected(result, "update password")
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id int64) error {
	query := `
		UPDATE accounts
		SET token_version = token_version + 1
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return core.RequireAffected(result, "increment token version")
}

// Delete removes the account with everything it owns. Orders go first,
// then clients, then sessions, then the account row, all in one
// transaction so a failure leaves no orphans.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM orders WHERE account_id = $1`, id); err != nil {
			return fmt.Errorf("delete account orders: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM clients WHERE account_id = $1`, id); err != nil {
			return fmt.Errorf("delete account clients: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM refresh_tokens WHERE account_id = $1`, id); err != nil {
			return fmt.Errorf("delete account sessions: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}

		return core.RequireAffected(result, "delete account")
	})
}

func (r *repository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	params.Normalize()

	where := "TRUE"
	var args []any
	argIdx := 1

	if params.Search != "" {
		where = fmt.Sprintf(
			"(username ILIKE $%d OR bakery_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM accounts WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`SELECT`+accountColumns+`
		FROM accounts
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	accounts := []Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM accounts) AS accounts,
			(SELECT COUNT(*) FROM clients)  AS clients,
			(SELECT COUNT(*) FROM orders)   AS orders`

	var totals Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}

	return &totals, nil
}
