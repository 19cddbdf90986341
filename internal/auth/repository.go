// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

// Repository stores refresh tokens. Tokens are looked up by hash only;
// the plain token string never reaches the database.
type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, id, replacedByID string) error
	RevokeByID(ctx context.Context, id string) error
	RevokeByFamilyID(ctx context.Context, familyID string) error
	RevokeAllForAccount(ctx context.Context, accountID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const tokenColumns = `
	id, account_id, token_hash, family_id, expires_at, created_at,
	is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address`

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	err := r.db.GetContext(ctx, &token.CreatedAt, `
		INSERT INTO refresh_tokens
			(id, account_id, token_hash, family_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		token.ID,
		token.AccountID,
		token.TokenHash,
		token.FamilyID,
		token.ExpiresAt,
		token.UserAgent,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("store refresh token for account %d: %w", token.AccountID, err)
	}

	return nil
}

func (r *repository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	var token RefreshToken
	err := r.db.GetContext(ctx, &token,
		`SELECT`+tokenColumns+` FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup refresh token: %w", core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	return &token, nil
}

// MarkAsUsed records the rotation of id into replacedByID. A token can be
// rotated once; a second attempt matches no row.
func (r *repository) MarkAsUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET is_used = true, used_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND NOT is_used`,
		id, replacedByID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	return core.RequireAffected(result, "rotate refresh token")
}

func (r *repository) RevokeByID(ctx context.Context, id string) error {
	n, err := r.revoke(ctx, "id = $1", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("revoke refresh token: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByFamilyID(ctx context.Context, familyID string) error {
	_, err := r.revoke(ctx, "family_id = $1", familyID)
	return err
}

func (r *repository) RevokeAllForAccount(ctx context.Context, accountID int64) error {
	_, err := r.revoke(ctx, "account_id = $1", accountID)
	return err
}

// revoke stamps revoked_at on every live token matching where, which must
// reference its single argument as $1.
func (r *repository) revoke(ctx context.Context, where string, arg any) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE revoked_at IS NULL AND `+where,
		arg)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens where %s: %w", where, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	return n, nil
}

// DeleteExpired removes tokens that expired more than olderThan ago. The
// grace period keeps recently expired rows around for reuse detection.
func (r *repository) DeleteExpired(
	ctx context.Context,
	olderThan time.Duration,
) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge expired refresh tokens: %w", err)
	}

	return result.RowsAffected()
}
