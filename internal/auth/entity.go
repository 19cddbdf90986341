// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is the stored half of a session. Only the sha256 of the
// token string is persisted; tokens issued by rotation share a FamilyID.
type RefreshToken struct {
	ID           string     `db:"id"`
	AccountID    int64      `db:"account_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// UsableAt reports whether the token may still be exchanged at now.
func (t *RefreshToken) UsableAt(now time.Time) bool {
	return !t.ExpiredAt(now) && !t.IsRevoked() && !t.IsUsed
}
