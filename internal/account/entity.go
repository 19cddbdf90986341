// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Account is a bakery operator's login and the tenant boundary for all
// clients and orders.
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	BakeryName   *string   `db:"bakery_name"`
	Email        *string   `db:"email"`
	Privileged   bool      `db:"is_privileged"`
	TokenVersion int       `db:"token_version"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *Account) IsPrivileged() bool {
	return a.Privileged
}

// Totals counts rows across all tenants.
type Totals struct {
	Accounts int `db:"accounts" json:"accounts"`
	Clients  int `db:"clients"  json:"clients"`
	Orders   int `db:"orders"   json:"orders"`
}
