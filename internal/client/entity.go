// AngelaMos | 2026
// entity.go

package client

import (
	"time"
)

// Client is a customer in one account's address book.
type Client struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Name      string    `db:"name"`
	Phone     *string   `db:"phone"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
}
