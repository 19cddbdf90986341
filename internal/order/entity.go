// AngelaMos | 2026
// entity.go

package order

import (
	"time"
)

// Order is a cake order. AccountID always equals the owning client's
// account.
type Order struct {
	ID          int64      `db:"id"`
	AccountID   int64      `db:"account_id"`
	ClientID    int64      `db:"client_id"`
	ClientName  string     `db:"client_name"`
	Flavor      string     `db:"flavor"`
	Size        *string    `db:"size"`
	Price       *float64   `db:"price"`
	DueDate     time.Time  `db:"due_date"`
	Status      Status     `db:"status"`
	Notes       *string    `db:"notes"`
	CreatedAt   time.Time  `db:"created_at"`
	PaidAt      *time.Time `db:"paid_at"`
	DeliveredAt *time.Time `db:"delivered_at"`
}

// stamp sets the lifecycle timestamp that entering status records.
func (o *Order) stamp(status Status, at time.Time) {
	switch status.timestampColumn() {
	case "paid_at":
		o.PaidAt = &at
	case "delivered_at":
		o.DeliveredAt = &at
	}
}

// ListFilter narrows an order listing. Nil fields do not filter.
type ListFilter struct {
	ClientID *int64
	Status   *Status
}

// Counts holds the number of orders per status. Every status has an entry.
type Counts struct {
	ByStatus map[Status]int
	Total    int
}

func newCounts() Counts {
	byStatus := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		byStatus[s] = 0
	}
	return Counts{ByStatus: byStatus}
}
