// AngelaMos | 2026
// status.go

package order

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "Pendente"
	StatusPaid      Status = "Pago (Em preparação)"
	StatusDelivered Status = "Entregue"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPaid, StatusDelivered}

// allowedTransitions is the strict lifecycle. Staying in the same status
// is always allowed and not listed. Delivered is terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusDelivered},
	StatusPaid:    {StatusDelivered, StatusPending},
}

func (s Status) Validate() error {
	for _, valid := range Statuses {
		if s == valid {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

// ParseStatus accepts the stored value or a short english alias
// (pending, paid, delivered), case-insensitively.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)

	switch strings.ToLower(trimmed) {
	case "pending", strings.ToLower(string(StatusPending)):
		return StatusPending, nil
	case "paid", "in_preparation", strings.ToLower(string(StatusPaid)):
		return StatusPaid, nil
	case "delivered", strings.ToLower(string(StatusDelivered)):
		return StatusDelivered, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, trimmed)
}

// CanTransition reports whether an order may move from one status to
// another. Without strict checking every edge is allowed.
func CanTransition(from, to Status, strict bool) bool {
	if !strict || from == to {
		return true
	}

	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// timestampColumn is the lifecycle column stamped on entering s, or ""
// when entering s stamps nothing.
func (s Status) timestampColumn() string {
	switch s {
	case StatusPaid:
		return "paid_at"
	case StatusDelivered:
		return "delivered_at"
	default:
		return ""
	}
}

func (s Status) String() string {
	return string(s)
}
