// AngelaMos | 2026
// dto.go

package order

import (
	"time"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// MaxPrice is the largest value the NUMERIC(10,2) price column holds.
const MaxPrice = 99999999.99

type CreateOrderRequest struct {
	ClientID int64    `json:"client_id" validate:"required,gt=0"`
	Flavor   string   `json:"flavor"    validate:"required,min=1,max=255"`
	Size     *string  `json:"size"      validate:"omitempty,max=100"`
	Price    *float64 `json:"price"     validate:"omitempty,gte=0,lte=99999999.99"`
	DueDate  string   `json:"due_date"  validate:"required,datetime=2006-01-02"`
	Status   string   `json:"status"    validate:"omitempty,max=100"`
	Notes    *string  `json:"notes"     validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=100"`
}

type OrderResponse struct {
	ID          int64      `json:"id"`
	ClientID    int64      `json:"client_id"`
	ClientName  string     `json:"client_name"`
	Flavor      string     `json:"flavor"`
	Size        *string    `json:"size"`
	Price       *float64   `json:"price"`
	DueDate     string     `json:"due_date"`
	Status      Status     `json:"status"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

type CountsResponse struct {
	ByStatus map[Status]int `json:"by_status"`
	Total    int            `json:"total"`
}

type DashboardResponse struct {
	Counts        CountsResponse  `json:"counts"`
	Pending       []OrderResponse `json:"pending"`
	InPreparation []OrderResponse `json:"in_preparation"`
}

func ToOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		Flavor:      o.Flavor,
		Size:        o.Size,
		Price:       o.Price,
		DueDate:     o.DueDate.Format(DateLayout),
		Status:      o.Status,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		DeliveredAt: o.DeliveredAt,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses
}

func ToCountsResponse(c Counts) CountsResponse {
	return CountsResponse{ByStatus: c.ByStatus, Total: c.Total}
}
