// AngelaMos | 2026
// dto.go

package client

import (
	"time"
)

type CreateClientRequest struct {
	Name  string  `json:"name"  validate:"required,min=1,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateClientRequest struct {
	Name  string  `json:"name"  validate:"required,min=1,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type ClientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func ToClientResponse(c *Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func ToClientResponseList(clients []Client) []ClientResponse {
	responses := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, ToClientResponse(&clients[i]))
	}
	return responses
}
