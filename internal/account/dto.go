// AngelaMos | 2026
// dto.go

package account

import (
	"strings"
	"time"
)

type CreateAccountRequest struct {
	Username   string  `json:"username"      validate:"required,min=1,max=255"`
	Password   string  `json:"password"      validate:"required,min=6,max=128"`
	BakeryName *string `json:"bakery_name"   validate:"omitempty,max=255"`
	Email      *string `json:"email"         validate:"omitempty,email,max=255"`
	Privileged bool    `json:"is_privileged"`
}

type AccountResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	BakeryName *string   `json:"bakery_name"`
	Email      *string   `json:"email"`
	Privileged bool      `json:"is_privileged"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListAccountsParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (p *ListAccountsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
	p.Search = strings.TrimSpace(p.Search)
}

func (p *ListAccountsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Username:   a.Username,
		BakeryName: a.BakeryName,
		Email:      a.Email,
		Privileged: a.Privileged,
		CreatedAt:  a.CreatedAt,
	}
}

func ToAccountResponseList(accounts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToAccountResponse(&accounts[i]))
	}
	return responses
}
