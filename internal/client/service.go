// AngelaMos | 2026
// service.go

package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	accountID int64,
	req CreateClientRequest,
) (*Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("create client: name required: %w", core.ErrInvalidInput)
	}

	client := &Client{
		AccountID: accountID,
		Name:      name,
		Phone:     core.NilIfBlank(req.Phone),
		Notes:     core.NilIfBlank(req.Notes),
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

func (s *Service) Get(ctx context.Context, accountID, clientID int64) (*Client, error) {
	return s.repo.GetByID(ctx, accountID, clientID)
}

func (s *Service) List(ctx context.Context, accountID int64) ([]Client, error) {
	return s.repo.List(ctx, accountID)
}

func (s *Service) Update(
	ctx context.Context,
	accountID, clientID int64,
	req UpdateClientRequest,
) (*Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("update client: name required: %w", core.ErrInvalidInput)
	}

	client := &Client{
		ID:        clientID,
		AccountID: accountID,
		Name:      name,
		Phone:     core.NilIfBlank(req.Phone),
		Notes:     core.NilIfBlank(req.Notes),
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// Delete removes the client together with all of its orders.
func (s *Service) Delete(ctx context.Context, accountID, clientID int64) error {
	return s.repo.Delete(ctx, accountID, clientID)
}
