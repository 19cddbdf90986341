// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/bakery-orders/internal/auth"
	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
)

var (
	ErrUsernameExists   = errors.New("username already exists")
	ErrSelfDelete       = errors.New("an account cannot delete itself")
	ErrBootstrapMissing = errors.New(
		"account store is empty and BOOTSTRAP_USERNAME/BOOTSTRAP_PASSWORD are not set",
	)
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.AccountInfo, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAccountInfo(account), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.AccountInfo, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toAccountInfo(account), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, accountID int64) error {
	return s.repo.IncrementTokenVersion(ctx, accountID)
}

func (s *Service) UpdateCredential(
	ctx context.Context,
	accountID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, accountID, passwordHash)
}

// Create hashes the password and stores a new account. Usernames are
// unique; a clash yields ErrUsernameExists.
func (s *Service) Create(
	ctx context.Context,
	req CreateAccountRequest,
) (*Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("create account: username required: %w", core.ErrInvalidInput)
	}

	if len(req.Password) < core.MinPasswordLength {
		return nil, fmt.Errorf(
			"create account: password shorter than %d: %w",
			core.MinPasswordLength,
			core.ErrInvalidInput,
		)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		Username:     username,
		PasswordHash: passwordHash,
		BakeryName:   core.NilIfBlank(req.BakeryName),
		Email:        core.NilIfBlank(req.Email),
		Privileged:   req.Privileged,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return account, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}

// Delete removes targetID and everything it owns. The requester may not
// delete its own account.
func (s *Service) Delete(ctx context.Context, requesterID, targetID int64) error {
	if requesterID == targetID {
		return fmt.Errorf("delete account: %w", ErrSelfDelete)
	}

	return s.repo.Delete(ctx, targetID)
}

func (s *Service) Totals(ctx context.Context) (*Totals, error) {
	return s.repo.Totals(ctx)
}

// Bootstrap seeds one privileged account when the store is empty. The
// credentials must come from configuration; an empty store without them
// is a startup error.
func (s *Service) Bootstrap(
	ctx context.Context,
	cfg config.BootstrapConfig,
) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	if !cfg.HasBootstrapAccount() {
		return false, ErrBootstrapMissing
	}

	bakeryName := cfg.BakeryName
	email := cfg.Email

	account, err := s.Create(ctx, CreateAccountRequest{
		Username:   cfg.Username,
		Password:   cfg.Password,
		BakeryName: &bakeryName,
		Email:      &email,
		Privileged: true,
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap account: %w", err)
	}

	slog.InfoContext(ctx, "bootstrap account created",
		"account_id", account.ID,
		"username", account.Username,
	)

	return true, nil
}

func toAccountInfo(a *Account) *auth.AccountInfo {
	return &auth.AccountInfo{
		ID:           a.ID,
		Username:     a.Username,
		BakeryName:   a.BakeryName,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Privileged:   a.Privileged,
		TokenVersion: a.TokenVersion,
	}
}

var _ auth.AccountProvider = (*Service)(nil)
