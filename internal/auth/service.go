// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/bakery-orders/internal/core"
	"github.com/carterperez-dev/bakery-orders/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

// AccountInfo is the slice of an account the auth flow needs.
type AccountInfo struct {
	ID           int64
	Username     string
	BakeryName   *string
	Email        *string
	PasswordHash string
	Privileged   bool
	TokenVersion int
}

type AccountProvider interface {
	GetByUsername(ctx context.Context, username string) (*AccountInfo, error)
	GetByID(ctx context.Context, id int64) (*AccountInfo, error)
	IncrementTokenVersion(ctx context.Context, accountID int64) error
	UpdateCredential(ctx context.Context, accountID int64, passwordHash string) error
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	accounts  AccountProvider
	blacklist Blacklist
	now       func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	accounts AccountProvider,
	blacklist Blacklist,
) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		accounts:  accounts,
		blacklist: blacklist,
		now:       time.Now,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&account.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.accounts.UpdateCredential(ctx, account.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"account_id", account.ID,
				"error", err,
			)
		}
	}

	return s.createAuthResponse(ctx, account, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		if err := s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID); err != nil {
			slog.ErrorContext(ctx, "revoke token family failed",
				"family_id", storedToken.FamilyID,
				"error", err,
			)
		}
		return nil, ErrTokenReuse
	}

	if !storedToken.UsableAt(s.now()) {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	account, err := s.accounts.GetByID(ctx, storedToken.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		account,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

// Logout revokes the presented refresh token and blacklists the access
// token the request was made with.
func (s *Service) Logout(
	ctx context.Context,
	principal *middleware.Principal,
	refreshToken string,
) error {
	if principal == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if refreshToken == "" {
		return nil
	}

	storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.AccountID != principal.AccountID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// LogoutAll revokes every refresh token of the account and bumps its token
// version, which invalidates all access tokens issued so far.
func (s *Service) LogoutAll(ctx context.Context, accountID int64) error {
	if err := s.repo.RevokeAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.accounts.IncrementTokenVersion(ctx, accountID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

// VerifyAccessToken implements middleware.TokenVerifier. Beyond the
// signature it rejects blacklisted tokens and tokens minted before the
// account's current token version. The privileged flag is taken from the
// stored account, not from the token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < account.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Privileged = account.Privileged
	return claims, nil
}

// ChangePassword replaces the caller's own credential after checking the
// current one, then ends every session of the account.
func (s *Service) ChangePassword(
	ctx context.Context,
	accountID int64,
	currentPassword, newPassword string,
) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	if len(newPassword) < core.MinPasswordLength {
		return fmt.Errorf("change password: %w", core.ErrInvalidInput)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdateCredential(ctx, accountID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, accountID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentAccount(
	ctx context.Context,
	accountID int64,
) (*AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := toAccountResponse(account)
	return &resp, nil
}

// PurgeExpiredTokens deletes refresh tokens past their expiry by more than
// the grace period. Used by the scheduled cleanup job.
func (s *Service) PurgeExpiredTokens(
	ctx context.Context,
	grace time.Duration,
) (int64, error) {
	return s.repo.DeleteExpired(ctx, grace)
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	account *AccountInfo,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		AccountID:    account.ID,
		Privileged:   account.Privileged,
		TokenVersion: account.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		AccountID: account.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		if err := s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID); err != nil {
			slog.WarnContext(ctx, "mark refresh token used failed",
				"token_id", *oldTokenID,
				"error", err,
			)
		}
	}

	return &AuthResponse{
		Account: toAccountResponse(account),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(time.Until(access.ExpiresAt).Seconds()),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}

func toAccountResponse(a *AccountInfo) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Username:   a.Username,
		BakeryName: a.BakeryName,
		Email:      a.Email,
		Privileged: a.Privileged,
	}
}
