// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "request_id"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// AccessTokenClaims is what a verified access token says about its bearer.
type AccessTokenClaims struct {
	AccountID    int64
	Privileged   bool
	TokenVersion int
	TokenID      string
	ExpiresAt    time.Time
}

// Principal is the authenticated account of a single request. Every
// tenant scoped operation takes its AccountID from here.
type Principal struct {
	AccountID  int64
	Privileged bool
	TokenID    string
	ExpiresAt  time.Time
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), principalFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())

		if p == nil {
			core.JSONError(
				w,
				core.UnauthorizedError("authentication required"),
			)
			return
		}

		if !p.Privileged {
			core.JSONError(
				w,
				core.ForbiddenError("privileged account required"),
			)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func principalFromClaims(c *AccessTokenClaims) *Principal {
	return &Principal{
		AccountID:  c.AccountID,
		Privileged: c.Privileged,
		TokenID:    c.TokenID,
		ExpiresAt:  c.ExpiresAt,
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

// GetAccountID returns 0 when the request is unauthenticated.
func GetAccountID(ctx context.Context) int64 {
	if p := GetPrincipal(ctx); p != nil {
		return p.AccountID
	}
	return 0
}

func IsPrivileged(ctx context.Context) bool {
	p := GetPrincipal(ctx)
	return p != nil && p.Privileged
}
