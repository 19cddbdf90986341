// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
	seen   string
}

func (s *stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		w.Header().Set("X-Account", fmt.Sprint(p.AccountID))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorMissingToken(t *testing.T) {
	h := Authenticator(&stubVerifier{})(principalEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestAuthenticatorMapsVerifierErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"expired": {fmt.Errorf("verify: %w", core.ErrTokenExpired), "TOKEN_EXPIRED"},
		"revoked": {fmt.Errorf("verify: %w", core.ErrTokenRevoked), "TOKEN_REVOKED"},
		"garbage": {fmt.Errorf("parse: boom"), "TOKEN_INVALID"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := Authenticator(&stubVerifier{err: tc.err})(principalEcho())

			req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestAuthenticatorInjectsPrincipal(t *testing.T) {
	verifier := &stubVerifier{claims: &AccessTokenClaims{
		AccountID: 42,
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Minute),
	}}
	h := Authenticator(verifier)(principalEcho())

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "bearer  tok-123 ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-Account"))
	assert.Equal(t, "tok-123", verifier.seen)
}

func TestRequirePrivileged(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequirePrivileged(ok)

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("regular account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{AccountID: 3}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("privileged account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
		req = req.WithContext(WithPrincipal(req.Context(),
			&Principal{AccountID: 1, Privileged: true}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"Bearer":        "",
		"Basic abc":     "",
		"Bearer abc":    "abc",
		"BEARER xyz  ":  "xyz",
	}

	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, ExtractToken(req), "header %q", header)
	}
}

func TestPrincipalHelpersWithoutPrincipal(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetPrincipal(ctx))
	assert.Zero(t, GetAccountID(ctx))
	assert.False(t, IsPrivileged(ctx))
}
