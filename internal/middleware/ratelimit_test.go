// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	assert.Equal(t, "ratelimit:ip:10.0.0.5", KeyByIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.9")
	assert.Equal(t, "ratelimit:ip:192.168.1.9", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))
}

func TestKeyByAccount(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	assert.Equal(t, "ratelimit:ip:10.0.0.5", KeyByAccount(req))

	req = req.WithContext(WithPrincipal(req.Context(), &Principal{AccountID: 12}))
	assert.Equal(t, "ratelimit:account:12", KeyByAccount(req))
}

func TestKeyByAccountAndEndpointNormalizesIDs(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "/v1/orders/17/status", nil)
	b := httptest.NewRequest(http.MethodGet, "/v1/orders/912/status", nil)
	a = a.WithContext(WithPrincipal(a.Context(), &Principal{AccountID: 1}))
	b = b.WithContext(WithPrincipal(b.Context(), &Principal{AccountID: 1}))

	assert.Equal(t, KeyByAccountAndEndpoint(a), KeyByAccountAndEndpoint(b))
	assert.Equal(t,
		"ratelimit:account:1:endpoint:/v1/orders/{id}/status",
		KeyByAccountAndEndpoint(a),
	)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/v1/auth/login", normalizeEndpoint("/v1/auth/login"))
	assert.Equal(t,
		"/v1/clients/{id}",
		normalizeEndpoint("/v1/clients/3f0e4a1c-8d2b-4e6f-9a7c-1b2d3e4f5a6b"),
	)
}

func TestPerMinute(t *testing.T) {
	l := PerMinute(10, 5)
	assert.Equal(t, 10, l.Rate)
	assert.Equal(t, 5, l.Burst)
}

func TestLocalLimiterExhaustsBurst(t *testing.T) {
	l := &localLimiter{}
	limit := PerMinute(1, 2)

	assert.Equal(t, 1, l.allow("k", limit).Allowed)
	assert.Equal(t, 1, l.allow("k", limit).Allowed)

	third := l.allow("k", limit)
	assert.Equal(t, 0, third.Allowed)
	assert.Equal(t, 0, third.Remaining)
	assert.Equal(t, time.Minute, third.RetryAfter)

	assert.Equal(t, 1, l.allow("other", limit).Allowed)
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAccountRateLimiterFallsBackLocally(t *testing.T) {
	mw := AccountRateLimiter(unreachableRedis(t), PerMinute(1, 1), PerMinute(4, 4))
	h := mw(noop)

	call := func(p *Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		req = req.WithContext(WithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	regular := &Principal{AccountID: 5}
	assert.Equal(t, http.StatusOK, call(regular).Code)

	limited := call(regular)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "standard", limited.Header().Get("X-RateLimit-Class"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	admin := &Principal{AccountID: 6, Privileged: true}
	for range 4 {
		rec := call(admin)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "privileged", rec.Header().Get("X-RateLimit-Class"))
	}
}

func TestRateLimiterFailOpenUsesLocalLimit(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit:    PerMinute(1, 1),
		FailOpen: true,
	})
	h := rl.Handler(noop)

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.RemoteAddr = "10.0.0.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := call()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusTooManyRequests, call().Code)
}

func TestRateLimiterFailClosedRejects(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit:   PerMinute(5, 5),
		KeyFunc: KeyByAccountAndEndpoint,
	})

	rec := httptest.NewRecorder()
	rl.Handler(noop).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
