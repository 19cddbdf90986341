// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
	// FailOpen keeps serving under an in-process limit while Redis is
	// unreachable. Without it the limiter answers 503.
	FailOpen bool
}

// limitStore counts requests in Redis and, when asked to, in a local token
// bucket per key while Redis is down.
type limitStore struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
}

func newLimitStore(rdb *redis.Client) *limitStore {
	return &limitStore{
		redis:    redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
	}
}

func (s *limitStore) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
	failOpen bool,
) (*redis_rate.Result, error) {
	res, err := s.redis.Allow(ctx, key, limit)
	if err == nil {
		return res, nil
	}
	if !failOpen {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}

	slog.Warn("rate limiter unavailable, using local limit",
		"error", err,
		"key", key,
	)
	return s.fallback.allow(key, limit), nil
}

type RateLimiter struct {
	store  *limitStore
	config RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		store:  newLimitStore(rdb),
		config: cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		res, err := rl.store.allow(r.Context(), key, rl.config.Limit, rl.config.FailOpen)
		if err != nil {
			slog.Error("rate limiter unavailable, rejecting", "error", err)
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}

		if !admit(w, res, rl.config.Limit) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// admit writes the rate limit headers and, when res denies the request,
// the 429 body. It reports whether the request may proceed.
func admit(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) bool {
	setRateLimitHeaders(w, res, limit)
	if res.Allowed == 0 {
		writeRateLimitExceeded(w, res)
		return false
	}
	return true
}

func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[len(ips)-1])
		return "ratelimit:ip:" + ip
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	return "ratelimit:ip:" + ip
}

func KeyByAccount(r *http.Request) string {
	if accountID := GetAccountID(r.Context()); accountID != 0 {
		return "ratelimit:account:" + strconv.FormatInt(accountID, 10)
	}
	return KeyByIP(r)
}

func KeyByAccountAndEndpoint(r *http.Request) string {
	accountKey := KeyByAccount(r)
	endpoint := normalizeEndpoint(r.URL.Path)
	return fmt.Sprintf("%s:endpoint:%s", accountKey, endpoint)
}

func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	normalized := make([]string, 0, len(parts))

	for _, part := range parts {
		if isUUID(part) || isNumeric(part) {
			normalized = append(normalized, "{id}")
		} else {
			normalized = append(normalized, part)
		}
	}

	return "/" + strings.Join(normalized, "/")
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	return s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-'
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	windowSecs := int(limit.Period.Seconds())
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, windowSecs))
	h.Set(
		"RateLimit",
		fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())),
	)
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		errRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

var errRateLimited = errors.New("rate limited")

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.limiters.Range(func(key, value any) bool {
			entry, ok := value.(*limiterEntry)
			if ok && entry.lastAccess.Load() < cutoff {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)
	now := time.Now().Unix()

	value, ok := l.limiters.Load(key)
	if !ok {
		value, _ = l.limiters.LoadOrStore(key, &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		})
	}
	//nolint:forcetypeassert // only *limiterEntry is stored
	entry := value.(*limiterEntry)
	entry.lastAccess.Store(now)

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if entry.limiter.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(entry.limiter.Tokens()), 0)
	return res
}

// AccountRateLimiter limits authenticated traffic per account, giving
// privileged accounts their own budget. It must run after Authenticator.
// Redis outages fall back to the local limit.
func AccountRateLimiter(
	rdb *redis.Client,
	standard, privileged redis_rate.Limit,
) func(http.Handler) http.Handler {
	store := newLimitStore(rdb)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, class := standard, "standard"
			if IsPrivileged(r.Context()) {
				limit, class = privileged, "privileged"
			}

			//nolint:errcheck // fail-open allow never errors
			res, _ := store.allow(r.Context(), KeyByAccount(r), limit, true)

			w.Header().Set("X-RateLimit-Class", class)
			if !admit(w, res, limit) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}
