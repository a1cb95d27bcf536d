package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

type fakeRateRedis struct {
	data   map[string]int64
	expire map[string]time.Time
}

func newFakeRateRedis() *fakeRateRedis {
	return &fakeRateRedis{
		data:   make(map[string]int64),
		expire: make(map[string]time.Time),
	}
}

func (f *fakeRateRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.cleanup()
	val := f.data[key] + 1
	f.data[key] = val
	return val, nil
}

func (f *fakeRateRedis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.expire[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeRateRedis) TTL(ctx context.Context, key string) (time.Duration, error) {
	f.cleanup()
	if exp, ok := f.expire[key]; ok {
		return time.Until(exp), nil
	}
	return 0, nil
}

func (f *fakeRateRedis) GetInt(ctx context.Context, key string) (int64, error) {
	f.cleanup()
	val, ok := f.data[key]
	if !ok {
		return 0, redis.ErrKeyNotFound
	}
	return val, nil
}

func (f *fakeRateRedis) cleanup() {
	now := time.Now()
	for k, exp := range f.expire {
		if now.After(exp) {
			delete(f.expire, k)
			delete(f.data, k)
		}
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := &RateLimiter{
		redis:   newFakeRateRedis(),
		log:     newTestLogger(),
		enabled: true,
		limit:   2,
		window:  time.Second,
		prefix:  "test",
	}

	ctx := context.Background()
	allowed, remaining, _, err := limiter.Allow(ctx, "user:u1")
	if err != nil || !allowed || remaining != 1 {
		t.Fatalf("first request should be allowed, remaining=1, got allowed=%v remaining=%d err=%v", allowed, remaining, err)
	}

	allowed, remaining, _, err = limiter.Allow(ctx, "user:u1")
	if err != nil || !allowed || remaining != 0 {
		t.Fatalf("second request should be allowed, remaining=0, got allowed=%v remaining=%d err=%v", allowed, remaining, err)
	}

	allowed, remaining, _, err = limiter.Allow(ctx, "user:u1")
	if err != nil || allowed || remaining != 0 {
		t.Fatalf("third request should be blocked, got allowed=%v remaining=%d err=%v", allowed, remaining, err)
	}
}

func TestRateLimiter_NewDisabled(t *testing.T) {
	if limiter := NewRateLimiter(nil, nil, nil); limiter.Enabled() {
		t.Fatalf("expected limiter disabled without cfg/redis")
	}
	cfg := &config.RateLimitConfig{Enabled: false}
	if limiter := NewRateLimiter(nil, nil, cfg); limiter.Enabled() {
		t.Fatalf("expected limiter disabled when cfg disabled")
	}
}

func TestRateLimiter_DisabledAllowsEverything(t *testing.T) {
	limiter := NewRateLimiter(nil, nil, nil)

	for i := 0; i < 10; i++ {
		allowed, _, _, err := limiter.Allow(context.Background(), "user:u1")
		if err != nil || !allowed {
			t.Fatalf("disabled limiter must allow everything, got allowed=%v err=%v", allowed, err)
		}
	}
}

func TestRateLimiter_Usage(t *testing.T) {
	fake := newFakeRateRedis()
	limiter := &RateLimiter{
		redis:   fake,
		log:     newTestLogger(),
		enabled: true,
		limit:   5,
		window:  time.Minute,
		prefix:  "test",
	}

	ctx := context.Background()

	// Пустое окно — ничего не использовано.
	used, remaining, resetAt, err := limiter.Usage(ctx, "user:u1")
	if err != nil || used != 0 || remaining != 5 || resetAt != nil {
		t.Fatalf("expected empty usage, got used=%d remaining=%d resetAt=%v err=%v", used, remaining, resetAt, err)
	}

	if _, _, _, err := limiter.Allow(ctx, "user:u1"); err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if _, _, _, err := limiter.Allow(ctx, "user:u1"); err != nil {
		t.Fatalf("allow failed: %v", err)
	}

	used, remaining, _, err = limiter.Usage(ctx, "user:u1")
	if err != nil {
		t.Fatalf("usage failed: %v", err)
	}
	if used != 2 || remaining != 3 {
		t.Fatalf("expected used=2 remaining=3, got used=%d remaining=%d", used, remaining)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set(identity.HeaderUserID, "U1")
	if key := ClientKey(req); key != "user:u1" {
		t.Fatalf("expected user key, got %q", key)
	}

	req = httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set(identity.HeaderSessionID, "s123")
	if key := ClientKey(req); key != "anon:s123" {
		t.Fatalf("expected session key, got %q", key)
	}

	// Без идентичности ключом служит IP клиента.
	req = httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	if key := ClientKey(req); key != "203.0.113.7" {
		t.Fatalf("expected real IP key, got %q", key)
	}

	req = httptest.NewRequest("GET", "/api/cart", nil)
	req.RemoteAddr = "198.51.100.4:54321"
	if key := ClientKey(req); key != "198.51.100.4" {
		t.Fatalf("expected remote addr key, got %q", key)
	}
}
