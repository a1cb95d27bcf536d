package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IanyTech/iany-gaming/internal/config"
)

type stubLimiter struct {
	enabled   bool
	allowed   bool
	remaining int64
	resetAt   time.Time
	limit     int64
	used      int64
	err       error
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Time, error) {
	return s.allowed, s.remaining, s.resetAt, s.err
}
func (s *stubLimiter) Enabled() bool { return s.enabled }
func (s *stubLimiter) Limit() int64  { return s.limit }
func (s *stubLimiter) Usage(ctx context.Context, key string) (int64, int64, *time.Time, error) {
	if s.resetAt.IsZero() {
		return s.used, s.remaining, nil, s.err
	}
	return s.used, s.remaining, &s.resetAt, s.err
}

func okNext(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func TestRateLimitMiddleware_DisabledPassesThrough(t *testing.T) {
	wrapped := RateLimitMiddleware(&stubLimiter{enabled: false}, newHandlerLogger(), okNext)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	wrapped(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "" {
		t.Fatalf("disabled limiter must not set headers")
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	wrapped := RateLimitMiddleware(nil, newHandlerLogger(), okNext)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	wrapped(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRateLimitMiddleware_AllowedSetsHeaders(t *testing.T) {
	limiter := &stubLimiter{
		enabled:   true,
		allowed:   true,
		remaining: 4,
		limit:     5,
		resetAt:   time.Now().Add(time.Minute),
	}
	wrapped := RateLimitMiddleware(limiter, newHandlerLogger(), okNext)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	wrapped(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("expected limit header 5, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Fatalf("expected remaining header 4, got %q", rr.Header().Get("X-RateLimit-Remaining"))
	}
	if rr.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("expected reset header")
	}
}

func TestRateLimitMiddleware_Blocked(t *testing.T) {
	limiter := &stubLimiter{
		enabled: true,
		allowed: false,
		limit:   5,
		resetAt: time.Now().Add(time.Minute),
	}
	wrapped := RateLimitMiddleware(limiter, newHandlerLogger(), okNext)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	wrapped(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining header 0, got %q", rr.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimitHandler_Status_Disabled(t *testing.T) {
	handler := NewRateLimitHandler(nil, newHandlerLogger(), &config.RateLimitConfig{Enabled: false})

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit", nil)
	rr := httptest.NewRecorder()
	handler.Status(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if enabled, ok := resp["enabled"].(bool); !ok || enabled {
		t.Fatalf("expected enabled=false, got %v", resp["enabled"])
	}
}

func TestRateLimitHandler_Status_Enabled(t *testing.T) {
	limiter := &stubLimiter{
		enabled:   true,
		remaining: 3,
		used:      2,
		limit:     5,
		resetAt:   time.Now().Add(time.Minute),
	}
	cfg := &config.RateLimitConfig{Enabled: true, Requests: 5, WindowSeconds: 60}
	handler := NewRateLimitHandler(limiter, newHandlerLogger(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit", nil)
	rr := httptest.NewRecorder()
	handler.Status(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["used"].(float64) != 2 || resp["remaining"].(float64) != 3 {
		t.Fatalf("unexpected usage: %+v", resp)
	}
	if resp["reset_at"] == nil {
		t.Fatalf("expected reset_at in response")
	}
}

func TestRateLimitHandler_Status_MethodNotAllowed(t *testing.T) {
	handler := NewRateLimitHandler(nil, newHandlerLogger(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rate-limit", nil)
	rr := httptest.NewRecorder()
	handler.Status(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
