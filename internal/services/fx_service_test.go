package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/redis"

	"github.com/alicebob/miniredis/v2"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skip: cannot start miniredis in this environment: %v", err)
		}
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	parts := strings.Split(mr.Addr(), ":")
	cfg := &config.RedisConfig{
		Host: parts[0],
		Port: parts[1],
		DB:   0,
	}

	log := logger.New(&config.LoggerConfig{Level: "debug", Format: "json"})
	rdb, err := redis.Connect(cfg, log)
	if err != nil {
		t.Fatalf("failed to connect redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestFXService_OfflineRate(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), nil)

	rate, err := service.Rate(context.Background(), "usd")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if rate.Currency != "USD" || rate.Rate != 1.09 {
		t.Fatalf("unexpected rate: %+v", rate)
	}
}

func TestFXService_BaseCurrencyDefault(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), nil)

	rate, err := service.Rate(context.Background(), "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if rate.Currency != "EUR" || rate.Rate != 1.0 {
		t.Fatalf("expected EUR base rate 1.0, got %+v", rate)
	}
}

func TestFXService_UnsupportedCurrency(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), nil)

	_, err := service.Rate(context.Background(), "XYZ")
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFXService_Convert(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), nil)

	amount, rate, err := service.Convert(context.Background(), 10, "USD")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if amount != 10.90 {
		t.Fatalf("expected 10.90, got %.2f", amount)
	}
	if rate.Rate != 1.09 {
		t.Fatalf("unexpected rate: %+v", rate)
	}
}

func TestFXService_HTTPProvider(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), &config.FXConfig{
		Provider: "http",
		BaseURL:  "http://fx.test/latest",
	})
	service.client = &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.URL.Query().Get("base"); got != "EUR" {
				t.Fatalf("expected base=EUR, got %s", got)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"base":"EUR","rates":{"USD":1.25}}`)),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}),
	}

	rate, err := service.Rate(context.Background(), "USD")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if rate.Rate != 1.25 {
		t.Fatalf("expected provider rate 1.25, got %.2f", rate.Rate)
	}
}

func TestFXService_HTTPProviderFallsBackOffline(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), &config.FXConfig{
		Provider: "http",
		BaseURL:  "http://fx.test/latest",
	})
	service.client = &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(strings.NewReader("oops")),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}),
	}

	rate, err := service.Rate(context.Background(), "USD")
	if err != nil {
		t.Fatalf("expected offline fallback, got %v", err)
	}
	if rate.Rate != 1.09 {
		t.Fatalf("expected offline rate 1.09, got %.2f", rate.Rate)
	}
}

func TestFXService_RateCached(t *testing.T) {
	rdb := newTestRedis(t)

	calls := 0
	service := NewFXService(rdb, newTestLogger(), &config.FXConfig{
		Provider: "http",
		BaseURL:  "http://fx.test/latest",
	})
	service.client = &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"base":"EUR","rates":{"GBP":0.87}}`)),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}),
	}

	ctx := context.Background()
	first, err := service.Rate(ctx, "GBP")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	second, err := service.Rate(ctx, "GBP")
	if err != nil {
		t.Fatalf("expected success on second call, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected one provider call, got %d", calls)
	}
	if first.Rate != second.Rate {
		t.Fatalf("expected cached rate to match: %.4f vs %.4f", first.Rate, second.Rate)
	}
}

func TestFXService_SupportedCurrencies(t *testing.T) {
	service := NewFXService(nil, newTestLogger(), nil)

	currencies := service.SupportedCurrencies()
	found := false
	for _, c := range currencies {
		if c == "EUR" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected EUR in supported currencies: %v", currencies)
	}
}
