package config

import (
	"os"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("TEST_STR", "value")
	os.Setenv("TEST_INT", "123")
	os.Setenv("TEST_FLOAT", "3.14")
	os.Setenv("TEST_BOOL_TRUE", "true")
	os.Setenv("TEST_BOOL_FALSE", "false")

	if v := getEnv("TEST_STR", ""); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if v := getEnvAsFloat("TEST_FLOAT", 0); v != 3.14 {
		t.Fatalf("expected 3.14, got %f", v)
	}
	if !getEnvAsBool("TEST_BOOL_TRUE", false) {
		t.Fatalf("expected true")
	}
	if getEnvAsBool("TEST_BOOL_FALSE", true) {
		t.Fatalf("expected false")
	}
}

func TestLoadDefaults(t *testing.T) {
	_ = os.Unsetenv("SERVER_PORT")
	cfg := Load()
	if cfg.Server.Port == "" {
		t.Fatalf("expected default server port set")
	}
	if cfg.Shipping.StandardCost != 4.99 || cfg.Shipping.ExpressCost != 9.99 {
		t.Fatalf("expected default shipping costs, got %+v", cfg.Shipping)
	}
	if cfg.Shipping.FreeOverThreshold != 59.0 {
		t.Fatalf("expected free shipping threshold 59, got %v", cfg.Shipping.FreeOverThreshold)
	}
	if cfg.Checkout.OrderCodeDigits == 0 {
		t.Fatalf("expected checkout defaults set")
	}
	if cfg.Analytics.CacheTTLMinutes == 0 {
		t.Fatalf("expected analytics defaults set")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	os.Setenv("SHIPPING_FREE_OVER", "99.5")
	os.Setenv("LOYALTY_ENABLED", "false")
	defer os.Unsetenv("SHIPPING_FREE_OVER")
	defer os.Unsetenv("LOYALTY_ENABLED")

	cfg := Load()
	if cfg.Shipping.FreeOverThreshold != 99.5 {
		t.Fatalf("expected overridden threshold, got %v", cfg.Shipping.FreeOverThreshold)
	}
	if cfg.Loyalty.Enabled {
		t.Fatalf("expected loyalty disabled via env")
	}
}
