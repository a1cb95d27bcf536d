package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestExtractOrderIDFromPath(t *testing.T) {
	id, err := extractOrderIDFromPath("/api/orders/1700000123456", "/api/orders/")
	if err != nil || id != 1700000123456 {
		t.Fatalf("expected id 1700000123456, got %d err=%v", id, err)
	}

	// Суффикс после идентификатора не мешает.
	id, err = extractOrderIDFromPath("/api/orders/42/tracking", "/api/orders/")
	if err != nil || id != 42 {
		t.Fatalf("expected id 42, got %d err=%v", id, err)
	}

	if _, err := extractOrderIDFromPath("/api/orders/", "/api/orders/"); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, err := extractOrderIDFromPath("/api/orders/abc", "/api/orders/"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := extractOrderIDFromPath("/other/42", "/api/orders/"); err == nil {
		t.Fatalf("expected error for wrong prefix")
	}
}

func TestExtractCodeFromPath(t *testing.T) {
	code, err := extractCodeFromPath("/api/coupons/SAVE5", "/api/coupons/")
	if err != nil || code != "SAVE5" {
		t.Fatalf("expected SAVE5, got %q err=%v", code, err)
	}

	code, err = extractCodeFromPath("/api/coupons/SAVE5/extra", "/api/coupons/")
	if err != nil || code != "SAVE5" {
		t.Fatalf("expected suffix trimmed, got %q err=%v", code, err)
	}

	if _, err := extractCodeFromPath("/api/coupons/", "/api/coupons/"); err == nil {
		t.Fatalf("expected error for missing code")
	}
}

func TestParseLimitOffset(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/orders", nil)
	limit, offset := parseLimitOffset(req, 20, 100)
	if limit != 20 || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	req = httptest.NewRequest("GET", "/api/orders?limit=50&offset=10", nil)
	limit, offset = parseLimitOffset(req, 20, 100)
	if limit != 50 || offset != 10 {
		t.Fatalf("expected limit=50 offset=10, got limit=%d offset=%d", limit, offset)
	}

	// Слишком большой limit и мусорные значения игнорируются.
	req = httptest.NewRequest("GET", "/api/orders?limit=1000&offset=-5", nil)
	limit, offset = parseLimitOffset(req, 20, 100)
	if limit != 20 || offset != 0 {
		t.Fatalf("expected defaults for invalid params, got limit=%d offset=%d", limit, offset)
	}
}
