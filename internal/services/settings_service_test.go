package services

import (
	"context"
	"testing"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/models"
)

func TestSettingsService_GetMissingIsEmpty(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())

	settings, err := service.Get(context.Background(), "anon:s1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if *settings != (models.UserSettings{}) {
		t.Fatalf("expected empty settings, got %+v", settings)
	}
}

func TestSettingsService_UpdateRoundtrip(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())
	ctx := context.Background()

	err := service.Update(ctx, "user:u1", &models.UserSettings{
		Name:          "Mario Rossi",
		Email:         "mario@example.com",
		ShipMethod:    models.ShippingExpress,
		AppliedCoupon: " save5 ",
		Currency:      "usd",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	settings, err := service.Get(ctx, "user:u1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if settings.AppliedCoupon != "SAVE5" {
		t.Fatalf("expected canonical coupon code, got %q", settings.AppliedCoupon)
	}
	if settings.Currency != "USD" {
		t.Fatalf("expected canonical currency, got %q", settings.Currency)
	}
	if settings.ShipMethod != models.ShippingExpress {
		t.Fatalf("expected express shipping, got %q", settings.ShipMethod)
	}
}

func TestSettingsService_UpdateInvalidShipMethod(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())

	err := service.Update(context.Background(), "user:u1", &models.UserSettings{ShipMethod: "teleport"})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSettingsService_ApplyAndClearCoupon(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())
	ctx := context.Background()

	if err := service.ApplyCoupon(ctx, "user:u1", "save5"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	code, err := service.AppliedCoupon(ctx, "user:u1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if code != "SAVE5" {
		t.Fatalf("expected SAVE5, got %q", code)
	}

	if err := service.ClearCoupon(ctx, "user:u1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	code, err = service.AppliedCoupon(ctx, "user:u1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if code != "" {
		t.Fatalf("expected coupon cleared, got %q", code)
	}

	// Повторная очистка без купона не должна падать.
	if err := service.ClearCoupon(ctx, "user:u1"); err != nil {
		t.Fatalf("expected no-op clear to succeed, got %v", err)
	}
}

func TestSettingsService_ShipMethodDefault(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())

	if method := service.ShipMethod(context.Background(), "anon:s1"); method != "" {
		t.Fatalf("expected empty preference, got %q", method)
	}
}

func TestSettingsService_RememberCheckout(t *testing.T) {
	service := NewSettingsService(newTestRedis(t), newTestLogger())
	ctx := context.Background()

	order := &models.Order{
		Name:       "Mario Rossi",
		Email:      "mario@example.com",
		Address:    "Via Roma 1, Milano",
		ShipMethod: models.ShippingExpress,
		Billing: &models.BillingInfo{
			Name:    "Rossi SRL",
			Address: "Via Milano 2",
			TaxCode: "IT12345678901",
		},
	}

	if err := service.RememberCheckout(ctx, "user:u1", order); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	settings, err := service.Get(ctx, "user:u1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if settings.Name != order.Name || settings.Email != order.Email || settings.Address != order.Address {
		t.Fatalf("checkout details not remembered: %+v", settings)
	}
	if settings.BillingTax != "IT12345678901" {
		t.Fatalf("billing details not remembered: %+v", settings)
	}
	if settings.ShipMethod != models.ShippingExpress {
		t.Fatalf("shipping preference not remembered: %+v", settings)
	}
}
