package services

import (
	"context"
	"testing"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectKPIQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS orders_count").
		WillReturnRows(sqlmock.NewRows([]string{"orders_count", "revenue", "average_check", "discount_total"}).
			AddRow(12, 640.50, 53.38, 35.00))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM redemptions").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT oi.product_id").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "total_quantity", "revenue"}).
			AddRow("gt7", "Gran Turismo 7 (PS5)", 6, 299.94).
			AddRow("psn-gift-10", "Carta Regalo PlayStation 10€", 5, 45.00))
}

func TestAnalyticsService_GetKPIs_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewAnalyticsService(db, nil, newTestLogger(), nil)
	expectKPIQueries(mock)

	filter := &models.AnalyticsFilter{
		From: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
	}

	metrics, err := service.GetKPIs(context.Background(), filter)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if metrics.OrdersCount != 12 || metrics.Revenue != 640.50 {
		t.Fatalf("unexpected summary: %+v", metrics)
	}
	if metrics.RedemptionsCount != 4 {
		t.Fatalf("expected 4 redemptions, got %d", metrics.RedemptionsCount)
	}
	if len(metrics.TopProducts) != 2 || metrics.TopProducts[0].ProductID != "gt7" {
		t.Fatalf("unexpected top products: %+v", metrics.TopProducts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAnalyticsService_GetKPIs_DefaultsApplied(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewAnalyticsService(db, nil, newTestLogger(), &config.AnalyticsConfig{DefaultTopLimit: 3})
	expectKPIQueries(mock)

	metrics, err := service.GetKPIs(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected success with nil filter, got %v", err)
	}
	if metrics.To.Before(metrics.From) {
		t.Fatalf("default range inverted: %v..%v", metrics.From, metrics.To)
	}
}

func TestAnalyticsService_GetKPIs_InvalidRange(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewAnalyticsService(db, nil, newTestLogger(), nil)

	filter := &models.AnalyticsFilter{
		From: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := service.GetKPIs(context.Background(), filter); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestAnalyticsService_GetKPIs_RangeTooWide(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewAnalyticsService(db, nil, newTestLogger(), &config.AnalyticsConfig{MaxRangeDays: 10})

	filter := &models.AnalyticsFilter{
		From: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
	}
	if _, err := service.GetKPIs(context.Background(), filter); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for wide range, got %v", err)
	}
}

func TestAnalyticsService_GetKPIs_CacheHit(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewAnalyticsService(db, newTestRedis(t), newTestLogger(), nil)
	expectKPIQueries(mock)

	filter := &models.AnalyticsFilter{
		From: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC),
	}

	ctx := context.Background()
	first, err := service.GetKPIs(ctx, filter)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	// Второй запрос уходит в кеш: новых обращений к базе sqlmock не ждет.
	second, err := service.GetKPIs(ctx, filter)
	if err != nil {
		t.Fatalf("expected cached success, got %v", err)
	}
	if second.OrdersCount != first.OrdersCount || second.Revenue != first.Revenue {
		t.Fatalf("cached result mismatch: %+v vs %+v", second, first)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
