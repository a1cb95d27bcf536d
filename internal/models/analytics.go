package models

import "time"

// AnalyticsFilter задает период выборки для аналитики
type AnalyticsFilter struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	TopLimit int       `json:"top_limit"`
}

// TopProduct представляет товар в топе продаж
type TopProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// KPIMetrics представляет агрегированные метрики магазина
type KPIMetrics struct {
	From             time.Time     `json:"from"`
	To               time.Time     `json:"to"`
	OrdersCount      int           `json:"orders_count"`
	Revenue          float64       `json:"revenue"`
	AverageCheck     float64       `json:"average_check"`
	DiscountTotal    float64       `json:"discount_total"`
	RedemptionsCount int           `json:"redemptions_count"`
	TopProducts      []*TopProduct `json:"top_products"`
	GeneratedAt      time.Time     `json:"generated_at"`
}
