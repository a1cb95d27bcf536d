package services

import (
	"context"
	"fmt"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

const (
	DefaultTopProductsLimit = 5
	defaultKPICacheTTL      = 10 * time.Minute
)

// AnalyticsService агрегирует бизнес-метрики магазина и кеширует
// тяжёлые выборки в Redis.
type AnalyticsService struct {
	db           *database.DB
	redis        *redis.Client
	log          *logger.Logger
	cacheTTL     time.Duration
	maxRangeDays int
	defaultTop   int
}

// NewAnalyticsService создает сервис аналитики.
func NewAnalyticsService(db *database.DB, redisClient *redis.Client, log *logger.Logger, cfg *config.AnalyticsConfig) *AnalyticsService {
	cacheTTL := defaultKPICacheTTL
	maxRangeDays := 365
	defaultTop := DefaultTopProductsLimit

	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.MaxRangeDays > 0 {
			maxRangeDays = cfg.MaxRangeDays
		}
		if cfg.DefaultTopLimit > 0 {
			defaultTop = cfg.DefaultTopLimit
		}
	}

	return &AnalyticsService{
		db:           db,
		redis:        redisClient,
		log:          log,
		cacheTTL:     cacheTTL,
		maxRangeDays: maxRangeDays,
		defaultTop:   defaultTop,
	}
}

// GetKPIs возвращает агрегированные KPI за период с кешированием.
func (s *AnalyticsService) GetKPIs(ctx context.Context, filter *models.AnalyticsFilter) (*models.KPIMetrics, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	cacheKey := s.buildCacheKey(filter)
	var cached models.KPIMetrics
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	summary, err := s.fetchSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	redemptions, err := s.fetchRedemptionsCount(ctx, filter)
	if err != nil {
		return nil, err
	}

	topProducts, err := s.fetchTopProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &models.KPIMetrics{
		From:             filter.From,
		To:               filter.To,
		OrdersCount:      summary.OrdersCount,
		Revenue:          summary.Revenue,
		AverageCheck:     summary.AverageCheck,
		DiscountTotal:    summary.DiscountTotal,
		RedemptionsCount: redemptions,
		TopProducts:      topProducts,
		GeneratedAt:      time.Now(),
	}

	s.saveToCache(ctx, cacheKey, result)
	return result, nil
}

type kpiSummary struct {
	OrdersCount   int
	Revenue       float64
	AverageCheck  float64
	DiscountTotal float64
}

func (s *AnalyticsService) fetchSummary(ctx context.Context, filter *models.AnalyticsFilter) (*kpiSummary, error) {
	query := `
		SELECT COUNT(*) AS orders_count,
		       COALESCE(SUM(total), 0) AS revenue,
		       COALESCE(AVG(total), 0) AS average_check,
		       COALESCE(SUM(discount), 0) AS discount_total
		FROM orders
		WHERE created_at BETWEEN $1 AND $2
	`

	row := s.db.QueryRowContext(ctx, query, filter.From, filter.To)
	summary := &kpiSummary{}
	if err := row.Scan(&summary.OrdersCount, &summary.Revenue, &summary.AverageCheck, &summary.DiscountTotal); err != nil {
		return nil, fmt.Errorf("failed to load KPI summary: %w", err)
	}

	return summary, nil
}

func (s *AnalyticsService) fetchRedemptionsCount(ctx context.Context, filter *models.AnalyticsFilter) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM redemptions WHERE redeemed_at BETWEEN $1 AND $2`
	if err := s.db.QueryRowContext(ctx, query, filter.From, filter.To).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to load redemptions count: %w", err)
	}
	return count, nil
}

func (s *AnalyticsService) fetchTopProducts(ctx context.Context, filter *models.AnalyticsFilter) ([]*models.TopProduct, error) {
	query := `
		SELECT oi.product_id,
		       oi.name,
		       COALESCE(SUM(oi.quantity), 0) AS total_quantity,
		       COALESCE(SUM(oi.unit_price * oi.quantity), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at BETWEEN $1 AND $2
		GROUP BY oi.product_id, oi.name
		ORDER BY total_quantity DESC, revenue DESC, oi.name ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, filter.From, filter.To, filter.TopLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	defer rows.Close()

	var result []*models.TopProduct
	for rows.Next() {
		item := &models.TopProduct{}
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top products: %w", err)
	}

	return result, nil
}

func (s *AnalyticsService) normalizeFilter(filter *models.AnalyticsFilter) (*models.AnalyticsFilter, error) {
	if filter == nil {
		filter = &models.AnalyticsFilter{}
	}
	if filter.To.IsZero() {
		filter.To = time.Now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, 0, -30)
	}
	if filter.From.After(filter.To) {
		return nil, apperror.Validation("from must be before to", nil)
	}
	if filter.To.Sub(filter.From) > time.Duration(s.maxRangeDays)*24*time.Hour {
		return nil, apperror.Validation("date range is too wide", nil)
	}
	if filter.TopLimit <= 0 {
		filter.TopLimit = s.defaultTop
	}
	return filter, nil
}

func (s *AnalyticsService) buildCacheKey(filter *models.AnalyticsFilter) string {
	return redis.GenerateKey(redis.KeyPrefixStats, fmt.Sprintf(
		"kpi:%s:%s:%d",
		filter.From.Format("2006-01-02"),
		filter.To.Format("2006-01-02"),
		filter.TopLimit,
	))
}

func (s *AnalyticsService) tryGetFromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	if err := s.redis.Get(ctx, key, dest); err != nil {
		return false
	}
	return true
}

func (s *AnalyticsService) saveToCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache analytics result")
	}
}
