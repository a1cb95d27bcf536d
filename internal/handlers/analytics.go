package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

const defaultTopLimitFallback = 5

// AnalyticsHandler обрабатывает эндпоинты аналитики.
type AnalyticsHandler struct {
	service AnalyticsProvider
	log     *logger.Logger
	cfg     *config.AnalyticsConfig
}

// NewAnalyticsHandler создает обработчик аналитики.
func NewAnalyticsHandler(service AnalyticsProvider, log *logger.Logger, cfg *config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log,
		cfg:     cfg,
	}
}

// GetKPIs возвращает KPI магазина с возможностью экспорта в CSV.
func (h *AnalyticsHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter, format, err := parseAnalyticsFilter(r, h.cfg)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout(h.cfg))
	defer cancel()

	metrics, err := h.service.GetKPIs(ctx, filter)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load analytics")
		return
	}

	if format == "csv" {
		if err := writeKPICSV(w, metrics); err != nil {
			h.log.WithError(err).Warn("Failed to stream KPI CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, metrics)
}

func parseAnalyticsFilter(r *http.Request, cfg *config.AnalyticsConfig) (*models.AnalyticsFilter, string, error) {
	query := r.URL.Query()
	now := time.Now().UTC()

	toParam := query.Get("to")
	fromParam := query.Get("from")

	to := endOfDay(now)
	if toParam != "" {
		parsed, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'to' date, expected YYYY-MM-DD")
		}
		to = endOfDay(parsed)
	}

	from := startOfDay(now.AddDate(0, 0, -29))
	if fromParam != "" {
		parsed, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = startOfDay(parsed)
	}

	maxRangeDays := 365
	if cfg != nil && cfg.MaxRangeDays > 0 {
		maxRangeDays = cfg.MaxRangeDays
	}
	if from.Before(to.AddDate(0, 0, -maxRangeDays+1)) {
		return nil, "", fmt.Errorf("date range too wide, max %d days", maxRangeDays)
	}
	if from.After(to) {
		return nil, "", fmt.Errorf("'from' date must be before 'to' date")
	}

	topDefault := defaultTopLimitFallback
	if cfg != nil && cfg.DefaultTopLimit > 0 {
		topDefault = cfg.DefaultTopLimit
	}

	format := strings.ToLower(query.Get("format"))
	if format != "" && format != "json" && format != "csv" {
		return nil, "", fmt.Errorf("format must be json or csv")
	}

	filter := &models.AnalyticsFilter{
		From:     from,
		To:       to,
		TopLimit: parseIntWithDefault(query.Get("top_limit"), topDefault),
	}

	return filter, format, nil
}

func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}

	return parsed
}

func writeKPICSV(w http.ResponseWriter, metrics *models.KPIMetrics) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=kpi.csv")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"section", "period", "orders_count", "revenue", "average_check", "discount_total", "redemptions_count"})
	rangeLabel := fmt.Sprintf("%s..%s", metrics.From.Format("2006-01-02"), metrics.To.Format("2006-01-02"))
	_ = writer.Write([]string{
		"summary",
		rangeLabel,
		strconv.Itoa(metrics.OrdersCount),
		fmt.Sprintf("%.2f", metrics.Revenue),
		fmt.Sprintf("%.2f", metrics.AverageCheck),
		fmt.Sprintf("%.2f", metrics.DiscountTotal),
		strconv.Itoa(metrics.RedemptionsCount),
	})

	_ = writer.Write([]string{})
	_ = writer.Write([]string{"section", "product_id", "name", "quantity", "revenue"})
	for _, item := range metrics.TopProducts {
		_ = writer.Write([]string{"top_product", item.ProductID, item.Name, strconv.Itoa(item.Quantity), fmt.Sprintf("%.2f", item.Revenue)})
	}

	writer.Flush()
	return writer.Error()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Millisecond*999), time.UTC)
}

func analyticsTimeout(cfg *config.AnalyticsConfig) time.Duration {
	if cfg != nil && cfg.RequestTimeoutSeconds > 0 {
		return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return 5 * time.Second
}
