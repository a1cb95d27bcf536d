package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

const fxBaseCurrency = "EUR"

// offlineRates — фиксированные курсы на случай работы без внешнего API.
// Все цены магазина хранятся в EUR; конвертация нужна только для отображения.
var offlineRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.09,
	"GBP": 0.85,
	"CHF": 0.94,
	"PLN": 4.30,
	"SEK": 11.40,
	"JPY": 163.0,
}

// FXRate представляет курс валюты к EUR.
type FXRate struct {
	Currency string    `json:"currency"`
	Rate     float64   `json:"rate"`
	AsOf     time.Time `json:"as_of"`
}

// FXService отдает курсы валют для отображения цен, с кешированием в Redis.
// Провайдер выбирается конфигурацией: offline-таблица или внешний HTTP API.
type FXService struct {
	redis    *redis.Client
	log      *logger.Logger
	client   *http.Client
	cfg      *config.FXConfig
	cacheTTL time.Duration
}

// NewFXService создает сервис курсов валют.
func NewFXService(redisClient *redis.Client, log *logger.Logger, cfg *config.FXConfig) *FXService {
	timeout := 5 * time.Second
	cacheTTL := 12 * time.Hour
	if cfg != nil {
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.CacheTTLHours > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLHours) * time.Hour
		}
	}
	return &FXService{
		redis:    redisClient,
		log:      log,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg,
		cacheTTL: cacheTTL,
	}
}

// Rate возвращает курс валюты к EUR, используя кеш Redis.
// При сбое внешнего провайдера действует offline-таблица.
func (s *FXService) Rate(ctx context.Context, currency string) (*FXRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = fxBaseCurrency
	}

	key := redis.GenerateKey(redis.KeyPrefixFXRate, currency)
	var cached FXRate
	if s.redis != nil {
		if err := s.redis.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	var (
		rate float64
		err  error
	)

	if s.cfg != nil && strings.EqualFold(s.cfg.Provider, "http") && s.cfg.BaseURL != "" {
		rate, err = s.httpRate(ctx, currency)
		if err != nil {
			s.log.WithError(err).WithField("currency", currency).Warn("FX provider failed, fallback to offline rates")
			rate, err = s.offlineRate(currency)
		}
	} else {
		rate, err = s.offlineRate(currency)
	}
	if err != nil {
		return nil, err
	}

	result := &FXRate{Currency: currency, Rate: rate, AsOf: time.Now()}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("currency", currency).Warn("Failed to cache FX rate")
		}
	}

	return result, nil
}

// Convert пересчитывает сумму из EUR в валюту отображения.
func (s *FXService) Convert(ctx context.Context, amount float64, currency string) (float64, *FXRate, error) {
	rate, err := s.Rate(ctx, currency)
	if err != nil {
		return 0, nil, err
	}
	return round2(amount * rate.Rate), rate, nil
}

// SupportedCurrencies возвращает список валют offline-таблицы.
func (s *FXService) SupportedCurrencies() []string {
	currencies := make([]string, 0, len(offlineRates))
	for c := range offlineRates {
		currencies = append(currencies, c)
	}
	return currencies
}

func (s *FXService) offlineRate(currency string) (float64, error) {
	rate, ok := offlineRates[currency]
	if !ok {
		return 0, apperror.Validation(fmt.Sprintf("unsupported currency: %s", currency), nil)
	}
	return rate, nil
}

// httpRate вызывает внешний API курсов (формат exchangerate: base + symbols).
func (s *FXService) httpRate(ctx context.Context, currency string) (float64, error) {
	params := url.Values{}
	params.Set("base", fxBaseCurrency)
	params.Set("symbols", currency)

	reqURL := s.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call fx provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("fx provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var data fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("failed to decode fx response: %w", err)
	}

	rate, ok := data.Rates[currency]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx provider returned no rate for %s", currency)
	}

	return rate, nil
}

type fxResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}
