package services

import (
	"context"
	"errors"
	"strings"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

// SettingsService хранит настройки пользователя (реквизиты, способ доставки,
// примененный купон, валюта отображения) одной JSON-записью на пользователя.
type SettingsService struct {
	redis *redis.Client
	log   *logger.Logger
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(redisClient *redis.Client, log *logger.Logger) *SettingsService {
	return &SettingsService{
		redis: redisClient,
		log:   log,
	}
}

// Get возвращает настройки пользователя; отсутствующая запись даёт пустые настройки.
func (s *SettingsService) Get(ctx context.Context, storageKey string) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := s.redis.Get(ctx, s.key(storageKey), settings)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return &models.UserSettings{}, nil
		}
		return nil, apperror.Unavailable("settings storage unavailable", err)
	}
	return settings, nil
}

// Update перезаписывает настройки пользователя целиком.
func (s *SettingsService) Update(ctx context.Context, storageKey string, settings *models.UserSettings) error {
	if settings == nil {
		return apperror.Validation("settings payload is required", nil)
	}
	if settings.ShipMethod != "" && !settings.ShipMethod.Valid() {
		return apperror.Validation("invalid shipping method", nil)
	}
	settings.AppliedCoupon = CanonicalCode(settings.AppliedCoupon)
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	return s.save(ctx, storageKey, settings)
}

// ShipMethod возвращает сохранённый способ доставки пользователя.
// Ошибки хранилища здесь глотаются: расчет сумм не должен падать из-за
// недоступных предпочтений, вместо этого действует значение по умолчанию.
func (s *SettingsService) ShipMethod(ctx context.Context, storageKey string) models.ShippingMethod {
	settings, err := s.Get(ctx, storageKey)
	if err != nil {
		s.log.WithError(err).Debug("Failed to read shipping preference")
		return ""
	}
	return settings.ShipMethod
}

// AppliedCoupon возвращает примененный в сессии код купона.
func (s *SettingsService) AppliedCoupon(ctx context.Context, storageKey string) (string, error) {
	settings, err := s.Get(ctx, storageKey)
	if err != nil {
		return "", err
	}
	return settings.AppliedCoupon, nil
}

// ApplyCoupon запоминает примененный купон в настройках сессии.
func (s *SettingsService) ApplyCoupon(ctx context.Context, storageKey, code string) error {
	settings, err := s.Get(ctx, storageKey)
	if err != nil {
		return err
	}
	settings.AppliedCoupon = CanonicalCode(code)
	return s.save(ctx, storageKey, settings)
}

// ClearCoupon убирает примененный купон из настроек сессии.
func (s *SettingsService) ClearCoupon(ctx context.Context, storageKey string) error {
	settings, err := s.Get(ctx, storageKey)
	if err != nil {
		return err
	}
	if settings.AppliedCoupon == "" {
		return nil
	}
	settings.AppliedCoupon = ""
	return s.save(ctx, storageKey, settings)
}

// RememberCheckout сохраняет реквизиты последнего оформления, чтобы при
// следующем заказе форма была предзаполнена.
func (s *SettingsService) RememberCheckout(ctx context.Context, storageKey string, order *models.Order) error {
	settings, err := s.Get(ctx, storageKey)
	if err != nil {
		return err
	}
	settings.Name = order.Name
	settings.Email = order.Email
	settings.Address = order.Address
	settings.ShipMethod = order.ShipMethod
	if order.Billing != nil {
		settings.BillingName = order.Billing.Name
		settings.BillingAddress = order.Billing.Address
		settings.BillingTax = order.Billing.TaxCode
	}
	return s.save(ctx, storageKey, settings)
}

func (s *SettingsService) save(ctx context.Context, storageKey string, settings *models.UserSettings) error {
	if err := s.redis.Set(ctx, s.key(storageKey), settings, 0); err != nil {
		return apperror.Unavailable("settings storage unavailable", err)
	}
	return nil
}

func (s *SettingsService) key(storageKey string) string {
	return redis.GenerateKey(redis.KeyPrefixSettings, storageKey)
}
