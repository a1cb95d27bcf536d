package services

import (
	"context"
	"math"

	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// ProductProvider отдает товар каталога по идентификатору.
type ProductProvider interface {
	GetProduct(id string) *models.Product
}

// CouponValidator проверяет купон для пользователя на момент вызова.
type CouponValidator interface {
	Validate(ctx context.Context, code, userID string) (*models.Coupon, error)
}

// ShipMethodReader возвращает сохраненный способ доставки пользователя.
type ShipMethodReader interface {
	ShipMethod(ctx context.Context, storageKey string) models.ShippingMethod
}

// PricingService рассчитывает суммы заказа: подытог, доставку, скидку и итог.
// Расчет не имеет побочных эффектов: повторный вызов с теми же входными
// данными и неизменным хранилищем дает тот же результат.
type PricingService struct {
	products ProductProvider
	coupons  CouponValidator
	settings ShipMethodReader
	log      *logger.Logger

	standardCost  float64
	expressCost   float64
	freeThreshold float64
}

// NewPricingService создает сервис расчета сумм.
func NewPricingService(products ProductProvider, coupons CouponValidator, settings ShipMethodReader, log *logger.Logger, cfg *config.ShippingConfig) *PricingService {
	standard, express, threshold := 4.99, 9.99, 59.0
	if cfg != nil {
		if cfg.StandardCost > 0 {
			standard = cfg.StandardCost
		}
		if cfg.ExpressCost > 0 {
			express = cfg.ExpressCost
		}
		if cfg.FreeOverThreshold > 0 {
			threshold = cfg.FreeOverThreshold
		}
	}

	return &PricingService{
		products:      products,
		coupons:       coupons,
		settings:      settings,
		log:           log,
		standardCost:  standard,
		expressCost:   express,
		freeThreshold: threshold,
	}
}

// ComputeTotalsInput описывает входные данные расчета.
type ComputeTotalsInput struct {
	Cart       models.Cart
	ShipMethod models.ShippingMethod // пустое значение — взять сохраненное предпочтение
	CouponCode string
	UserID     string
	StorageKey string
}

// ComputeTotals рассчитывает суммы для корзины.
//
// Неизвестные товары дают нулевой вклад в подытог. Купон перепроверяется
// на момент расчета: скидка применяется только если купон сейчас действителен
// для этого пользователя, даже если он был принят раньше в рамках сессии.
func (s *PricingService) ComputeTotals(ctx context.Context, in ComputeTotalsInput) models.Totals {
	subtotal := 0.0
	allDigital := len(in.Cart) > 0
	for id, qty := range in.Cart {
		if qty <= 0 {
			continue
		}
		p := s.products.GetProduct(id)
		if p == nil {
			allDigital = false
			continue
		}
		subtotal += p.UnitPrice * float64(qty)
		if !p.Category.Digital() {
			allDigital = false
		}
	}
	subtotal = round2(subtotal)

	method := in.ShipMethod
	if !method.Valid() && s.settings != nil {
		method = s.settings.ShipMethod(ctx, in.StorageKey)
	}
	if !method.Valid() {
		method = models.ShippingStandard
	}

	shipping := 0.0
	if subtotal > 0 {
		if method == models.ShippingExpress {
			shipping = s.expressCost
		} else {
			shipping = s.standardCost
		}
		if subtotal >= s.freeThreshold {
			shipping = 0
		}
		if allDigital {
			shipping = 0
		}
	}

	discount := 0.0
	if in.CouponCode != "" {
		coupon, err := s.coupons.Validate(ctx, in.CouponCode, in.UserID)
		if err != nil {
			// Недействительный для пользователя купон не дает скидки;
			// ошибка хранилища трактуется так же, чтобы скидка никогда
			// не применялась без подтверждения.
			s.log.WithError(err).WithField("code", in.CouponCode).Debug("Coupon not applied")
		} else {
			switch coupon.Kind {
			case models.CouponKindPercent:
				discount = math.Min(subtotal*coupon.Value/100.0, subtotal)
			case models.CouponKindFixed:
				discount = math.Min(coupon.Value, subtotal)
			case models.CouponKindFreeShipping:
				shipping = 0
			}
			discount = round2(discount)
		}
	}

	total := round2(math.Max(0, subtotal-discount) + shipping)

	return models.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
