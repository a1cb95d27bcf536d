package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/redis"

	"github.com/lib/pq"
)

// RedemptionRecorder фиксирует использование купона в рамках транзакции заказа.
type RedemptionRecorder interface {
	RecordRedemptionTx(ctx context.Context, tx *sql.Tx, userID, code string, orderID int64) (*models.Redemption, error)
}

// PointsEarner начисляет баллы лояльности в рамках транзакции заказа
// и возвращает новый баланс.
type PointsEarner interface {
	EarnPointsTx(ctx context.Context, tx *sql.Tx, userID string, points int, reason string, referenceID *string) (int, error)
}

// EventPublisher публикует события о завершении заказа.
type EventPublisher interface {
	PublishOrderFinalized(order *models.Order) error
	PublishCouponRedeemed(userID, code string, orderID int64) error
	PublishPointsEarned(userID string, points, newBalance int) error
}

// CheckoutService ведет заказ от формы оформления до записи в базу.
//
// Оформление двухфазное: сначала строится отложенный заказ (снимок корзины,
// сумм и реквизитов в Redis с TTL), затем после оплаты он финализируется
// одной транзакцией. Первичный ключ заказа и уникальный индекс на
// (user_id, code) в redemptions закрывают гонки повторной финализации
// и повторного использования купона.
type CheckoutService struct {
	db       *database.DB
	redis    *redis.Client
	products ProductProvider
	pricing  *PricingService
	carts    *CartService
	settings *SettingsService
	coupons  RedemptionRecorder
	loyalty  PointsEarner
	events   EventPublisher
	log      *logger.Logger

	now           func() time.Time
	pendingSeq    uint32
	pendingTTL    time.Duration
	paymentDelay  time.Duration
	codeDigits    int
	pointsPerEuro float64
}

// NewCheckoutService создаёт сервис оформления заказа.
func NewCheckoutService(
	db *database.DB,
	redisClient *redis.Client,
	products ProductProvider,
	pricing *PricingService,
	carts *CartService,
	settings *SettingsService,
	coupons RedemptionRecorder,
	loyalty PointsEarner,
	events EventPublisher,
	log *logger.Logger,
	cfg *config.CheckoutConfig,
	loyaltyCfg *config.LoyaltyConfig,
) *CheckoutService {
	pendingTTL := 30 * time.Minute
	paymentDelay := 900 * time.Millisecond
	codeDigits := 8
	if cfg != nil {
		if cfg.PendingTTLMinutes > 0 {
			pendingTTL = time.Duration(cfg.PendingTTLMinutes) * time.Minute
		}
		if cfg.PaymentDelayMillis >= 0 {
			paymentDelay = time.Duration(cfg.PaymentDelayMillis) * time.Millisecond
		}
		if cfg.OrderCodeDigits > 0 {
			codeDigits = cfg.OrderCodeDigits
		}
	}
	pointsPerEuro := 0.0
	if loyaltyCfg != nil && loyaltyCfg.Enabled {
		pointsPerEuro = loyaltyCfg.PointsPerEuro
	}

	return &CheckoutService{
		db:            db,
		redis:         redisClient,
		products:      products,
		pricing:       pricing,
		carts:         carts,
		settings:      settings,
		coupons:       coupons,
		loyalty:       loyalty,
		events:        events,
		log:           log,
		now:           time.Now,
		pendingSeq:    rand.Uint32(),
		pendingTTL:    pendingTTL,
		paymentDelay:  paymentDelay,
		codeDigits:    codeDigits,
		pointsPerEuro: pointsPerEuro,
	}
}

// BuildPendingOrder проверяет форму оформления и строит отложенный заказ.
//
// Снимок фиксирует строки заказа с ценами и рассчитанные суммы на момент
// вызова: последующие изменения каталога или корзины на него не влияют.
func (s *CheckoutService) BuildPendingOrder(ctx context.Context, ident identity.Identity, req *models.CheckoutRequest) (*models.PendingOrder, error) {
	if req == nil {
		return nil, apperror.Validation("checkout payload is required", nil)
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	address := strings.TrimSpace(req.Address)

	if name == "" || email == "" || address == "" {
		return nil, apperror.Validation("name, email and address are required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.Validation("invalid email address", nil)
	}
	if !req.TermsAccepted {
		return nil, apperror.Validation("terms must be accepted", nil)
	}

	payMethod := req.PayMethod
	if payMethod == "" {
		payMethod = models.PaymentCard
	}
	switch payMethod {
	case models.PaymentCard, models.PaymentAmex, models.PaymentPaypal:
	default:
		return nil, apperror.Validation("invalid payment method", nil)
	}

	storageKey := ident.StorageKey()
	cart, err := s.carts.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperror.Validation("cart is empty", nil)
	}

	userSettings, err := s.settings.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}

	shipMethod := req.ShipMethod
	if !shipMethod.Valid() {
		shipMethod = userSettings.ShipMethod
	}
	if !shipMethod.Valid() {
		shipMethod = models.ShippingStandard
	}

	var couponCode *string
	if code := CanonicalCode(userSettings.AppliedCoupon); code != "" {
		couponCode = &code
	}

	totals := s.pricing.ComputeTotals(ctx, ComputeTotalsInput{
		Cart:       cart,
		ShipMethod: shipMethod,
		CouponCode: userSettings.AppliedCoupon,
		UserID:     ident.UserID,
		StorageKey: storageKey,
	})

	lines := s.snapshotLines(cart)
	if len(lines) == 0 {
		return nil, apperror.Validation("cart contains no purchasable items", nil)
	}

	pending := &models.PendingOrder{
		ID:         s.newPendingID(),
		UserID:     ident.UserID,
		Items:      lines,
		Totals:     totals,
		Name:       name,
		Email:      email,
		Address:    address,
		Billing:    req.Billing,
		PayMethod:  payMethod,
		ShipMethod: shipMethod,
		CouponCode: couponCode,
		CreatedAt:  s.now(),
	}

	if err := s.redis.Set(ctx, s.pendingKey(storageKey, pending.ID), pending, s.pendingTTL); err != nil {
		return nil, apperror.Unavailable("checkout storage unavailable", err)
	}

	s.log.WithFields(map[string]interface{}{
		"pending_id": pending.ID,
		"user":       storageKey,
		"total":      totals.Total,
	}).Info("Pending order created")

	return pending, nil
}

// PendingOrder возвращает отложенный заказ по идентификатору.
func (s *CheckoutService) PendingOrder(ctx context.Context, ident identity.Identity, pendingID int64) (*models.PendingOrder, error) {
	pending := &models.PendingOrder{}
	err := s.redis.Get(ctx, s.pendingKey(ident.StorageKey(), pendingID), pending)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, apperror.State("payment session expired", err)
		}
		return nil, apperror.Unavailable("checkout storage unavailable", err)
	}
	return pending, nil
}

// Finalize проводит оплату и записывает заказ одной транзакцией.
//
// Заказ, позиции, использование купона и начисление баллов фиксируются
// атомарно: либо всё, либо ничего. Повторная финализация того же
// отложенного заказа упирается в первичный ключ orders и возвращает
// конфликт без побочных эффектов.
func (s *CheckoutService) Finalize(ctx context.Context, ident identity.Identity, pendingID int64) (*models.Order, error) {
	pending, err := s.PendingOrder(ctx, ident, pendingID)
	if err != nil {
		return nil, err
	}

	payResult, err := s.processPayment(ctx, pending.PayMethod)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:         pending.ID,
		OrderCode:  s.orderCode(pending.ID),
		UserID:     pending.UserID,
		Items:      pending.Items,
		Totals:     pending.Totals,
		Name:       pending.Name,
		Email:      pending.Email,
		Address:    pending.Address,
		Billing:    pending.Billing,
		PayMethod:  pending.PayMethod,
		ShipMethod: pending.ShipMethod,
		CouponCode: pending.CouponCode,
		PayResult:  *payResult,
		CreatedAt:  s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertOrderTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.insertItemsTx(ctx, tx, order); err != nil {
		return nil, err
	}

	if order.CouponCode != nil && order.UserID != "" {
		if _, err := s.coupons.RecordRedemptionTx(ctx, tx, order.UserID, *order.CouponCode, order.ID); err != nil {
			return nil, err
		}
	}

	pointsEarned, newBalance := 0, 0
	if s.loyalty != nil && order.UserID != "" && s.pointsPerEuro > 0 {
		pointsEarned = int(math.Floor(order.Totals.Total * s.pointsPerEuro))
		if pointsEarned > 0 {
			ref := order.OrderCode
			newBalance, err = s.loyalty.EarnPointsTx(ctx, tx, order.UserID, pointsEarned, "order", &ref)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.cleanupAfterFinalize(ctx, ident, order)
	s.publishFinalized(order, pointsEarned, newBalance)

	s.log.WithFields(map[string]interface{}{
		"order_id":   order.ID,
		"order_code": order.OrderCode,
		"total":      order.Totals.Total,
	}).Info("Order finalized")

	return order, nil
}

// processPayment имитирует обращение к платежному шлюзу с задержкой.
func (s *CheckoutService) processPayment(ctx context.Context, method models.PaymentMethod) (*models.PaymentResult, error) {
	if s.paymentDelay > 0 {
		timer := time.NewTimer(s.paymentDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return &models.PaymentResult{
		Gateway: string(method),
		OK:      true,
		PaidAt:  s.now(),
	}, nil
}

func (s *CheckoutService) insertOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, order_code, user_id, name, email, address,
			billing_name, billing_address, billing_tax,
			pay_method, ship_method, coupon_code,
			subtotal, shipping, discount, total,
			gateway, paid_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	var billingName, billingAddress, billingTax *string
	if order.Billing != nil {
		billingName = &order.Billing.Name
		billingAddress = &order.Billing.Address
		if order.Billing.TaxCode != "" {
			billingTax = &order.Billing.TaxCode
		}
	}

	_, err := tx.ExecContext(ctx, query,
		order.ID, order.OrderCode, order.UserID, order.Name, order.Email, order.Address,
		billingName, billingAddress, billingTax,
		order.PayMethod, order.ShipMethod, order.CouponCode,
		order.Totals.Subtotal, order.Totals.Shipping, order.Totals.Discount, order.Totals.Total,
		order.PayResult.Gateway, order.PayResult.PaidAt, order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperror.Conflict("order already finalized", err)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *CheckoutService) insertItemsTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range order.Items {
		if _, err := tx.ExecContext(ctx, query, order.ID, line.ProductID, line.Name, line.Quantity, line.UnitPrice, line.Category); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

// cleanupAfterFinalize убирает следы сессии оформления. Заказ уже записан,
// поэтому ошибки здесь только логируются.
func (s *CheckoutService) cleanupAfterFinalize(ctx context.Context, ident identity.Identity, order *models.Order) {
	storageKey := ident.StorageKey()

	if err := s.redis.Delete(ctx, s.pendingKey(storageKey, order.ID)); err != nil {
		s.log.WithError(err).Warn("Failed to delete pending order")
	}
	if err := s.carts.Clear(ctx, storageKey); err != nil {
		s.log.WithError(err).Warn("Failed to clear cart after checkout")
	}
	if err := s.settings.ClearCoupon(ctx, storageKey); err != nil {
		s.log.WithError(err).Warn("Failed to clear applied coupon after checkout")
	}
	if err := s.settings.RememberCheckout(ctx, storageKey, order); err != nil {
		s.log.WithError(err).Warn("Failed to remember checkout details")
	}
}

func (s *CheckoutService) publishFinalized(order *models.Order, pointsEarned, newBalance int) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderFinalized(order); err != nil {
		s.log.WithError(err).Warn("Failed to publish order event")
	}
	if order.CouponCode != nil && order.UserID != "" {
		if err := s.events.PublishCouponRedeemed(order.UserID, *order.CouponCode, order.ID); err != nil {
			s.log.WithError(err).Warn("Failed to publish coupon event")
		}
	}
	if pointsEarned > 0 {
		if err := s.events.PublishPointsEarned(order.UserID, pointsEarned, newBalance); err != nil {
			s.log.WithError(err).Warn("Failed to publish loyalty event")
		}
	}
}

func (s *CheckoutService) snapshotLines(cart models.Cart) []models.OrderLine {
	var lines []models.OrderLine
	for id, qty := range cart {
		if qty <= 0 {
			continue
		}
		p := s.products.GetProduct(id)
		if p == nil {
			continue
		}
		lines = append(lines, models.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			UnitPrice: p.UnitPrice,
			Category:  p.Category,
		})
	}
	return lines
}

// newPendingID строит идентификатор отложенного заказа: старшие биты несут
// метку времени в миллисекундах, младшие — счетчик со случайным началом.
// Заказы разных пользователей в одну миллисекунду не делят идентификатор,
// и он же служит первичным ключом orders при финализации.
func (s *CheckoutService) newPendingID() int64 {
	seq := atomic.AddUint32(&s.pendingSeq, 1)
	return s.now().UnixMilli()<<10 | int64(seq&0x3ff)
}

// orderCode строит человекочитаемый код из последних цифр идентификатора.
func (s *CheckoutService) orderCode(id int64) string {
	mod := int64(1)
	for i := 0; i < s.codeDigits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("IANY-%0*d", s.codeDigits, id%mod)
}

func (s *CheckoutService) pendingKey(storageKey string, id int64) string {
	return redis.GenerateKey(redis.KeyPrefixPending, fmt.Sprintf("%s:%d", storageKey, id))
}
