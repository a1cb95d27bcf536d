package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CouponService управляет купонами и историей их использования.
type CouponService struct {
	db  *database.DB
	log *logger.Logger
	now func() time.Time
}

// NewCouponService создаёт сервис купонов.
func NewCouponService(db *database.DB, log *logger.Logger) *CouponService {
	return &CouponService{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// CreateCoupon создаёт новый купон. Код нормализуется к верхнему регистру.
func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	code := CanonicalCode(req.Code)
	if err := validateCouponPayload(code, req.Kind, req.Value); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	coupon := &models.Coupon{
		Code:      code,
		Kind:      req.Kind,
		Value:     req.Value,
		ExpiresAt: req.ExpiresAt,
		Active:    req.Active,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	query := `
		INSERT INTO coupons (code, kind, value, expires_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query, coupon.Code, coupon.Kind, coupon.Value, coupon.ExpiresAt, coupon.Active, coupon.CreatedAt, coupon.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("coupon already exists", err)
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.log.WithField("coupon", coupon.Code).Info("Coupon created")
	return coupon, nil
}

// UpdateCoupon обновляет параметры купона.
func (s *CouponService) UpdateCoupon(ctx context.Context, code string, req *models.UpdateCouponRequest) (*models.Coupon, error) {
	code = CanonicalCode(code)
	if err := validateCouponPayload(code, req.Kind, req.Value); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	query := `
		UPDATE coupons
		SET kind = $1, value = $2, expires_at = $3, active = $4, updated_at = $5
		WHERE code = $6
	`

	result, err := s.db.ExecContext(ctx, query, req.Kind, req.Value, req.ExpiresAt, req.Active, s.now(), code)
	if err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("coupon not found", nil)
	}

	return s.GetCoupon(ctx, code)
}

// DeleteCoupon удаляет купон.
func (s *CouponService) DeleteCoupon(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM coupons WHERE code = $1", CanonicalCode(code))
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("coupon not found", nil)
	}
	return nil
}

// GetCoupon возвращает купон по коду.
func (s *CouponService) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT code, kind, value, expires_at, active, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	coupon := &models.Coupon{}
	if err := s.db.QueryRowContext(ctx, query, CanonicalCode(code)).Scan(
		&coupon.Code, &coupon.Kind, &coupon.Value, &coupon.ExpiresAt, &coupon.Active, &coupon.CreatedAt, &coupon.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("coupon not found", err)
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

// ListCoupons возвращает список купонов.
func (s *CouponService) ListCoupons(ctx context.Context, limit, offset int) ([]*models.Coupon, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT code, kind, value, expires_at, active, created_at, updated_at
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		c := &models.Coupon{}
		if err := rows.Scan(&c.Code, &c.Kind, &c.Value, &c.ExpiresAt, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	return coupons, nil
}

// Validate проверяет, может ли пользователь использовать купон прямо сейчас.
//
// Проверка ничего не записывает: факт использования фиксируется только при
// завершении заказа. Применить, убрать и снова применить купон до оплаты
// можно сколько угодно раз. Сама проверка носит консультативный характер:
// гарантию единственности даёт уникальный индекс на (user_id, code).
func (s *CouponService) Validate(ctx context.Context, code, userID string) (*models.Coupon, error) {
	code = CanonicalCode(code)
	if code == "" {
		return nil, apperror.Validation("coupon code is required", nil)
	}
	if userID == "" {
		return nil, apperror.Unauthenticated("sign in to use coupon codes", nil)
	}

	coupon, err := s.GetCoupon(ctx, code)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("invalid coupon code", err)
		}
		return nil, err
	}

	if !coupon.Active {
		return nil, apperror.NotFound("invalid coupon code", nil)
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return nil, apperror.Conflict("coupon expired", nil)
	}

	used, err := s.hasRedemption(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, apperror.Conflict("coupon already used", nil)
	}

	return coupon, nil
}

// RecordRedemptionTx записывает факт использования купона в рамках транзакции
// завершения заказа. Уникальный индекс (user_id, code) гарантирует не более
// одного использования на аккаунт даже при конкурентных завершениях.
func (s *CouponService) RecordRedemptionTx(ctx context.Context, tx *sql.Tx, userID, code string, orderID int64) (*models.Redemption, error) {
	redemption := &models.Redemption{
		ID:         uuid.New(),
		UserID:     userID,
		Code:       CanonicalCode(code),
		OrderID:    &orderID,
		RedeemedAt: s.now(),
	}

	query := `
		INSERT INTO redemptions (id, user_id, code, order_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.ExecContext(ctx, query, redemption.ID, redemption.UserID, redemption.Code, redemption.OrderID, redemption.RedeemedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("coupon already used", err)
		}
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"user_id": userID,
		"coupon":  redemption.Code,
		"order":   orderID,
	}).Info("Coupon redemption recorded")

	return redemption, nil
}

func (s *CouponService) hasRedemption(ctx context.Context, userID, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM redemptions WHERE user_id = $1 AND code = $2)`
	if err := s.db.QueryRowContext(ctx, query, userID, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check redemption: %w", err)
	}
	return exists, nil
}

// CanonicalCode приводит код купона к каноничной форме.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateCouponPayload(code string, kind models.CouponKind, value float64) error {
	if code == "" {
		return fmt.Errorf("coupon code is required")
	}
	if len(code) > 64 {
		return fmt.Errorf("coupon code is too long")
	}
	switch kind {
	case models.CouponKindFixed:
		if value < 0 {
			return fmt.Errorf("value must be non-negative for fixed discount")
		}
	case models.CouponKindPercent:
		if value <= 0 || value > 100 {
			return fmt.Errorf("percent value must be between 0 and 100")
		}
	case models.CouponKindFreeShipping:
		// value is ignored
	default:
		return fmt.Errorf("invalid coupon kind")
	}
	return nil
}
