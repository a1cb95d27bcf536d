package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponKind описывает тип скидки купона.
type CouponKind string

const (
	CouponKindFixed        CouponKind = "fixed"
	CouponKindPercent      CouponKind = "percent"
	CouponKindFreeShipping CouponKind = "free_shipping"
)

// Coupon представляет купон. Код хранится в каноничном верхнем регистре.
type Coupon struct {
	Code      string     `json:"code" db:"code"`
	Kind      CouponKind `json:"kind" db:"kind"`
	Value     float64    `json:"value" db:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Redemption фиксирует факт использования купона пользователем.
// На пару (user_id, code) существует не более одной записи.
type Redemption struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Code       string    `json:"code" db:"code"`
	OrderID    *int64    `json:"order_id,omitempty" db:"order_id"`
	RedeemedAt time.Time `json:"redeemed_at" db:"redeemed_at"`
}

// CreateCouponRequest описывает запрос на создание купона.
type CreateCouponRequest struct {
	Code      string     `json:"code"`
	Kind      CouponKind `json:"kind"`
	Value     float64    `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Active    bool       `json:"active"`
}

// UpdateCouponRequest описывает запрос на обновление купона.
type UpdateCouponRequest struct {
	Kind      CouponKind `json:"kind"`
	Value     float64    `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Active    bool       `json:"active"`
}

// ValidateCouponRequest описывает запрос на предварительную проверку купона.
type ValidateCouponRequest struct {
	Code string `json:"code"`
}
