package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyTier представляет уровень программы лояльности
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

// TierForPoints возвращает уровень по накопленным баллам
func TierForPoints(points int) LoyaltyTier {
	switch {
	case points >= 5000:
		return TierPlatinum
	case points >= 2000:
		return TierGold
	case points >= 500:
		return TierSilver
	default:
		return TierBronze
	}
}

// LoyaltyAccount представляет счет баллов пользователя
type LoyaltyAccount struct {
	UserID        string      `json:"user_id" db:"user_id"`
	PointsBalance int         `json:"points_balance" db:"points_balance"`
	TotalEarned   int         `json:"total_earned" db:"total_earned"`
	Tier          LoyaltyTier `json:"tier" db:"tier"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// LoyaltyTransaction представляет движение баллов
type LoyaltyTransaction struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Points      int       `json:"points" db:"points"` // отрицательное значение — списание
	Reason      string    `json:"reason" db:"reason"`
	ReferenceID *string   `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RedeemPointsRequest представляет запрос на списание баллов
type RedeemPointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}
