package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события
type EventType string

const (
	EventTypeOrderFinalized EventType = "order.finalized"
	EventTypeCouponRedeemed EventType = "coupon.redeemed"
	EventTypePointsEarned   EventType = "loyalty.points_earned"
	EventTypePointsRedeemed EventType = "loyalty.points_redeemed"
)

// Event представляет событие для шины сообщений
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewEvent создает событие с заполненными служебными полями
func NewEvent(eventType EventType, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
