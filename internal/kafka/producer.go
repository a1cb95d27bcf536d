package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"

	"github.com/IBM/sarama"
)

// Producer публикует события магазина в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный продюсер Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает продюсер
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishOrderFinalized публикует событие о завершенном заказе
func (p *Producer) PublishOrderFinalized(order *models.Order) error {
	event := models.NewEvent(models.EventTypeOrderFinalized, map[string]interface{}{
		"order_id":   order.ID,
		"order_code": order.OrderCode,
		"user_id":    order.UserID,
		"total":      order.Totals.Total,
		"gateway":    order.PayResult.Gateway,
	})
	return p.publishEvent(p.topics.Orders, *event)
}

// PublishCouponRedeemed публикует событие об использовании купона
func (p *Producer) PublishCouponRedeemed(userID, code string, orderID int64) error {
	event := models.NewEvent(models.EventTypeCouponRedeemed, map[string]interface{}{
		"user_id":  userID,
		"code":     code,
		"order_id": orderID,
	})
	return p.publishEvent(p.topics.Coupons, *event)
}

// PublishPointsEarned публикует событие о начислении баллов
func (p *Producer) PublishPointsEarned(userID string, points, newBalance int) error {
	event := models.NewEvent(models.EventTypePointsEarned, map[string]interface{}{
		"user_id":     userID,
		"points":      points,
		"new_balance": newBalance,
	})
	return p.publishEvent(p.topics.Loyalty, *event)
}

// PublishPointsRedeemed публикует событие о списании баллов
func (p *Producer) PublishPointsRedeemed(userID string, points, newBalance int) error {
	event := models.NewEvent(models.EventTypePointsRedeemed, map[string]interface{}{
		"user_id":     userID,
		"points":      points,
		"new_balance": newBalance,
	})
	return p.publishEvent(p.topics.Loyalty, *event)
}

// publishEvent сериализует и отправляет событие в топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(event.ID.String()),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"type":      event.Type,
	}).Debug("Event published")

	return nil
}
