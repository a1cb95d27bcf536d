package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/chatbot"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

const (
	chatMemoryTTL     = 30 * time.Minute
	maxChatMessageLen = 500
)

// ChatService отвечает на сообщения поддержки, сохраняя память диалога
// между запросами одной сессии.
type ChatService struct {
	redis *redis.Client
	log   *logger.Logger
}

// NewChatService создаёт сервис чата.
func NewChatService(redisClient *redis.Client, log *logger.Logger) *ChatService {
	return &ChatService{
		redis: redisClient,
		log:   log,
	}
}

// Reply обрабатывает сообщение и возвращает ответ бота.
func (s *ChatService) Reply(ctx context.Context, storageKey, message string) (*chatbot.Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.Validation("message is required", nil)
	}
	if len(message) > maxChatMessageLen {
		return nil, apperror.Validation("message is too long", nil)
	}

	key := redis.GenerateKey(redis.KeyPrefixChat, storageKey)

	mem := &chatbot.Memory{}
	if err := s.redis.Get(ctx, key, mem); err != nil && !errors.Is(err, redis.ErrKeyNotFound) {
		s.log.WithError(err).Debug("Failed to load chat memory, starting fresh")
		mem = &chatbot.Memory{}
	}

	response := chatbot.Reply(message, mem)

	if err := s.redis.Set(ctx, key, mem, chatMemoryTTL); err != nil {
		s.log.WithError(err).Warn("Failed to save chat memory")
	}

	return &response, nil
}

// Reset очищает память диалога.
func (s *ChatService) Reset(ctx context.Context, storageKey string) error {
	if err := s.redis.Delete(ctx, redis.GenerateKey(redis.KeyPrefixChat, storageKey)); err != nil {
		return apperror.Unavailable("chat storage unavailable", err)
	}
	return nil
}
