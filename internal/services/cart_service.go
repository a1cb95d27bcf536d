package services

import (
	"context"
	"errors"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/redis"
)

// CartService управляет корзинами покупателей в key-value хранилище.
// Корзина хранится одной JSON-записью на пользователя.
type CartService struct {
	redis    *redis.Client
	products ProductProvider
	log      *logger.Logger
	maxQty   int
}

// NewCartService создаёт сервис корзины.
func NewCartService(redisClient *redis.Client, products ProductProvider, log *logger.Logger, maxQtyPerLine int) *CartService {
	if maxQtyPerLine <= 0 {
		maxQtyPerLine = 99
	}
	return &CartService{
		redis:    redisClient,
		products: products,
		log:      log,
		maxQty:   maxQtyPerLine,
	}
}

// Get возвращает корзину пользователя. Отсутствующая запись трактуется
// как пустая корзина; ошибка хранилища возвращается вызывающему.
func (s *CartService) Get(ctx context.Context, storageKey string) (models.Cart, error) {
	cart := models.Cart{}
	err := s.redis.Get(ctx, s.key(storageKey), &cart)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return models.Cart{}, nil
		}
		return nil, apperror.Unavailable("cart storage unavailable", err)
	}
	return cart, nil
}

// AddItem добавляет товар в корзину (или увеличивает количество).
func (s *CartService) AddItem(ctx context.Context, storageKey, productID string, qty int) (models.Cart, error) {
	if qty <= 0 {
		qty = 1
	}
	if s.products.GetProduct(productID) == nil {
		return nil, apperror.NotFound("product not found", nil)
	}

	cart, err := s.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}

	next := cart[productID] + qty
	if next > s.maxQty {
		next = s.maxQty
	}
	cart[productID] = next

	if err := s.save(ctx, storageKey, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity выставляет количество строки; ноль удаляет строку.
func (s *CartService) SetQuantity(ctx context.Context, storageKey, productID string, qty int) (models.Cart, error) {
	if qty < 0 {
		return nil, apperror.Validation("quantity must be non-negative", nil)
	}
	if qty > s.maxQty {
		qty = s.maxQty
	}

	cart, err := s.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}

	if qty == 0 {
		delete(cart, productID)
	} else {
		if s.products.GetProduct(productID) == nil {
			return nil, apperror.NotFound("product not found", nil)
		}
		cart[productID] = qty
	}

	if err := s.save(ctx, storageKey, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem удаляет строку корзины.
func (s *CartService) RemoveItem(ctx context.Context, storageKey, productID string) (models.Cart, error) {
	return s.SetQuantity(ctx, storageKey, productID, 0)
}

// Clear очищает корзину пользователя.
func (s *CartService) Clear(ctx context.Context, storageKey string) error {
	if err := s.redis.Delete(ctx, s.key(storageKey)); err != nil {
		return apperror.Unavailable("cart storage unavailable", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, storageKey string, cart models.Cart) error {
	if err := s.redis.Set(ctx, s.key(storageKey), cart, 0); err != nil {
		return apperror.Unavailable("cart storage unavailable", err)
	}
	return nil
}

func (s *CartService) key(storageKey string) string {
	return redis.GenerateKey(redis.KeyPrefixCart, storageKey)
}
