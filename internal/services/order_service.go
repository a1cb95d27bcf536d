package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// trackingStatuses перечисляет этапы доставки в порядке прохождения.
var trackingStatuses = []string{
	"Ricevuto",
	"In preparazione",
	"Spedito",
	"In consegna",
	"Consegnato",
}

// trackingStepInterval — время между переходами на следующий этап.
const trackingStepInterval = 12 * time.Hour

// OrderService читает завершенные заказы и рассчитывает прогресс доставки.
type OrderService struct {
	db  *database.DB
	log *logger.Logger
	now func() time.Time
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(db *database.DB, log *logger.Logger) *OrderService {
	return &OrderService{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// GetOrder возвращает заказ пользователя вместе с позициями.
func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID int64) (*models.Order, error) {
	query := `
		SELECT id, order_code, user_id, name, email, address,
		       billing_name, billing_address, billing_tax,
		       pay_method, ship_method, coupon_code,
		       subtotal, shipping, discount, total,
		       gateway, paid_at, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	order := &models.Order{}
	var billingName, billingAddress, billingTax sql.NullString

	err := s.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID, &order.OrderCode, &order.UserID, &order.Name, &order.Email, &order.Address,
		&billingName, &billingAddress, &billingTax,
		&order.PayMethod, &order.ShipMethod, &order.CouponCode,
		&order.Totals.Subtotal, &order.Totals.Shipping, &order.Totals.Discount, &order.Totals.Total,
		&order.PayResult.Gateway, &order.PayResult.PaidAt, &order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order not found", err)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	order.PayResult.OK = true

	if billingName.Valid || billingAddress.Valid {
		order.Billing = &models.BillingInfo{
			Name:    billingName.String,
			Address: billingAddress.String,
			TaxCode: billingTax.String,
		}
	}

	items, err := s.orderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrders возвращает заказы пользователя от новых к старым.
func (s *OrderService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, order_code, user_id, ship_method,
		       subtotal, shipping, discount, total, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(
			&o.ID, &o.OrderCode, &o.UserID, &o.ShipMethod,
			&o.Totals.Subtotal, &o.Totals.Shipping, &o.Totals.Discount, &o.Totals.Total, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	for _, o := range orders {
		items, err := s.orderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	return orders, nil
}

// Tracking возвращает расчетный прогресс доставки заказа.
//
// Этапы не хранятся: статус выводится из времени создания заказа,
// по одному переходу каждые 12 часов до конечного статуса. Заказы
// без физических товаров отслеживания не имеют.
func (s *OrderService) Tracking(ctx context.Context, userID string, orderID int64) (*models.TrackingProgress, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.HasShippableItems() {
		return nil, apperror.NotFound("order has no shippable items", nil)
	}

	elapsed := s.now().Sub(order.CreatedAt)
	idx := int(elapsed / trackingStepInterval)
	if idx < 0 {
		idx = 0
	}
	if idx > len(trackingStatuses)-1 {
		idx = len(trackingStatuses) - 1
	}

	return &models.TrackingProgress{
		Status:       trackingStatuses[idx],
		TrackingCode: trackingCode(order.ID),
		Percent:      idx * 100 / (len(trackingStatuses) - 1),
	}, nil
}

func (s *OrderService) orderItems(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	query := `
		SELECT product_id, name, quantity, unit_price, category
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderLine
	for rows.Next() {
		line := models.OrderLine{}
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.UnitPrice, &line.Category); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, line)
	}

	return items, nil
}

// trackingCode выводится из идентификатора заказа, поэтому стабилен
// между запросами.
func trackingCode(orderID int64) string {
	return fmt.Sprintf("IANY%08d", orderID%100000000)
}
