package models

import "time"

// ShippingMethod представляет способ доставки
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// Valid проверяет, что способ доставки известен
func (m ShippingMethod) Valid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

// PaymentMethod представляет выбранный способ оплаты
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentAmex   PaymentMethod = "amex"
	PaymentPaypal PaymentMethod = "paypal"
)

// Totals представляет рассчитанные суммы заказа в базовой валюте
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// OrderLine представляет строку заказа со снимком цены на момент оформления
type OrderLine struct {
	ProductID string   `json:"product_id" db:"product_id"`
	Name      string   `json:"name" db:"name"`
	Quantity  int      `json:"quantity" db:"quantity"`
	UnitPrice float64  `json:"unit_price" db:"unit_price"`
	Category  Category `json:"category" db:"category"`
}

// BillingInfo представляет отдельные платежные реквизиты
type BillingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxCode string `json:"tax_code,omitempty"`
}

// PendingOrder представляет снимок оформляемого заказа до оплаты.
// ID выводится из метки времени создания (unix-миллисекунды).
type PendingOrder struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"user_id"`
	Items      []OrderLine    `json:"items"`
	Totals     Totals         `json:"totals"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Address    string         `json:"address"`
	Billing    *BillingInfo   `json:"billing,omitempty"`
	PayMethod  PaymentMethod  `json:"pay_method"`
	ShipMethod ShippingMethod `json:"ship_method"`
	CouponCode *string        `json:"coupon_code,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PaymentResult представляет результат работы платежного шлюза
type PaymentResult struct {
	Gateway string    `json:"gateway"`
	OK      bool      `json:"ok"`
	PaidAt  time.Time `json:"paid_at"`
}

// Order представляет завершенный заказ. Записи не изменяются после создания.
type Order struct {
	ID         int64          `json:"id" db:"id"`
	OrderCode  string         `json:"order_code" db:"order_code"`
	UserID     string         `json:"user_id" db:"user_id"`
	Items      []OrderLine    `json:"items"`
	Totals     Totals         `json:"totals"`
	Name       string         `json:"name" db:"name"`
	Email      string         `json:"email" db:"email"`
	Address    string         `json:"address" db:"address"`
	Billing    *BillingInfo   `json:"billing,omitempty"`
	PayMethod  PaymentMethod  `json:"pay_method" db:"pay_method"`
	ShipMethod ShippingMethod `json:"ship_method" db:"ship_method"`
	CouponCode *string        `json:"coupon_code,omitempty" db:"coupon_code"`
	PayResult  PaymentResult  `json:"pay_result"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// HasShippableItems сообщает, есть ли в заказе физические товары
func (o *Order) HasShippableItems() bool {
	for _, line := range o.Items {
		if !line.Category.Digital() {
			return true
		}
	}
	return false
}

// CheckoutRequest представляет данные формы оформления заказа
type CheckoutRequest struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Address       string         `json:"address"`
	TermsAccepted bool           `json:"terms_accepted"`
	PayMethod     PaymentMethod  `json:"pay_method,omitempty"`
	ShipMethod    ShippingMethod `json:"ship_method,omitempty"`
	Billing       *BillingInfo   `json:"billing,omitempty"`
}

// TrackingProgress представляет расчетный прогресс доставки заказа
type TrackingProgress struct {
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code"`
	Percent      int    `json:"percent"`
}
