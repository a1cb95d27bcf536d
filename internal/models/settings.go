package models

// UserSettings представляет настройки пользователя, хранимые как JSON-запись.
// Сюда входят предпочтения оформления заказа и примененный купон сессии.
type UserSettings struct {
	Name           string         `json:"name,omitempty"`
	Email          string         `json:"email,omitempty"`
	Address        string         `json:"address,omitempty"`
	BillingName    string         `json:"billing_name,omitempty"`
	BillingAddress string         `json:"billing_address,omitempty"`
	BillingTax     string         `json:"billing_tax,omitempty"`
	ShipMethod     ShippingMethod `json:"ship_method,omitempty"`
	AppliedCoupon  string         `json:"applied_coupon,omitempty"`
	Currency       string         `json:"currency,omitempty"`
}
