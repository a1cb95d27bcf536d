package handlers

import (
	"context"

	"github.com/IanyTech/iany-gaming/internal/chatbot"
	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/services"
)

// ----- Catalog -----

type CatalogProvider interface {
	GetProduct(id string) *models.Product
	List() []models.Product
}

// ----- Cart -----

type CartManager interface {
	Get(ctx context.Context, storageKey string) (models.Cart, error)
	AddItem(ctx context.Context, storageKey, productID string, qty int) (models.Cart, error)
	SetQuantity(ctx context.Context, storageKey, productID string, qty int) (models.Cart, error)
	RemoveItem(ctx context.Context, storageKey, productID string) (models.Cart, error)
	Clear(ctx context.Context, storageKey string) error
}

// ----- Settings -----

type SettingsManager interface {
	Get(ctx context.Context, storageKey string) (*models.UserSettings, error)
	Update(ctx context.Context, storageKey string, settings *models.UserSettings) error
	ApplyCoupon(ctx context.Context, storageKey, code string) error
	ClearCoupon(ctx context.Context, storageKey string) error
	AppliedCoupon(ctx context.Context, storageKey string) (string, error)
}

// ----- Coupons -----

type CouponManager interface {
	CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error)
	UpdateCoupon(ctx context.Context, code string, req *models.UpdateCouponRequest) (*models.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
	GetCoupon(ctx context.Context, code string) (*models.Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]*models.Coupon, error)
	Validate(ctx context.Context, code, userID string) (*models.Coupon, error)
}

// ----- Pricing / Checkout -----

type TotalsComputer interface {
	ComputeTotals(ctx context.Context, in services.ComputeTotalsInput) models.Totals
}

type CheckoutManager interface {
	BuildPendingOrder(ctx context.Context, ident identity.Identity, req *models.CheckoutRequest) (*models.PendingOrder, error)
	PendingOrder(ctx context.Context, ident identity.Identity, pendingID int64) (*models.PendingOrder, error)
	Finalize(ctx context.Context, ident identity.Identity, pendingID int64) (*models.Order, error)
}

// ----- Orders -----

type OrderReader interface {
	GetOrder(ctx context.Context, userID string, orderID int64) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error)
	Tracking(ctx context.Context, userID string, orderID int64) (*models.TrackingProgress, error)
}

// ----- Loyalty -----

type LoyaltyManager interface {
	GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error)
	RedeemPoints(ctx context.Context, userID string, req *models.RedeemPointsRequest) (*models.LoyaltyAccount, error)
	AwardBirthdayPoints(ctx context.Context, userID string) (*models.LoyaltyAccount, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.LoyaltyTransaction, error)
}

// ----- Chat -----

type ChatResponder interface {
	Reply(ctx context.Context, storageKey, message string) (*chatbot.Response, error)
	Reset(ctx context.Context, storageKey string) error
}

// ----- FX -----

type CurrencyConverter interface {
	Rate(ctx context.Context, currency string) (*services.FXRate, error)
	Convert(ctx context.Context, amount float64, currency string) (float64, *services.FXRate, error)
	SupportedCurrencies() []string
}

// ----- Analytics -----

type AnalyticsProvider interface {
	GetKPIs(ctx context.Context, filter *models.AnalyticsFilter) (*models.KPIMetrics, error)
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
