package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
	"github.com/IanyTech/iany-gaming/internal/services"
)

// CheckoutHandler обрабатывает расчет сумм и оформление заказа.
type CheckoutHandler struct {
	checkout CheckoutManager
	pricing  TotalsComputer
	carts    CartManager
	settings SettingsManager
	log      *logger.Logger
}

// NewCheckoutHandler создаёт обработчик оформления.
func NewCheckoutHandler(checkout CheckoutManager, pricing TotalsComputer, carts CartManager, settings SettingsManager, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		pricing:  pricing,
		carts:    carts,
		settings: settings,
		log:      log,
	}
}

// totalsRequest позволяет переопределить способ доставки при расчете.
type totalsRequest struct {
	ShipMethod models.ShippingMethod `json:"ship_method,omitempty"`
}

// ComputeTotals рассчитывает суммы текущей корзины без побочных эффектов.
func (h *CheckoutHandler) ComputeTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.ShipMethod == "" {
		req.ShipMethod = models.ShippingMethod(r.URL.Query().Get("ship_method"))
	}

	ident := identity.FromRequest(r)
	storageKey := ident.StorageKey()

	cart, err := h.carts.Get(r.Context(), storageKey)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to compute totals")
		return
	}

	coupon, err := h.settings.AppliedCoupon(r.Context(), storageKey)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to compute totals")
		return
	}

	totals := h.pricing.ComputeTotals(r.Context(), services.ComputeTotalsInput{
		Cart:       cart,
		ShipMethod: req.ShipMethod,
		CouponCode: coupon,
		UserID:     ident.UserID,
		StorageKey: storageKey,
	})

	writeJSONResponse(w, http.StatusOK, totals)
}

// StartCheckout строит отложенный заказ из корзины и формы оформления.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	pending, err := h.checkout.BuildPendingOrder(r.Context(), ident, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to start checkout")
		return
	}

	writeJSONResponse(w, http.StatusCreated, pending)
}

// GetPendingOrder возвращает отложенный заказ.
func (h *CheckoutHandler) GetPendingOrder(w http.ResponseWriter, r *http.Request) {
	id, err := extractOrderIDFromPath(r.URL.Path, "/api/checkout/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ident := identity.FromRequest(r)
	pending, err := h.checkout.PendingOrder(r.Context(), ident, id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get pending order")
		return
	}

	writeJSONResponse(w, http.StatusOK, pending)
}

// Pay финализирует отложенный заказ: проводит оплату и записывает заказ.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := extractOrderIDFromPath(r.URL.Path, "/api/checkout/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ident := identity.FromRequest(r)
	order, err := h.checkout.Finalize(r.Context(), ident, id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to finalize order")
		return
	}

	writeJSONResponse(w, http.StatusCreated, order)
}
