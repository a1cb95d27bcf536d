package handlers

import (
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
)

// OrdersHandler отдает завершенные заказы пользователя и их трекинг.
type OrdersHandler struct {
	orders OrderReader
	log    *logger.Logger
}

// NewOrdersHandler создаёт обработчик заказов.
func NewOrdersHandler(orders OrderReader, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		log:    log,
	}
}

// ListOrders возвращает заказы текущего пользователя.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if !ident.Authenticated() {
		writeErrorResponse(w, http.StatusUnauthorized, "Sign in to view orders")
		return
	}

	limit, offset := parseLimitOffset(r, 20, 100)
	orders, err := h.orders.ListOrders(r.Context(), ident.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list orders")
		return
	}

	writeJSONResponse(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ по идентификатору.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if !ident.Authenticated() {
		writeErrorResponse(w, http.StatusUnauthorized, "Sign in to view orders")
		return
	}

	id, err := extractOrderIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.GetOrder(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get order")
		return
	}

	writeJSONResponse(w, http.StatusOK, order)
}

// GetTracking возвращает прогресс доставки заказа.
func (h *OrdersHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if !ident.Authenticated() {
		writeErrorResponse(w, http.StatusUnauthorized, "Sign in to view orders")
		return
	}

	id, err := extractOrderIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.orders.Tracking(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get tracking")
		return
	}

	writeJSONResponse(w, http.StatusOK, progress)
}
