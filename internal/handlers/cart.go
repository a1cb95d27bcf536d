package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// CartHandler обрабатывает операции с корзиной.
type CartHandler struct {
	carts CartManager
	log   *logger.Logger
}

// NewCartHandler создаёт обработчик корзины.
func NewCartHandler(carts CartManager, log *logger.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// cartView дополняет корзину суммарным количеством.
type cartView struct {
	Items         models.Cart `json:"items"`
	TotalQuantity int         `json:"total_quantity"`
}

// GetCart возвращает корзину клиента.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	cart, err := h.carts.Get(r.Context(), ident.StorageKey())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, cartView{Items: cart, TotalQuantity: cart.TotalQuantity()})
}

// AddItem добавляет товар в корзину.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	ident := identity.FromRequest(r)
	cart, err := h.carts.AddItem(r.Context(), ident.StorageKey(), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to add item to cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, cartView{Items: cart, TotalQuantity: cart.TotalQuantity()})
}

// SetQuantity выставляет количество строки корзины.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	productID = strings.Split(productID, "/")[0]
	if productID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	var req models.SetCartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	cart, err := h.carts.SetQuantity(r.Context(), ident.StorageKey(), productID, req.Quantity)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, cartView{Items: cart, TotalQuantity: cart.TotalQuantity()})
}

// RemoveItem удаляет строку корзины.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	productID = strings.Split(productID, "/")[0]
	if productID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	ident := identity.FromRequest(r)
	cart, err := h.carts.RemoveItem(r.Context(), ident.StorageKey(), productID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to remove item from cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, cartView{Items: cart, TotalQuantity: cart.TotalQuantity()})
}

// ClearCart очищает корзину.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if err := h.carts.Clear(r.Context(), ident.StorageKey()); err != nil {
		writeServiceError(w, h.log, err, "Failed to clear cart")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
