package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/models"
)

func TestCartHandler_GetCart(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{cart: models.Cart{"gt7": 2}}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	handler.GetCart(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var view struct {
		Items         models.Cart `json:"items"`
		TotalQuantity int         `json:"total_quantity"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.TotalQuantity != 2 || view.Items["gt7"] != 2 {
		t.Fatalf("unexpected cart view: %+v", view)
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{cart: models.Cart{"gt7": 1}}, newHandlerLogger())

	body := bytes.NewBufferString(`{"product_id":"gt7"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", body)
	rr := httptest.NewRecorder()
	handler.AddItem(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCartHandler_AddItem_MissingProduct(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(`{"product_id":"  "}`))
	rr := httptest.NewRecorder()
	handler.AddItem(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCartHandler_AddItem_UnknownProduct(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{err: apperror.NotFound("product not found", nil)}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(`{"product_id":"nope"}`))
	rr := httptest.NewRecorder()
	handler.AddItem(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCartHandler_SetQuantity(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{cart: models.Cart{"gt7": 3}}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/gt7", bytes.NewBufferString(`{"quantity":3}`))
	rr := httptest.NewRecorder()
	handler.SetQuantity(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCartHandler_SetQuantity_MissingProduct(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/", bytes.NewBufferString(`{"quantity":3}`))
	rr := httptest.NewRecorder()
	handler.SetQuantity(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCartHandler_RemoveItemAndClear(t *testing.T) {
	handler := NewCartHandler(&stubCartManager{cart: models.Cart{}}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/gt7", nil)
	rr := httptest.NewRecorder()
	handler.RemoveItem(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	reqClear := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	rrClear := httptest.NewRecorder()
	handler.ClearCart(rrClear, reqClear)
	if rrClear.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rrClear.Code)
	}
}
