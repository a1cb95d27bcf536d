package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// CatalogHandler отдает каталог товаров, опционально с ценами в валюте отображения.
type CatalogHandler struct {
	catalog CatalogProvider
	fx      CurrencyConverter
	log     *logger.Logger
}

// NewCatalogHandler создаёт обработчик каталога.
func NewCatalogHandler(catalog CatalogProvider, fx CurrencyConverter, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		fx:      fx,
		log:     log,
	}
}

// productView дополняет товар ценой в валюте отображения.
type productView struct {
	models.Product
	DisplayPrice    *float64 `json:"display_price,omitempty"`
	DisplayCurrency string   `json:"display_currency,omitempty"`
}

// ListProducts возвращает все товары каталога.
// Параметр ?currency=USD добавляет цены в валюте отображения.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	products := h.catalog.List()
	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))

	if currency == "" || currency == "EUR" || h.fx == nil {
		writeJSONResponse(w, http.StatusOK, products)
		return
	}

	rate, err := h.fx.Rate(r.Context(), currency)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to convert prices")
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		converted := round2(p.UnitPrice * rate.Rate)
		views = append(views, productView{
			Product:         p,
			DisplayPrice:    &converted,
			DisplayCurrency: currency,
		})
	}

	writeJSONResponse(w, http.StatusOK, views)
}

// GetProduct возвращает товар по идентификатору.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/products/")
	id = strings.Split(id, "/")[0]
	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	product := h.catalog.GetProduct(id)
	if product == nil {
		writeErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	writeJSONResponse(w, http.StatusOK, product)
}

// Currencies возвращает поддерживаемые валюты отображения.
func (h *CatalogHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if h.fx == nil {
		writeJSONResponse(w, http.StatusOK, []string{"EUR"})
		return
	}
	writeJSONResponse(w, http.StatusOK, h.fx.SupportedCurrencies())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
