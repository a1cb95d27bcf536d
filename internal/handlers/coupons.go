package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// CouponHandler обрабатывает проверку и применение купонов, а также
// административный CRUD.
type CouponHandler struct {
	coupons  CouponManager
	settings SettingsManager
	log      *logger.Logger
}

// NewCouponHandler создаёт обработчик купонов.
func NewCouponHandler(coupons CouponManager, settings SettingsManager, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		coupons:  coupons,
		settings: settings,
		log:      log,
	}
}

// ValidateCoupon проверяет купон без применения.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	coupon, err := h.coupons.Validate(r.Context(), req.Code, ident.UserID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to validate coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// ApplyCoupon проверяет купон и запоминает его в настройках сессии.
// Применение обратимо: использование фиксируется только при завершении заказа.
func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	coupon, err := h.coupons.Validate(r.Context(), req.Code, ident.UserID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to apply coupon")
		return
	}

	if err := h.settings.ApplyCoupon(r.Context(), ident.StorageKey(), coupon.Code); err != nil {
		writeServiceError(w, h.log, err, "Failed to apply coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// RemoveAppliedCoupon убирает примененный купон из сессии.
func (h *CouponHandler) RemoveAppliedCoupon(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if err := h.settings.ClearCoupon(r.Context(), ident.StorageKey()); err != nil {
		writeServiceError(w, h.log, err, "Failed to remove coupon")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Coupon removed"})
}

// CreateCoupon создаёт купон.
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.coupons.CreateCoupon(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create coupon")
		return
	}

	writeJSONResponse(w, http.StatusCreated, coupon)
}

// ListCoupons возвращает список купонов.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)

	coupons, err := h.coupons.ListCoupons(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list coupons")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupons)
}

// GetCoupon возвращает купон по коду.
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	code, err := extractCodeFromPath(r.URL.Path, "/api/coupons/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	coupon, err := h.coupons.GetCoupon(r.Context(), code)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// UpdateCoupon обновляет купон.
func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	code, err := extractCodeFromPath(r.URL.Path, "/api/coupons/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.coupons.UpdateCoupon(r.Context(), code, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, coupon)
}

// DeleteCoupon удаляет купон.
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	code, err := extractCodeFromPath(r.URL.Path, "/api/coupons/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coupons.DeleteCoupon(r.Context(), code); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}
