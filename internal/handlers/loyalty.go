package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// LoyaltyHandler обрабатывает программу лояльности.
type LoyaltyHandler struct {
	loyalty LoyaltyManager
	log     *logger.Logger
}

// NewLoyaltyHandler создаёт обработчик лояльности.
func NewLoyaltyHandler(loyalty LoyaltyManager, log *logger.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyalty: loyalty,
		log:     log,
	}
}

// GetAccount возвращает счет баллов текущего пользователя.
func (h *LoyaltyHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	account, err := h.loyalty.GetAccount(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get loyalty account")
		return
	}
	writeJSONResponse(w, http.StatusOK, account)
}

// ListTransactions возвращает историю движения баллов.
func (h *LoyaltyHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	limit, _ := parseLimitOffset(r, 50, 200)

	transactions, err := h.loyalty.ListTransactions(r.Context(), ident.UserID, limit)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list loyalty transactions")
		return
	}
	writeJSONResponse(w, http.StatusOK, transactions)
}

// RedeemPoints списывает баллы пользователя.
func (h *LoyaltyHandler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	account, err := h.loyalty.RedeemPoints(r.Context(), ident.UserID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to redeem points")
		return
	}
	writeJSONResponse(w, http.StatusOK, account)
}

// ClaimBirthday начисляет подарочные баллы в день рождения.
func (h *LoyaltyHandler) ClaimBirthday(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	account, err := h.loyalty.AwardBirthdayPoints(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to claim birthday points")
		return
	}
	writeJSONResponse(w, http.StatusOK, account)
}
