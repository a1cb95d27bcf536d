package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/models"
)

type stubLoyaltyManager struct {
	account      *models.LoyaltyAccount
	transactions []*models.LoyaltyTransaction
	err          error
}

func (s *stubLoyaltyManager) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	return s.account, s.err
}
func (s *stubLoyaltyManager) RedeemPoints(ctx context.Context, userID string, req *models.RedeemPointsRequest) (*models.LoyaltyAccount, error) {
	return s.account, s.err
}
func (s *stubLoyaltyManager) AwardBirthdayPoints(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	return s.account, s.err
}
func (s *stubLoyaltyManager) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.LoyaltyTransaction, error) {
	return s.transactions, s.err
}

func testLoyaltyAccount() *models.LoyaltyAccount {
	return &models.LoyaltyAccount{
		UserID:        "u1",
		PointsBalance: 150,
		TotalEarned:   650,
		Tier:          models.TierSilver,
	}
}

func TestLoyaltyHandler_GetAccount(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{account: testLoyaltyAccount()}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/loyalty/account", nil)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.GetAccount(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_GetAccount_Unauthenticated(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{err: apperror.Unauthenticated("sign in to view loyalty account", nil)}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/loyalty/account", nil)
	rr := httptest.NewRecorder()
	handler.GetAccount(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_RedeemPoints(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{account: testLoyaltyAccount()}, newHandlerLogger())

	body := bytes.NewBufferString(`{"points":40,"reason":"discount"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/redeem", body)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.RedeemPoints(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_RedeemPoints_Insufficient(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{err: apperror.Conflict("insufficient points", nil)}, newHandlerLogger())

	body := bytes.NewBufferString(`{"points":9999}`)
	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/redeem", body)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.RedeemPoints(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_RedeemPoints_InvalidBody(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/redeem", bytes.NewBufferString("bad json"))
	rr := httptest.NewRecorder()
	handler.RedeemPoints(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_ClaimBirthday(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{account: testLoyaltyAccount()}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/birthday", nil)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.ClaimBirthday(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_ClaimBirthday_AlreadyClaimed(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{err: apperror.Conflict("birthday points already claimed this year", nil)}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/loyalty/birthday", nil)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.ClaimBirthday(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestLoyaltyHandler_ListTransactions(t *testing.T) {
	handler := NewLoyaltyHandler(&stubLoyaltyManager{transactions: []*models.LoyaltyTransaction{}}, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/loyalty/transactions?limit=10", nil)
	req.Header.Set(identity.HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	handler.ListTransactions(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
