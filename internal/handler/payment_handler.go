package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eduassist/internal/middleware"
	"github.com/hitoshi/eduassist/internal/model"
)

// PaymentServiceInterface は決済ハンドラーが必要とするサービスインターフェース。
type PaymentServiceInterface interface {
	Initiate(ctx context.Context, userID string, amount float64, phoneNumber, email string) (map[string]any, error)
	CheckStatus(ctx context.Context, userID, transactionID string) (map[string]any, error)
	Plans() []model.Plan
}

// PaymentHandler は決済のHTTPハンドラー。
type PaymentHandler struct {
	service PaymentServiceInterface
}

// NewPaymentHandler はPaymentHandlerを生成する。
func NewPaymentHandler(service PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type initiatePaymentRequest struct {
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email"`
}

// Initiate はM-Pesa決済を開始する。
// emailが省略された場合はアクセストークンのメールアドレスを使う。
// POST /payment/initiate
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req initiatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = middleware.UserEmailFromContext(r.Context())
	}

	data, err := h.service.Initiate(r.Context(), userID, req.Amount, req.PhoneNumber, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"payment_data": data,
		"message":      "Payment initiated successfully",
	})
}

// Status は決済状態を問い合わせる。
// GET /payment/status/{transaction_id}
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	data, err := h.service.CheckStatus(r.Context(), userID, chi.URLParam(r, "transaction_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"payment_status": data,
	})
}

// Plans はプレミアムプランの一覧を返す。認証不要。
// GET /payment/plans
func (h *PaymentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"plans":   h.service.Plans(),
	})
}
