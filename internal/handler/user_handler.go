package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/eduassist/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// GetProfile はプロフィールを返す。無い場合や取得失敗時はnil。
	GetProfile(ctx context.Context, userID string) *model.User
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile はログイン中ユーザーのプロフィールを返す。
// プロフィールが無い場合はprofileをnullとして返す。
// GET /user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var profile *profileResponse
	if u := h.service.GetProfile(r.Context(), userID); u != nil {
		profile = &profileResponse{
			ID:        u.ID,
			Email:     u.Email,
			IsPremium: u.IsPremium,
			CreatedAt: u.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"profile": profile,
	})
}
