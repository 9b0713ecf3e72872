package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/eduassist/internal/middleware"
	"github.com/hitoshi/eduassist/internal/supabase"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest はサインアップ・サインインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpResponse struct {
	Success bool               `json:"success"`
	User    *supabase.AuthUser `json:"user"`
	Session *supabase.Session  `json:"session"`
	Message string             `json:"message"`
}

type signInResponse struct {
	Success     bool               `json:"success"`
	User        *supabase.AuthUser `json:"user"`
	Session     *supabase.Session  `json:"session"`
	AccessToken string             `json:"access_token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SignUp はユーザー登録を処理する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signUpResponse{
		Success: true,
		User:    result.User,
		Session: result.Session,
		Message: "User created successfully",
	})
}

// SignIn はメールアドレスとパスワードでのログインを処理する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		Success:     true,
		User:        result.User,
		Session:     result.Session,
		AccessToken: result.Session.AccessToken,
	})
}

// SignOut はログアウトを処理する。Bearerトークンは任意。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), middleware.BearerToken(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Signed out successfully",
	})
}
