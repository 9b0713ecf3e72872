// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/supabase"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userIDContextKey    = contextKey("user_id")
	userEmailContextKey = contextKey("user_email")
)

// ErrNoUserInContext は認証ミドルウェアを通過していないリクエストを表す。
var ErrNoUserInContext = errors.New("user ID not found in context")

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。無ければ空文字列を返す。
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// NewAuthMiddleware はBearerトークンを検証し、ユーザーIDとメールアドレスを
// リクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い、または検証に失敗した場合は401を返す。
func NewAuthMiddleware(verifier supabase.TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				slog.Warn("token verification failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithUser(r.Context(), user.ID, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUserInContext
	}
	return userID, nil
}

// UserEmailFromContext はリクエストコンテキストからメールアドレスを取得する。
func UserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userEmailContextKey).(string)
	return email
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithUser はコンテキストにユーザーIDとメールアドレスを注入する。
func ContextWithUser(ctx context.Context, userID, email string) context.Context {
	recordUserForLog(ctx, userID)
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, userEmailContextKey, email)
}
