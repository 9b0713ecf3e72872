// Package supabase はSupabase Auth (GoTrue) REST APIのクライアントを提供する。
// サインアップ、サインイン、サインアウト、アクセストークン検証を行う。
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// AuthUser はSupabase Authのユーザー情報。
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	Aud          string         `json:"aud,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Session はSupabase Authが発行するセッション。
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
}

// AuthResult はサインアップ・サインインの結果。
// メール確認が必要な設定ではSessionがnilになる。
type AuthResult struct {
	User    *AuthUser
	Session *Session
}

// Error はSupabase Authが非2xxを返したときのエラー。
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Client はSupabase Auth REST APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	anonKey    string
}

// NewClient はClientを生成する。baseURLはプロジェクトURL（例: https://xxx.supabase.co）。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, anonKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUpResponse はサインアップのレスポンス。
// 確認メール待ちの場合はユーザーオブジェクトそのもの、即時ログインの場合はセッションが返る。
type signUpResponse struct {
	Session
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp はメールアドレスとパスワードでユーザーを登録する。
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp signUpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{email, password}, &resp); err != nil {
		return nil, err
	}

	result := &AuthResult{}
	if resp.AccessToken != "" {
		session := resp.Session
		result.Session = &session
		result.User = resp.User
	}
	if result.User == nil && resp.ID != "" {
		result.User = &AuthUser{ID: resp.ID, Email: resp.Email}
	}
	if result.User == nil {
		return nil, &Error{StatusCode: http.StatusBadGateway, Message: "signup response did not contain a user"}
	}
	return result, nil
}

// SignIn はメールアドレスとパスワードでセッションを取得する。
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{email, password}, &session); err != nil {
		return nil, err
	}
	return &AuthResult{User: session.User, Session: &session}, nil
}

// SignOut はアクセストークンに紐づくセッションを失効させる。
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// VerifyToken はアクセストークンをSupabase Authに問い合わせ、ユーザーを返す。
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*AuthUser, error) {
	var user AuthUser
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &Error{StatusCode: http.StatusUnauthorized, Message: "user not found for token"}
	}
	return &user, nil
}

// do はリクエストを送信し、2xxのレスポンスをoutにデコードする。
func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Supabase Authの呼び出しに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("supabase auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read supabase auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Supabase Authがエラーステータスを返しました",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(respBody, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode supabase auth response: %w", err)
	}
	return nil
}

// errorMessage はGoTrueのエラーボディからメッセージを取り出す。
// バージョンによりmsg, error_description, messageのいずれかに入る。
func errorMessage(body []byte, status int) string {
	var payload struct {
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Msg, payload.ErrorDescription, payload.Message, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("supabase auth returned status %d", status)
}
