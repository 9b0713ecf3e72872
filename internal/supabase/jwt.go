package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// TokenVerifier はアクセストークンを検証してユーザーを返す。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*AuthUser, error)
}

// JWTVerifier はプロジェクトのJWTシークレットでアクセストークンをローカル検証する。
// Supabase AuthはHS256で署名したJWTを発行する。
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier はJWTVerifierを生成する。
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type accessTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// VerifyToken は署名と有効期限を検証し、subとemailからユーザーを組み立てる。
func (v *JWTVerifier) VerifyToken(_ context.Context, accessToken string) (*AuthUser, error) {
	claims := &accessTokenClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}

	return &AuthUser{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// compile-time interface check
var (
	_ TokenVerifier = (*JWTVerifier)(nil)
	_ TokenVerifier = (*Client)(nil)
)
