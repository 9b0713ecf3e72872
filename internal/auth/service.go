// Package auth はSupabase Authを使ったサインアップ・サインイン・サインアウトを提供する。
// セッションはIdPが管理し、このサービスは状態を持たない。
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/supabase"
)

// IdentityProvider は外部IdPのインターフェース。
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ProfileCreator はサインアップ時のプロフィール作成インターフェース。
type ProfileCreator interface {
	CreateProfile(ctx context.Context, userID, email string) error
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	idp      IdentityProvider
	profiles ProfileCreator
}

// NewService はServiceを生成する。
func NewService(idp IdentityProvider, profiles ProfileCreator) *Service {
	return &Service{idp: idp, profiles: profiles}
}

// SignUp はIdPにユーザーを登録し、プロフィールを作成する。
// プロフィール作成の失敗はログに記録するだけで、登録自体は成功として扱う。
func (s *Service) SignUp(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
	result, err := s.idp.SignUp(ctx, email, password)
	if err != nil {
		return nil, model.NewSignUpFailedError(providerMessage(err))
	}
	if result.User == nil {
		return nil, model.NewSignUpFailedError("Failed to create user")
	}

	if err := s.profiles.CreateProfile(ctx, result.User.ID, email); err != nil {
		slog.Error("プロフィールの作成に失敗しました",
			slog.String("user_id", result.User.ID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", result.User.ID),
	)
	return result, nil
}

// SignIn はメールアドレスとパスワードでセッションを取得する。
// ユーザーとセッションの両方が返らなければ認証失敗とする。
func (s *Service) SignIn(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
	result, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return nil, model.NewInvalidCredentialsError(providerMessage(err))
	}
	if result.User == nil || result.Session == nil {
		return nil, model.NewInvalidCredentialsError("Invalid credentials")
	}
	return result, nil
}

// SignOut はアクセストークンのセッションを失効させる。
// トークンが無い場合は失効させるものが無いため成功とする。
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.idp.SignOut(ctx, accessToken); err != nil {
		return model.NewSignOutFailedError(providerMessage(err))
	}
	return nil
}

// providerMessage はIdPのエラーからクライアントに返すメッセージを取り出す。
func providerMessage(err error) string {
	var idpErr *supabase.Error
	if errors.As(err, &idpErr) {
		return idpErr.Message
	}
	return err.Error()
}
