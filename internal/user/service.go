// Package user はユーザープロフィールとプレミアム状態のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/repository"
)

// Service はユーザープロフィールのサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// CreateProfile はサインアップ直後のプロフィールを作成する。
// 既に存在する場合は何もしない。
func (s *Service) CreateProfile(ctx context.Context, userID, email string) error {
	now := time.Now()
	err := s.userRepo.Create(ctx, &model.User{
		ID:        userID,
		Email:     email,
		IsPremium: false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("プロフィールの作成に失敗しました: %w", err)
	}
	return nil
}

// GetProfile はプロフィールを返す。取得に失敗した場合はログに記録してnilを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) *model.User {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		slog.Error("プロフィールの取得に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return user
}

// IsPremium はユーザーがプレミアム会員かを返す。
// プロフィールが無い、または取得に失敗した場合はfalse。
func (s *Service) IsPremium(ctx context.Context, userID string) bool {
	user := s.GetProfile(ctx, userID)
	return user != nil && user.IsPremium
}

// MarkPremium はユーザーをプレミアム会員にする。
func (s *Service) MarkPremium(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdatePremium(ctx, userID, true); err != nil {
		return fmt.Errorf("プレミアム状態の更新に失敗しました: %w", err)
	}
	slog.Info("ユーザーをプレミアム会員に更新しました",
		slog.String("user_id", userID),
	)
	return nil
}
