// Package flashcard はフラッシュカードの生成と学習セッション記録を提供する。
package flashcard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/repository"
)

// FreeCardLimit は無料会員が1回に生成できるカード枚数の上限。
const FreeCardLimit = 10

// DefaultMaxCards はプレミアム会員でも超えられない1回あたりのカード枚数の既定上限。
const DefaultMaxCards = 50

// PremiumChecker はプレミアム判定のインターフェース。
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) bool
}

// Generator はフラッシュカードを生成するインターフェース。
type Generator interface {
	GenerateFlashcards(ctx context.Context, topic string, n int) []model.Flashcard
}

// Service はフラッシュカードのサービス層。
type Service struct {
	premium      PremiumChecker
	generator    Generator
	setRepo      repository.FlashcardSetRepository
	progressRepo repository.ProgressRepository
	maxCards     int
}

// NewService はServiceの新しいインスタンスを生成する。
// maxCardsが0以下の場合はDefaultMaxCardsを使う。
func NewService(premium PremiumChecker, generator Generator, setRepo repository.FlashcardSetRepository, progressRepo repository.ProgressRepository, maxCards int) *Service {
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	return &Service{
		premium:      premium,
		generator:    generator,
		setRepo:      setRepo,
		progressRepo: progressRepo,
		maxCards:     maxCards,
	}
}

// Generate はトピックについてn枚のカードを生成して保存する。
// 上限枚数の検証はプレミアム判定を通過した後に行う。
// 保存に失敗した場合はIDが空のセットを返す。
func (s *Service) Generate(ctx context.Context, userID, topic string, n int) (*model.FlashcardSet, error) {
	if n > FreeCardLimit && !s.premium.IsPremium(ctx, userID) {
		return nil, model.NewPremiumRequiredError("Premium subscription required for more than 10 flashcards")
	}
	if n > s.maxCards {
		return nil, model.NewInvalidItemCountError(n, s.maxCards)
	}

	set := &model.FlashcardSet{
		ID:         uuid.New().String(),
		UserID:     userID,
		Topic:      topic,
		Flashcards: s.generator.GenerateFlashcards(ctx, topic, n),
		CreatedAt:  time.Now(),
	}
	if err := s.setRepo.Create(ctx, set); err != nil {
		slog.Error("フラッシュカードセットの保存に失敗しました",
			slog.String("user_id", userID),
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		set.ID = ""
	}
	return set, nil
}

// CompleteSession は学習セッションの完了を記録し、復習枚数を返す。
// スコアには復習枚数をそのまま記録する。
func (s *Service) CompleteSession(ctx context.Context, userID, topic string, cardsReviewed int) int {
	score := cardsReviewed
	if err := s.progressRepo.Create(ctx, &model.ProgressEntry{
		ID:           uuid.New().String(),
		UserID:       userID,
		Topic:        topic,
		ActivityType: model.ActivityFlashcard,
		Score:        &score,
		CompletedAt:  time.Now(),
	}); err != nil {
		slog.Error("学習履歴の保存に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return cardsReviewed
}
