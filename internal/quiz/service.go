// Package quiz はクイズの生成と解答採点のドメインロジックを提供する。
package quiz

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/repository"
)

// FreeQuestionLimit は無料会員が1回に生成できる問題数の上限。
const FreeQuestionLimit = 5

// DefaultMaxQuestions はプレミアム会員でも超えられない1回あたりの問題数の既定上限。
const DefaultMaxQuestions = 50

// DefaultTopic は解答送信時にトピックが無い場合の記録名。
const DefaultTopic = "Unknown"

// PremiumChecker はプレミアム判定のインターフェース。
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) bool
}

// Generator はクイズ問題を生成するインターフェース。
type Generator interface {
	GenerateQuiz(ctx context.Context, topic string, n int) []model.QuizQuestion
}

// SubmitResult は採点結果を表す。
type SubmitResult struct {
	Score          int
	CorrectAnswers int
	TotalQuestions int
}

// Service はクイズのサービス層。
type Service struct {
	premium      PremiumChecker
	generator    Generator
	quizRepo     repository.QuizRepository
	progressRepo repository.ProgressRepository
	maxQuestions int
}

// NewService はServiceの新しいインスタンスを生成する。
// maxQuestionsが0以下の場合はDefaultMaxQuestionsを使う。
func NewService(premium PremiumChecker, generator Generator, quizRepo repository.QuizRepository, progressRepo repository.ProgressRepository, maxQuestions int) *Service {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Service{
		premium:      premium,
		generator:    generator,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		maxQuestions: maxQuestions,
	}
}

// Generate はトピックについてn問のクイズを生成して保存する。
// 無料枠を超える要求はプレミアム判定を先に行い、上限の検証はプレミアム会員にのみ適用する。
// 保存に失敗した場合はIDが空のクイズを返す。
func (s *Service) Generate(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
	if n > FreeQuestionLimit && !s.premium.IsPremium(ctx, userID) {
		return nil, model.NewPremiumRequiredError("Premium subscription required for more than 5 questions")
	}
	if n > s.maxQuestions {
		return nil, model.NewInvalidItemCountError(n, s.maxQuestions)
	}

	questions := s.generator.GenerateQuiz(ctx, topic, n)

	quiz := &model.Quiz{
		ID:        uuid.New().String(),
		UserID:    userID,
		Topic:     topic,
		Questions: questions,
		CreatedAt: time.Now(),
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		slog.Error("クイズの保存に失敗しました",
			slog.String("user_id", userID),
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		quiz.ID = ""
	}
	return quiz, nil
}

// Submit は解答を採点し、学習履歴とクイズのスコアを記録する。
// 採点は選択肢0を正解とみなす簡易方式。記録の失敗はログに残し結果には影響しない。
func (s *Service) Submit(ctx context.Context, userID, quizID string, answers []any, topic string) *SubmitResult {
	result := Score(answers)

	if topic == "" {
		topic = DefaultTopic
	}
	score := result.Score
	if err := s.progressRepo.Create(ctx, &model.ProgressEntry{
		ID:           uuid.New().String(),
		UserID:       userID,
		Topic:        topic,
		ActivityType: model.ActivityQuiz,
		Score:        &score,
		CompletedAt:  time.Now(),
	}); err != nil {
		slog.Error("学習履歴の保存に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.quizRepo.UpdateScore(ctx, quizID, userID, score); err != nil {
		level := slog.LevelError
		if errors.Is(err, repository.ErrNotFound) {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "クイズのスコア更新に失敗しました",
			slog.String("user_id", userID),
			slog.String("quiz_id", quizID),
			slog.String("error", err.Error()),
		)
	}

	return result
}

// Score は解答を採点する。値が0の解答を正解とする。
func Score(answers []any) *SubmitResult {
	total := len(answers)
	correct := 0
	for _, a := range answers {
		if isFirstOption(a) {
			correct++
		}
	}
	score := 0
	if total > 0 {
		score = correct * 100 / total
	}
	return &SubmitResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
	}
}

func isFirstOption(answer any) bool {
	switch v := answer.(type) {
	case float64:
		return v == 0
	case int:
		return v == 0
	case bool:
		// falseも数値の0と同じ扱いにする。
		return !v
	default:
		return false
	}
}
