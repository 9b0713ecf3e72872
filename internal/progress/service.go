// Package progress は学習履歴の集計を提供する。
package progress

import (
	"context"
	"log/slog"
	"math"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/repository"
)

// RecentActivityLimit はダッシュボードに載せる直近履歴の件数。
const RecentActivityLimit = 10

// Dashboard は学習状況の集計結果を表す。
type Dashboard struct {
	TotalQuizzes           int
	TotalFlashcardSessions int
	AverageQuizScore       float64
	TopicsStudied          int
	RecentActivity         []*model.ProgressEntry
	TopicsList             []string
}

// Service は学習履歴のサービス層。
type Service struct {
	progressRepo repository.ProgressRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(progressRepo repository.ProgressRepository) *Service {
	return &Service{progressRepo: progressRepo}
}

// History はユーザーの学習履歴を新しい順に返す。
// 取得に失敗した場合はログに記録して空の履歴を返す。
func (s *Service) History(ctx context.Context, userID string) []*model.ProgressEntry {
	entries, err := s.progressRepo.ListByUserID(ctx, userID)
	if err != nil {
		slog.Error("学習履歴の取得に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []*model.ProgressEntry{}
	}
	if entries == nil {
		return []*model.ProgressEntry{}
	}
	return entries
}

// Dashboard は学習履歴を集計する。
func (s *Service) Dashboard(ctx context.Context, userID string) *Dashboard {
	return Summarize(s.History(ctx, userID))
}

// Summarize は新しい順に並んだ履歴から集計結果を作る。
// 平均点はスコアが0または未記録のクイズを除いて計算し、小数第1位に丸める。
func Summarize(entries []*model.ProgressEntry) *Dashboard {
	d := &Dashboard{
		RecentActivity: entries[:min(len(entries), RecentActivityLimit)],
		TopicsList:     []string{},
	}

	var scoreSum, scoreCount int
	seen := make(map[string]struct{})
	for _, e := range entries {
		switch e.ActivityType {
		case model.ActivityQuiz:
			d.TotalQuizzes++
			if e.Score != nil && *e.Score != 0 {
				scoreSum += *e.Score
				scoreCount++
			}
		case model.ActivityFlashcard:
			d.TotalFlashcardSessions++
		}
		if _, ok := seen[e.Topic]; !ok {
			seen[e.Topic] = struct{}{}
			d.TopicsList = append(d.TopicsList, e.Topic)
		}
	}

	if scoreCount > 0 {
		avg := float64(scoreSum) / float64(scoreCount)
		// 小数第1位で丸める。ちょうど中間の値は偶数側に寄せる。
		d.AverageQuizScore = math.RoundToEven(avg*10) / 10
	}
	d.TopicsStudied = len(d.TopicsList)
	return d
}
