package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/progress"
)

// ProgressServiceInterface は学習履歴ハンドラーが必要とするサービスインターフェース。
type ProgressServiceInterface interface {
	Dashboard(ctx context.Context, userID string) *progress.Dashboard
	History(ctx context.Context, userID string) []*model.ProgressEntry
}

// ProgressHandler は学習履歴のHTTPハンドラー。
type ProgressHandler struct {
	service ProgressServiceInterface
}

// NewProgressHandler はProgressHandlerを生成する。
func NewProgressHandler(service ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// progressEntryResponse は学習履歴1件のAPIレスポンス。
type progressEntryResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Topic        string    `json:"topic"`
	ActivityType string    `json:"activity_type"`
	Score        *int      `json:"score"`
	CompletedAt  time.Time `json:"completed_at"`
}

type dashboardResponse struct {
	TotalQuizzes           int                     `json:"total_quizzes"`
	TotalFlashcardSessions int                     `json:"total_flashcard_sessions"`
	AverageQuizScore       float64                 `json:"average_quiz_score"`
	TopicsStudied          int                     `json:"topics_studied"`
	RecentActivity         []progressEntryResponse `json:"recent_activity"`
	TopicsList             []string                `json:"topics_list"`
}

// Dashboard は学習状況の集計を返す。
// GET /progress/dashboard
func (h *ProgressHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	d := h.service.Dashboard(r.Context(), userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"dashboard": dashboardResponse{
			TotalQuizzes:           d.TotalQuizzes,
			TotalFlashcardSessions: d.TotalFlashcardSessions,
			AverageQuizScore:       d.AverageQuizScore,
			TopicsStudied:          d.TopicsStudied,
			RecentActivity:         toProgressEntryResponses(d.RecentActivity),
			TopicsList:             d.TopicsList,
		},
	})
}

// History は学習履歴を新しい順に返す。
// GET /progress/history
func (h *ProgressHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": toProgressEntryResponses(h.service.History(r.Context(), userID)),
	})
}

func toProgressEntryResponses(entries []*model.ProgressEntry) []progressEntryResponse {
	resp := make([]progressEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, progressEntryResponse{
			ID:           e.ID,
			UserID:       e.UserID,
			Topic:        e.Topic,
			ActivityType: string(e.ActivityType),
			Score:        e.Score,
			CompletedAt:  e.CompletedAt,
		})
	}
	return resp
}
