package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/quiz"
	"github.com/hitoshi/eduassist/internal/security"
)

// defaultNumQuestions はnum_questions未指定時の問題数。
const defaultNumQuestions = 5

// QuizServiceInterface はクイズハンドラーが必要とするサービスインターフェース。
type QuizServiceInterface interface {
	Generate(ctx context.Context, userID, topic string, n int) (*model.Quiz, error)
	Submit(ctx context.Context, userID, quizID string, answers []any, topic string) *quiz.SubmitResult
}

// QuizHandler はクイズのHTTPハンドラー。
type QuizHandler struct {
	service   QuizServiceInterface
	validator generateValidator
}

// NewQuizHandler はQuizHandlerを生成する。
func NewQuizHandler(service QuizServiceInterface, sanitizer security.TopicSanitizer) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: newGenerateValidator(sanitizer),
	}
}

type generateQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions *int   `json:"num_questions"`
}

// quizResponse はクイズのAPIレスポンス。保存に失敗した場合idはnull。
type quizResponse struct {
	ID        *string              `json:"id"`
	Topic     string               `json:"topic"`
	Questions []model.QuizQuestion `json:"questions"`
}

// submitQuizRequest は解答送信リクエストのボディ。
// answersは解答の配列、または {answers, topic} のオブジェクトを受け付ける。
type submitQuizRequest struct {
	Answers json.RawMessage `json:"answers"`
	Topic   string          `json:"topic"`
}

type nestedAnswers struct {
	Answers []any  `json:"answers"`
	Topic   string `json:"topic"`
}

type submitQuizResponse struct {
	Success        bool `json:"success"`
	Score          int  `json:"score"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
	Percentage     int  `json:"percentage"`
}

// Generate はクイズを生成する。
// POST /quiz/generate
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req generateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topic, err := h.validator.topic(req.Topic)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	n, err := h.validator.count(req.NumQuestions, defaultNumQuestions)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	q, err := h.service.Generate(r.Context(), userID, topic, n)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"quiz": quizResponse{
			ID:        optionalID(q.ID),
			Topic:     q.Topic,
			Questions: q.Questions,
		},
	})
}

// Submit は解答を採点する。
// POST /quiz/submit/{quiz_id}
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req submitQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	answers, topic, err := parseAnswers(req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := h.service.Submit(r.Context(), userID, chi.URLParam(r, "quiz_id"), answers, topic)

	writeJSON(w, http.StatusOK, submitQuizResponse{
		Success:        true,
		Score:          result.Score,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Score,
	})
}

// parseAnswers は配列形式とオブジェクト形式の両方から解答とトピックを取り出す。
func parseAnswers(req submitQuizRequest) ([]any, string, error) {
	raw := bytes.TrimSpace(req.Answers)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, req.Topic, nil
	}

	if raw[0] == '{' {
		var nested nestedAnswers
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, "", model.NewInvalidRequestError()
		}
		topic := nested.Topic
		if topic == "" {
			topic = req.Topic
		}
		return nested.Answers, topic, nil
	}

	var answers []any
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, "", model.NewInvalidRequestError()
	}
	return answers, req.Topic, nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
