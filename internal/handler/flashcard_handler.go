package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/security"
)

// defaultNumCards はnum_cards未指定時のカード枚数。
const defaultNumCards = 10

// FlashcardServiceInterface はフラッシュカードハンドラーが必要とするサービスインターフェース。
type FlashcardServiceInterface interface {
	Generate(ctx context.Context, userID, topic string, n int) (*model.FlashcardSet, error)
	CompleteSession(ctx context.Context, userID, topic string, cardsReviewed int) int
}

// FlashcardHandler はフラッシュカードのHTTPハンドラー。
type FlashcardHandler struct {
	service   FlashcardServiceInterface
	validator generateValidator
}

// NewFlashcardHandler はFlashcardHandlerを生成する。
func NewFlashcardHandler(service FlashcardServiceInterface, sanitizer security.TopicSanitizer) *FlashcardHandler {
	return &FlashcardHandler{
		service:   service,
		validator: newGenerateValidator(sanitizer),
	}
}

type generateFlashcardsRequest struct {
	Topic    string `json:"topic"`
	NumCards *int   `json:"num_cards"`
}

// flashcardSetResponse はフラッシュカードセットのAPIレスポンス。保存に失敗した場合idはnull。
type flashcardSetResponse struct {
	ID         *string           `json:"id"`
	Topic      string            `json:"topic"`
	Flashcards []model.Flashcard `json:"flashcards"`
}

type completeSessionRequest struct {
	CardsReviewed int `json:"cards_reviewed"`
}

type completeSessionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CardsReviewed int    `json:"cards_reviewed"`
}

// Generate はフラッシュカードを生成する。
// POST /flashcard/generate
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req generateFlashcardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topic, err := h.validator.topic(req.Topic)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	n, err := h.validator.count(req.NumCards, defaultNumCards)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	set, err := h.service.Generate(r.Context(), userID, topic, n)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"flashcard_set": flashcardSetResponse{
			ID:         optionalID(set.ID),
			Topic:      set.Topic,
			Flashcards: set.Flashcards,
		},
	})
}

// Complete は学習セッションの完了を記録する。
// POST /flashcard/complete/{topic}
func (h *FlashcardHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "topic")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	topic, err := h.validator.topic(raw)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req completeSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reviewed := h.service.CompleteSession(r.Context(), userID, topic, req.CardsReviewed)

	writeJSON(w, http.StatusOK, completeSessionResponse{
		Success:       true,
		Message:       "Flashcard session completed",
		CardsReviewed: reviewed,
	})
}
