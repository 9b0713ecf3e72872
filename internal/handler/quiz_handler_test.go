package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/quiz"
	"github.com/hitoshi/eduassist/internal/security"
)

// --- モック定義 ---

type mockQuizService struct {
	generateFn func(ctx context.Context, userID, topic string, n int) (*model.Quiz, error)
	submitFn   func(ctx context.Context, userID, quizID string, answers []any, topic string) *quiz.SubmitResult
}

func (m *mockQuizService) Generate(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, userID, topic, n)
	}
	return &model.Quiz{ID: "quiz-1", UserID: userID, Topic: topic, Questions: make([]model.QuizQuestion, n)}, nil
}

func (m *mockQuizService) Submit(ctx context.Context, userID, quizID string, answers []any, topic string) *quiz.SubmitResult {
	if m.submitFn != nil {
		return m.submitFn(ctx, userID, quizID, answers, topic)
	}
	return quiz.Score(answers)
}

func newTestQuizHandler(svc QuizServiceInterface) *QuizHandler {
	return NewQuizHandler(svc, security.NewTopicSanitizer())
}

// --- POST /quiz/generate ---

func TestQuizHandler_Generate_Success(t *testing.T) {
	var gotTopic string
	var gotN int
	h := newTestQuizHandler(&mockQuizService{
		generateFn: func(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
			gotTopic, gotN = topic, n
			return &model.Quiz{ID: "quiz-1", Topic: topic, Questions: make([]model.QuizQuestion, n)}, nil
		},
	})

	req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate",
		strings.NewReader(`{"topic":"<b>Photosynthesis</b>","num_questions":3}`)), "user-1")
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotTopic != "Photosynthesis" || gotN != 3 {
		t.Errorf("Generate(%q, %d)", gotTopic, gotN)
	}
	body := decodeBody(t, w)
	q, _ := body["quiz"].(map[string]any)
	if q["id"] != "quiz-1" || q["topic"] != "Photosynthesis" {
		t.Errorf("quiz = %v", body["quiz"])
	}
	if questions, _ := q["questions"].([]any); len(questions) != 3 {
		t.Errorf("len(questions) = %d, want 3", len(questions))
	}
}

func TestQuizHandler_Generate_DefaultCount(t *testing.T) {
	var gotN int
	h := newTestQuizHandler(&mockQuizService{
		generateFn: func(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
			gotN = n
			return &model.Quiz{Topic: topic}, nil
		},
	})

	req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate", strings.NewReader(`{"topic":"Go"}`)), "user-1")
	w := httptest.NewRecorder()
	h.Generate(w, req)

	if gotN != 5 {
		t.Errorf("n = %d, want 5", gotN)
	}
	body := decodeBody(t, w)
	q, _ := body["quiz"].(map[string]any)
	if v, ok := q["id"]; !ok || v != nil {
		t.Errorf("id = %v, want null when save failed", v)
	}
}

func TestQuizHandler_Generate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "empty topic", body: `{"topic":"","num_questions":3}`, code: model.ErrCodeInvalidTopic},
		{name: "markup only topic", body: `{"topic":"<script>alert(1)</script>"}`, code: model.ErrCodeInvalidTopic},
		{name: "zero count", body: `{"topic":"Go","num_questions":0}`, code: model.ErrCodeInvalidItemCount},
		{name: "negative count", body: `{"topic":"Go","num_questions":-3}`, code: model.ErrCodeInvalidItemCount},
		{name: "invalid json", body: `{"topic":`, code: model.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestQuizHandler(&mockQuizService{
				generateFn: func(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
					t.Error("service should not be called")
					return nil, nil
				},
			})
			req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate", strings.NewReader(tt.body)), "user-1")
			w := httptest.NewRecorder()
			h.Generate(w, req)

			assertErrorCode(t, w, http.StatusBadRequest, tt.code)
		})
	}
}

func TestQuizHandler_Generate_PremiumRequired_Returns403(t *testing.T) {
	h := newTestQuizHandler(&mockQuizService{
		generateFn: func(ctx context.Context, userID, topic string, n int) (*model.Quiz, error) {
			return nil, model.NewPremiumRequiredError("Premium subscription required for more than 5 questions")
		},
	})

	req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate", strings.NewReader(`{"topic":"Go","num_questions":6}`)), "user-1")
	w := httptest.NewRecorder()
	h.Generate(w, req)

	assertErrorCode(t, w, http.StatusForbidden, model.ErrCodePremiumRequired)
}

type fixedPremium bool

func (p fixedPremium) IsPremium(ctx context.Context, userID string) bool { return bool(p) }

type stubQuizGenerator struct{}

func (stubQuizGenerator) GenerateQuiz(ctx context.Context, topic string, n int) []model.QuizQuestion {
	return make([]model.QuizQuestion, n)
}

func TestQuizHandler_Generate_FreeUserOverAnyLimit_Returns403(t *testing.T) {
	h := newTestQuizHandler(quiz.NewService(fixedPremium(false), stubQuizGenerator{}, nil, nil, 50))

	for _, n := range []string{"6", "51", "100"} {
		t.Run(n, func(t *testing.T) {
			req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate",
				strings.NewReader(`{"topic":"Go","num_questions":`+n+`}`)), "user-1")
			w := httptest.NewRecorder()
			h.Generate(w, req)

			assertErrorCode(t, w, http.StatusForbidden, model.ErrCodePremiumRequired)
		})
	}
}

func TestQuizHandler_Generate_PremiumUserOverMax_Returns400(t *testing.T) {
	h := newTestQuizHandler(quiz.NewService(fixedPremium(true), stubQuizGenerator{}, nil, nil, 50))

	req := withUserID(httptest.NewRequest(http.MethodPost, "/quiz/generate",
		strings.NewReader(`{"topic":"Go","num_questions":51}`)), "user-1")
	w := httptest.NewRecorder()
	h.Generate(w, req)

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeInvalidItemCount)
}

// --- POST /quiz/submit/{quiz_id} ---

func newSubmitRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/quiz/submit/quiz-1", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("quiz_id", "quiz-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return withUserID(req, "user-1")
}

func TestQuizHandler_Submit_BodyShapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAnswers []any
		wantTopic   string
		wantScore   float64
	}{
		{
			name:        "flat",
			body:        `{"answers":[0,0,1],"topic":"Go"}`,
			wantAnswers: []any{0.0, 0.0, 1.0},
			wantTopic:   "Go",
			wantScore:   66,
		},
		{
			name:        "nested",
			body:        `{"answers":{"answers":[0,0,0],"topic":"Biology"}}`,
			wantAnswers: []any{0.0, 0.0, 0.0},
			wantTopic:   "Biology",
			wantScore:   100,
		},
		{
			name:      "missing answers",
			body:      `{}`,
			wantScore: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAnswers []any
			var gotTopic, gotQuizID string
			h := newTestQuizHandler(&mockQuizService{
				submitFn: func(ctx context.Context, userID, quizID string, answers []any, topic string) *quiz.SubmitResult {
					gotAnswers, gotTopic, gotQuizID = answers, topic, quizID
					return quiz.Score(answers)
				},
			})

			w := httptest.NewRecorder()
			h.Submit(w, newSubmitRequest(tt.body))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if gotQuizID != "quiz-1" {
				t.Errorf("quizID = %q, want quiz-1", gotQuizID)
			}
			if !reflect.DeepEqual(gotAnswers, tt.wantAnswers) {
				t.Errorf("answers = %v, want %v", gotAnswers, tt.wantAnswers)
			}
			if gotTopic != tt.wantTopic {
				t.Errorf("topic = %q, want %q", gotTopic, tt.wantTopic)
			}
			body := decodeBody(t, w)
			if body["score"] != tt.wantScore || body["percentage"] != tt.wantScore {
				t.Errorf("score = %v, percentage = %v, want %v", body["score"], body["percentage"], tt.wantScore)
			}
		})
	}
}

func TestQuizHandler_Submit_InvalidAnswers(t *testing.T) {
	h := newTestQuizHandler(&mockQuizService{})

	w := httptest.NewRecorder()
	h.Submit(w, newSubmitRequest(`{"answers":"zero"}`))

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeInvalidRequest)
}
