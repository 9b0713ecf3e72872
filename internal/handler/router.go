package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eduassist/internal/metrics"
	"github.com/hitoshi/eduassist/internal/middleware"
	"github.com/hitoshi/eduassist/internal/security"
	"github.com/hitoshi/eduassist/internal/supabase"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     supabase.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer

	// 入力検証
	TopicSanitizer security.TopicSanitizer

	// サービス
	AuthService      AuthServiceInterface
	UserService      UserServiceInterface
	QuizService      QuizServiceInterface
	FlashcardService FlashcardServiceInterface
	ProgressService  ProgressServiceInterface
	PaymentService   PaymentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → Auth → RateLimit(General) → RateLimit(Generate)
//
// /、/health、/metrics、/auth/*、/payment/plans は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	quizHandler := NewQuizHandler(deps.QuizService, deps.TopicSanitizer)
	flashcardHandler := NewFlashcardHandler(deps.FlashcardService, deps.TopicSanitizer)
	progressHandler := NewProgressHandler(deps.ProgressService)
	paymentHandler := NewPaymentHandler(deps.PaymentService)

	// --- 認証不要のルート ---

	r.Get("/", Root)
	r.Get("/health", Health)
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)
	})

	r.Get("/payment/plans", paymentHandler.Plans)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		generate := deps.RateLimiter.GenerationMiddleware()

		r.Route("/quiz", func(r chi.Router) {
			r.With(generate).Post("/generate", quizHandler.Generate)
			r.Post("/submit/{quiz_id}", quizHandler.Submit)
		})

		r.Route("/flashcard", func(r chi.Router) {
			r.With(generate).Post("/generate", flashcardHandler.Generate)
			r.Post("/complete/{topic}", flashcardHandler.Complete)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/dashboard", progressHandler.Dashboard)
			r.Get("/history", progressHandler.History)
		})

		// /payment/plans は認証不要のため個別に登録する
		r.Post("/payment/initiate", paymentHandler.Initiate)
		r.Get("/payment/status/{transaction_id}", paymentHandler.Status)

		r.Get("/user/profile", userHandler.Profile)
	})

	return r
}
