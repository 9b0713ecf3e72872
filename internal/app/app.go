package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/eduassist/internal/auth"
	"github.com/hitoshi/eduassist/internal/config"
	"github.com/hitoshi/eduassist/internal/database"
	"github.com/hitoshi/eduassist/internal/flashcard"
	"github.com/hitoshi/eduassist/internal/handler"
	"github.com/hitoshi/eduassist/internal/huggingface"
	"github.com/hitoshi/eduassist/internal/intasend"
	"github.com/hitoshi/eduassist/internal/logger"
	"github.com/hitoshi/eduassist/internal/metrics"
	"github.com/hitoshi/eduassist/internal/middleware"
	"github.com/hitoshi/eduassist/internal/payment"
	"github.com/hitoshi/eduassist/internal/progress"
	"github.com/hitoshi/eduassist/internal/quiz"
	"github.com/hitoshi/eduassist/internal/repository"
	"github.com/hitoshi/eduassist/internal/security"
	"github.com/hitoshi/eduassist/internal/supabase"
	"github.com/hitoshi/eduassist/internal/user"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// .envファイルがあれば環境変数に読み込み、JSON構造化ログをセットアップしてConfigを返す。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. .envの読み込み（既存の環境変数は上書きしない）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		slog.Warn("unknown command, falling back to serve", slog.String("arg", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. ルーターの構築
	router, cleanup, err := newRouter(cfg, db, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	// 3. HTTPサーバーの起動
	// 生成リクエストはAI呼び出しを逐次行うため書き込みタイムアウトは設けない
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// newRouter は外部サービスのクライアント、リポジトリ、ドメインサービスを組み立てて
// ルーターを返す。返されるcleanupはレートリミッターのバックグラウンド処理を停止する。
func newRouter(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) (http.Handler, func(), error) {
	logger := slog.Default()

	// 1. 外部呼び出し用のHTTPクライアント
	guard := security.NewOutboundGuard(cfg.OutboundSSRFGuard)
	if err := security.ValidateUpstreams(guard, cfg.UpstreamURLs()); err != nil {
		return nil, nil, fmt.Errorf("invalid upstream configuration: %w", err)
	}
	httpClient := guard.NewClient(cfg.UpstreamTimeout)

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	quizRepo := repository.NewPostgresQuizRepo(db)
	flashcardRepo := repository.NewPostgresFlashcardSetRepo(db)
	progressRepo := repository.NewPostgresProgressRepo(db)
	paymentRepo := repository.NewPostgresPaymentRepo(db)

	// 4. 外部サービスのクライアント
	idp := supabase.NewClient(httpClient, logger, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	var verifier supabase.TokenVerifier = idp
	if cfg.SupabaseJWTSecret != "" {
		verifier = supabase.NewJWTVerifier(cfg.SupabaseJWTSecret)
		slog.Info("access tokens are verified locally")
	}
	ai := huggingface.NewClient(httpClient, logger, collector, cfg.HFModelURL, cfg.HFAPIKey, cfg.HFRateLimit)
	gateway := intasend.NewClient(httpClient, logger, collector, cfg.InstasendBaseURL, cfg.InstasendAPIKey, cfg.InstasendAPIToken)

	// 5. ドメインサービスの初期化
	userService := user.NewService(userRepo)
	authService := auth.NewService(idp, userService)
	quizService := quiz.NewService(userService, ai, quizRepo, progressRepo, cfg.MaxGenerateItems)
	flashcardService := flashcard.NewService(userService, ai, flashcardRepo, progressRepo, cfg.MaxGenerateItems)
	progressService := progress.NewService(progressRepo)
	paymentService := payment.NewService(gateway, userService, paymentRepo)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitGenerate))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            logger,
		TokenVerifier:     verifier,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Metrics:           collector,
		MetricsGatherer:   reg,

		TopicSanitizer: security.NewTopicSanitizer(),

		AuthService:      authService,
		UserService:      userService,
		QuizService:      quizService,
		FlashcardService: flashcardService,
		ProgressService:  progressService,
		PaymentService:   paymentService,
	})

	return router, rateLimiter.Stop, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
