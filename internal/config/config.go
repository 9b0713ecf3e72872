package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database (Supabase の Postgres 接続文字列)
	DatabaseURL string

	// Supabase Auth
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	// Hugging Face Inference API
	HFAPIKey    string
	HFModelURL  string
	HFRateLimit float64 // req/sec

	// IntaSend
	InstasendAPIKey   string
	InstasendAPIToken string
	InstasendBaseURL  string

	// Upstream
	UpstreamTimeout   time.Duration
	OutboundSSRFGuard bool

	// Rate Limit (req/min/user)
	RateLimitGeneral  int
	RateLimitGenerate int

	// Generation
	MaxGenerateItems int

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

const (
	defaultHFModelURL       = "https://api-inference.huggingface.co/models/google/flan-t5-base"
	defaultInstasendBaseURL = "https://sandbox.intasend.com/api/v1"
)

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SupabaseURL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}

	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	if cfg.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SupabaseJWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	cfg.HFAPIKey = os.Getenv("HF_API_KEY")
	cfg.HFModelURL = getEnvString("HF_MODEL_URL", defaultHFModelURL)
	cfg.HFRateLimit = getEnvFloat("HF_RATE_LIMIT", 5)
	cfg.InstasendAPIKey = os.Getenv("INSTASEND_API_KEY")
	cfg.InstasendAPIToken = os.Getenv("INSTASEND_API_TOKEN")
	cfg.InstasendBaseURL = strings.TrimRight(getEnvString("INSTASEND_BASE_URL", defaultInstasendBaseURL), "/")
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	cfg.OutboundSSRFGuard = getEnvBool("OUTBOUND_SSRF_GUARD", false)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitGenerate = getEnvInt("RATE_LIMIT_GENERATE", 10)
	cfg.MaxGenerateItems = getEnvInt("MAX_GENERATE_ITEMS", 50)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("PORT", "8000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

// UpstreamURLs は外部サービスとして接続するベースURLの一覧を返す。
// OutboundSSRFGuard 有効時の起動前検証に使う。
func (c *Config) UpstreamURLs() []string {
	return []string{c.SupabaseURL, c.HFModelURL, c.InstasendBaseURL}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
