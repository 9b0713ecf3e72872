package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/progress/history", nil)
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func testConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    3,
		GenerateRate:    1,
		GenerateBurst:   1,
		CleanupInterval: time.Minute,
	}
}

func TestRateLimitMiddleware_AllowsBurstThen429(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs("user-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" || body.Success {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimitMiddleware_IsolatesUsers(t *testing.T) {
	cfg := testConfig()
	cfg.GeneralBurst = 1
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-a"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-a"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("user-a second request status = %d, want 429", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-b"))
	if w.Code != http.StatusOK {
		t.Errorf("user-b status = %d, want 200", w.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGenerationMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(rl.GenerationMiddleware()(okHandler()))
	general := rl.GeneralMiddleware()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("first generate status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second generate status = %d, want 429", w.Code)
	}

	// 生成枠を使い切っても一般APIは通る
	w = httptest.NewRecorder()
	general.ServeHTTP(w, requestAs("user-1"))
	if w.Code != http.StatusOK {
		t.Errorf("general status = %d, want 200", w.Code)
	}
	if rl.GenerateLimiterCount() != 1 {
		t.Errorf("GenerateLimiterCount = %d, want 1", rl.GenerateLimiterCount())
	}
}

func TestRateLimitMiddleware_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	w := httptest.NewRecorder()
	rl.GeneralMiddleware()(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	defer rl.Stop()

	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestAs("user-old"))
	rl.GenerationMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestAs("user-old"))

	// TTL（CleanupIntervalの2倍）以内ではまだ残る
	rl.cleanup(time.Now().Add(time.Minute))
	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("GeneralLimiterCount = %d, want 1 before TTL", rl.GeneralLimiterCount())
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.GeneralLimiterCount() != 0 || rl.GenerateLimiterCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0 after TTL", rl.GeneralLimiterCount(), rl.GenerateLimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	rl.Stop()
	rl.Stop()
}

func TestNewRateLimiterConfig(t *testing.T) {
	tests := []struct {
		name                      string
		general, generate         int
		wantGeneral, wantGenerate rate.Limit
		wantGenBurst              int
	}{
		{"defaults", 120, 10, 2, rate.Limit(10.0 / 60.0), 10},
		{"custom", 60, 6, 1, 0.1, 6},
		{"non positive falls back", 0, -1, 2, rate.Limit(10.0 / 60.0), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewRateLimiterConfig(tt.general, tt.generate)
			if cfg.GeneralRate != tt.wantGeneral {
				t.Errorf("GeneralRate = %v, want %v", cfg.GeneralRate, tt.wantGeneral)
			}
			if cfg.GenerateRate != tt.wantGenerate {
				t.Errorf("GenerateRate = %v, want %v", cfg.GenerateRate, tt.wantGenerate)
			}
			if cfg.GenerateBurst != tt.wantGenBurst {
				t.Errorf("GenerateBurst = %d, want %d", cfg.GenerateBurst, tt.wantGenBurst)
			}
			if cfg.CleanupInterval != 5*time.Minute {
				t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
			}
		})
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.GeneralBurst != 120 || cfg.GenerateBurst != 10 {
		t.Errorf("bursts = %d/%d, want 120/10", cfg.GeneralBurst, cfg.GenerateBurst)
	}
}
