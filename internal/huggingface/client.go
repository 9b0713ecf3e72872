// Package huggingface はHugging Face Inference APIを使った学習コンテンツ生成を提供する。
// 生成に失敗した項目はテンプレートの代替コンテンツで埋める。
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/eduassist/internal/metrics"
	"github.com/hitoshi/eduassist/internal/model"
	"golang.org/x/time/rate"
)

// 生成種別。メトリクスのkindラベルにも使う。
const (
	KindQuiz      = "quiz"
	KindFlashcard = "flashcard"
)

const upstreamName = "huggingface"

// Client はHugging Face Inference APIのクライアント。
// 1項目につき1リクエストを逐次送信し、limiterで送信間隔を制御する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	limiter    *rate.Limiter
	modelURL   string
	apiKey     string
}

// NewClient はClientを生成する。ratePerSecが0以下の場合は送信間隔を制限しない。
// collectorはnilでもよい。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, modelURL, apiKey string, ratePerSec float64) *Client {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		limiter:    rate.NewLimiter(limit, 1),
		modelURL:   modelURL,
		apiKey:     apiKey,
	}
}

type generateParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// GenerateQuiz はtopicについてn問のクイズを生成する。
// 結果は常にn件で、失敗した問題は代替問題になる。
func (c *Client) GenerateQuiz(ctx context.Context, topic string, n int) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, 0, n)
	prompt := fmt.Sprintf(quizPromptFormat, topic)
	for i := 0; i < n; i++ {
		text, err := c.generate(ctx, prompt, generateParameters{MaxNewTokens: quizMaxNewTokens, Temperature: quizTemperature})
		if err != nil {
			c.logger.Warn("クイズ生成に失敗したため代替問題を使用します",
				slog.String("topic", topic),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			c.record(KindQuiz, metrics.OutcomeFallback)
			questions = append(questions, fallbackQuizQuestion(topic))
			continue
		}
		c.record(KindQuiz, metrics.OutcomeGenerated)
		questions = append(questions, parseQuizQuestion(text, topic, i))
	}
	return questions
}

// GenerateFlashcards はtopicについてn枚のフラッシュカードを生成する。
// 結果は常にn件で、失敗したカードは代替カードになる。
func (c *Client) GenerateFlashcards(ctx context.Context, topic string, n int) []model.Flashcard {
	cards := make([]model.Flashcard, 0, n)
	prompt := fmt.Sprintf(flashcardPromptFormat, topic)
	for i := 0; i < n; i++ {
		text, err := c.generate(ctx, prompt, generateParameters{MaxNewTokens: flashcardMaxNewTokens, Temperature: flashcardTemperature})
		if err != nil {
			c.logger.Warn("フラッシュカード生成に失敗したため代替カードを使用します",
				slog.String("topic", topic),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			c.record(KindFlashcard, metrics.OutcomeFallback)
			cards = append(cards, fallbackFlashcard(topic))
			continue
		}
		c.record(KindFlashcard, metrics.OutcomeGenerated)
		cards = append(cards, parseFlashcard(text, topic, i))
	}
	return cards
}

// generate はプロンプトを1回送信し、生成テキストを返す。
// 200以外のステータス、通信エラー、読み取り失敗はエラーとして返す。
func (c *Client) generate(ctx context.Context, prompt string, params generateParameters) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(generateRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency(upstreamName, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return extractGeneratedText(body), nil
}

// extractGeneratedText はレスポンスから生成テキストを取り出す。
// 配列形式と単一オブジェクト形式の両方を受け付け、どちらでもなければ本文をそのまま返す。
func extractGeneratedText(body []byte) string {
	var list []generatedText
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText
	}
	var single generatedText
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText
	}
	return string(body)
}

func (c *Client) record(kind, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordAIRequest(kind, outcome)
	}
}
