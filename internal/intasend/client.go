// Package intasend はIntaSend決済ゲートウェイ（M-Pesa STKプッシュ）のクライアントを提供する。
package intasend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/eduassist/internal/metrics"
	"github.com/hitoshi/eduassist/internal/model"
)

// メトリクスのoperationラベル。
const (
	OperationInitiate = "initiate"
	OperationStatus   = "status"
)

const upstreamName = "intasend"

// GatewayError はゲートウェイが200以外を返したときのエラー。
type GatewayError struct {
	StatusCode int
	Message    string
	Body       map[string]any
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Client はIntaSend REST APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	baseURL    string
	publicKey  string
	apiToken   string
}

// NewClient はClientを生成する。collectorはnilでもよい。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, baseURL, publicKey, apiToken string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicKey:  publicKey,
		apiToken:   apiToken,
	}
}

type stkPushRequest struct {
	PublicKey   string  `json:"public_key"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email"`
	APIRef      string  `json:"api_ref"`
	Method      string  `json:"method"`
}

// APIRef は決済の照合用参照文字列を返す。
func APIRef(phoneNumber string, amount float64) string {
	return fmt.Sprintf("EDU_%s_%d", phoneNumber, int(amount*100))
}

// InitiateMpesaPayment はM-Pesa STKプッシュを開始し、ゲートウェイの応答をそのまま返す。
func (c *Client) InitiateMpesaPayment(ctx context.Context, amount float64, phoneNumber, email string) (map[string]any, error) {
	payload, err := json.Marshal(stkPushRequest{
		PublicKey:   c.publicKey,
		Amount:      amount,
		Currency:    model.DefaultCurrency,
		PhoneNumber: phoneNumber,
		Email:       email,
		APIRef:      APIRef(phoneNumber, amount),
		Method:      "M-PESA",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	data, err := c.do(ctx, OperationInitiate, http.MethodPost, "/payment/mpesa-stk-push/", payload, "Failed to initiate payment")
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CheckPaymentStatus はトランザクションの状態を1回だけ問い合わせる。
func (c *Client) CheckPaymentStatus(ctx context.Context, transactionID string) (map[string]any, error) {
	path := "/payment/status/" + url.PathEscape(transactionID) + "/"
	return c.do(ctx, OperationStatus, http.MethodGet, path, nil, "Failed to check payment status")
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload []byte, failureMessage string) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-IntaSend-Public-API-Key", c.publicKey)
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.recordLatency(time.Since(start))
	if err != nil {
		c.logger.Error("IntaSend APIの呼び出しに失敗しました",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.recordOutcome(operation, metrics.OutcomeFailure)
		return nil, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordOutcome(operation, metrics.OutcomeFailure)
		return nil, fmt.Errorf("failed to read payment gateway response: %w", err)
	}

	var data map[string]any
	decodeErr := json.Unmarshal(respBody, &data)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("IntaSend APIがエラーステータスを返しました",
			slog.String("operation", operation),
			slog.Int("http_status", resp.StatusCode),
		)
		c.recordOutcome(operation, metrics.OutcomeFailure)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: failureMessage, Body: data}
	}
	if decodeErr != nil {
		c.recordOutcome(operation, metrics.OutcomeFailure)
		return nil, fmt.Errorf("failed to decode payment gateway response: %w", decodeErr)
	}

	c.recordOutcome(operation, metrics.OutcomeSuccess)
	return data, nil
}

func (c *Client) recordOutcome(operation, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordPaymentRequest(operation, outcome)
	}
}

func (c *Client) recordLatency(d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency(upstreamName, d)
	}
}

// TransactionID はSTKプッシュの応答からトランザクションIDを取り出す。
// トップレベルのidが無い場合はinvoice.invoice_idを使う。
func TransactionID(data map[string]any) string {
	if id := stringValue(data["id"]); id != "" {
		return id
	}
	if invoice, ok := data["invoice"].(map[string]any); ok {
		return stringValue(invoice["invoice_id"])
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}
