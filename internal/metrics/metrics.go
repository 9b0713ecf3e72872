// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AI生成リクエストの結果ラベル。
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

// 決済ゲートウェイ呼び出しの結果ラベル。
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアや外部サービスのアダプタから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordAIRequest(kind, outcome string)
	RecordPaymentRequest(operation, outcome string)
	RecordUpstreamLatency(upstream string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	paymentRequests *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduassist_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduassist_ai_requests_total",
			Help: "AI生成リクエストの種類・結果別の合計数",
		}, []string{"kind", "outcome"}),
		paymentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduassist_payment_requests_total",
			Help: "決済ゲートウェイ呼び出しの操作・結果別の合計数",
		}, []string{"operation", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduassist_upstream_latency_seconds",
			Help:    "外部サービス呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.aiRequests,
		c.paymentRequests,
		c.upstreamLatency,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAIRequest はAI生成1件の結果を記録する。kindはquiz|flashcard。
func (c *Collector) RecordAIRequest(kind, outcome string) {
	c.aiRequests.WithLabelValues(kind, outcome).Inc()
}

// RecordPaymentRequest は決済ゲートウェイ呼び出しの結果を記録する。
func (c *Collector) RecordPaymentRequest(operation, outcome string) {
	c.paymentRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordUpstreamLatency は外部サービス呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(upstream string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(upstream).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
