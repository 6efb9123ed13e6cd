// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordReview(outcome string)
	RecordCardCreated()
	RecordCardMastered()
	RecordCardRetired()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	reviews        *prometheus.CounterVec
	cardsCreated   prometheus.Counter
	cardsMastered  prometheus.Counter
	cardsRetired   prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordbin_reviews_total",
			Help: "記録されたレビューの合計数（正誤別）",
		}, []string{"outcome"}),
		cardsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbin_cards_created_total",
			Help: "作成されたカードの合計数",
		}),
		cardsMastered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbin_cards_mastered_total",
			Help: "最終ビンに到達したカードの合計数",
		}),
		cardsRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbin_cards_retired_total",
			Help: "覚えにくいカードとして除外された合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordbin_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordbin_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.reviews,
		c.cardsCreated,
		c.cardsMastered,
		c.cardsRetired,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordReview はレビュー結果を記録する。outcomeは"correct"または"incorrect"。
func (c *Collector) RecordReview(outcome string) {
	c.reviews.WithLabelValues(outcome).Inc()
}

// RecordCardCreated はカード作成を記録する。
func (c *Collector) RecordCardCreated() {
	c.cardsCreated.Inc()
}

// RecordCardMastered は最終ビンへの到達を記録する。
func (c *Collector) RecordCardMastered() {
	c.cardsMastered.Inc()
}

// RecordCardRetired は覚えにくいカードとしての除外を記録する。
func (c *Collector) RecordCardRetired() {
	c.cardsRetired.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
