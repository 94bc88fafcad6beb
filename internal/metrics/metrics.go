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
// ハンドラーやミドルウェアから利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordSessionCreated()
	RecordSessionRevoked()
	RecordSessionValidation(valid bool)
	RecordHTTPStatus(statusCode int)
	RecordCallbackLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess      prometheus.Counter
	loginFail         *prometheus.CounterVec
	sessionsCreated   prometheus.Counter
	sessionsRevoked   prometheus.Counter
	sessionValidation *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	callbackLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authman_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authman_login_fail_total",
			Help: "ログイン失敗の合計数（理由別）",
		}, []string{"reason"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authman_sessions_created_total",
			Help: "発行されたセッションの合計数",
		}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authman_sessions_revoked_total",
			Help: "失効されたセッションの合計数",
		}),
		sessionValidation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authman_session_validation_total",
			Help: "セッション検証の合計数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		callbackLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "authman_callback_latency_seconds",
			Help:    "OAuthコールバック処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.sessionsCreated,
		c.sessionsRevoked,
		c.sessionValidation,
		c.httpStatus,
		c.callbackLatency,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を理由別に記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordSessionCreated はセッション発行を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// RecordSessionRevoked はセッション失効を記録する。
func (c *Collector) RecordSessionRevoked() {
	c.sessionsRevoked.Inc()
}

// RecordSessionValidation はセッション検証の結果を記録する。
func (c *Collector) RecordSessionValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	c.sessionValidation.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCallbackLatency はOAuthコールバック処理のレイテンシを記録する。
func (c *Collector) RecordCallbackLatency(duration time.Duration) {
	c.callbackLatency.Observe(duration.Seconds())
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

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
