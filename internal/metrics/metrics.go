// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 登録失敗の理由ラベル
const (
	ReasonValidation = "validation"
	ReasonConflict   = "conflict"
	ReasonInternal   = "internal"
)

// Recorder はメトリクス収集のインターフェース。
// ハンドラーやミドルウェアから利用する。
type Recorder interface {
	RecordRegistration()
	RecordRegistrationFailure(reason string)
	RecordHTTPStatus(statusCode int)
	RecordHTTPDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations        prometheus.Counter
	registrationFailures *prometheus.CounterVec
	httpStatus           *prometheus.CounterVec
	httpDuration         prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idport_registrations_total",
			Help: "アカウント登録成功の合計数",
		}),
		registrationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idport_registration_failures_total",
			Help: "アカウント登録失敗の理由別合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idport_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "idport_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.registrationFailures,
		c.httpStatus,
		c.httpDuration,
	)

	return c
}

// RecordRegistration は登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordRegistrationFailure は登録失敗を理由付きで記録する。
func (c *Collector) RecordRegistrationFailure(reason string) {
	c.registrationFailures.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordHTTPDuration(duration time.Duration) {
	c.httpDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)
