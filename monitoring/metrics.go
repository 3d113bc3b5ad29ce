package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 预测服务指标
type Metrics struct {
	registry *prometheus.Registry

	predictions  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	latency      prometheus.Histogram
	cacheHits    prometheus.Counter
	reloads      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// NewMetrics 创建指标收集器，每个实例使用独立的registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churn_predictions_total",
			Help: "Predictions served, by result.",
		}, []string{"result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churn_prediction_failures_total",
			Help: "Failed predictions, by reason.",
		}, []string{"reason"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "churn_prediction_duration_seconds",
			Help:    "Time spent preprocessing and predicting one request.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "churn_prediction_cache_hits_total",
			Help: "Rows answered from the result cache.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churn_artifact_reloads_total",
			Help: "Artifact reload attempts, by status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churn_http_requests_total",
			Help: "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.predictions,
		m.failures,
		m.latency,
		m.cacheHits,
		m.reloads,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction 记录一次预测结果
func (m *Metrics) ObservePrediction(result string) {
	m.predictions.WithLabelValues(result).Inc()
}

// ObserveFailure 记录一次预测失败
func (m *Metrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLatency(d time.Duration) {
	m.latency.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheHit() {
	m.cacheHits.Inc()
}

// ObserveReload status: ok, failed
func (m *Metrics) ObserveReload(status string) {
	m.reloads.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRequest(method, code string) {
	m.httpRequests.WithLabelValues(method, code).Inc()
}

// Registry 返回底层registry，测试中用于读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
