package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triagedesk/dashboard/internal/query"
)

const namespace = "triagedesk"

// Metrics 监控指标
//
// 每个实例使用独立的注册表，可以在同一进程中重复创建（测试中常见）。
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 后端调用指标
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	// 查询缓存指标
	CacheLookups        *prometheus.CounterVec
	CacheInvalidations  *prometheus.CounterVec
	CacheEntriesRemoved prometheus.Counter

	// 实时推送
	WebSocketClients prometheus.Gauge

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	SystemUptime prometheus.GaugeFunc
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of requests sent to the triage backend",
			},
			[]string{"route", "status_code"},
		),

		BackendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Triage backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_cache_lookups_total",
				Help:      "Query cache lookups by key kind and result",
			},
			[]string{"kind", "result"},
		),

		CacheInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_cache_invalidations_total",
				Help:      "Query cache invalidations by key kind",
			},
			[]string{"kind"},
		),

		CacheEntriesRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_cache_entries_removed_total",
				Help:      "Cache entries removed by invalidation",
			},
		),

		WebSocketClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_clients",
				Help:      "Number of connected invalidation push clients",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_total",
				Help:      "Total number of panics",
			},
		),
	}

	m.SystemUptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_uptime_seconds",
			Help:      "System uptime in seconds",
		},
		func() float64 { return time.Since(m.started).Seconds() },
	)

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.CacheLookups,
		m.CacheInvalidations,
		m.CacheEntriesRemoved,
		m.WebSocketClients,
		m.ErrorsTotal,
		m.PanicsTotal,
		m.SystemUptime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// ObserveBackendRequest 记录一次后端调用，statusCode 为 0 表示传输失败
func (m *Metrics) ObserveBackendRequest(route string, statusCode int, duration time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	m.BackendRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
	if statusCode == 0 || statusCode >= 400 {
		m.RecordError("backend_error", "backend")
	}
}

// ObserveLookup 记录缓存命中情况
func (m *Metrics) ObserveLookup(key query.Key, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(key.Kind(), result).Inc()
}

// ObserveInvalidation 记录缓存失效
func (m *Metrics) ObserveInvalidation(prefixes []query.Key, removed int) {
	for _, p := range prefixes {
		m.CacheInvalidations.WithLabelValues(p.Kind()).Inc()
	}
	m.CacheEntriesRemoved.Add(float64(removed))
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// UpdateWebSocketClients 更新推送连接数
func (m *Metrics) UpdateWebSocketClients(count int) {
	m.WebSocketClients.Set(float64(count))
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
