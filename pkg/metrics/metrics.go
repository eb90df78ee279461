// Package metrics records request counters and authorization outcomes.
// Decision and reload series are exported through a Prometheus registry,
// the raw request counters through a JSON snapshot.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/rbac"
)

// Decision outcomes used as the result label.
const (
	ResultAllowed     = "allowed"
	ResultDenied      = "denied"
	ResultInvalid     = "invalid"
	ResultUnavailable = "unavailable"
)

// Metrics holds the counters for one server instance.
// Thread-safe via atomics and mutex.
type Metrics struct {
	totalRequests  atomic.Int64
	activeRequests atomic.Int64
	totalErrors    atomic.Int64
	totalLatencyMs atomic.Int64
	maxLatencyMs   atomic.Int64
	startTime      time.Time

	mu                sync.Mutex
	endpointCounts    map[string]int64
	endpointLatencies map[string]int64 // total ms per endpoint
	statusCodes       map[int]int64

	registry        *prometheus.Registry
	decisions       *prometheus.CounterVec
	reloads         *prometheus.CounterVec
	tableLoaded     prometheus.Gauge
	tableInfo       *prometheus.GaugeVec
	requestDuration *prometheus.HistogramVec
}

// New builds a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		startTime:         time.Now(),
		endpointCounts:    make(map[string]int64),
		endpointLatencies: make(map[string]int64),
		statusCodes:       make(map[int]int64),
		registry:          reg,
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authz",
			Name:      "decisions_total",
			Help:      "Authorization queries answered, by operation and result.",
		}, []string{"operation", "result"}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authz",
			Subsystem: "grant_table",
			Name:      "reloads_total",
			Help:      "Grant table load attempts, by source and result.",
		}, []string{"source", "result"}),
		tableLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "authz",
			Subsystem: "grant_table",
			Name:      "loaded",
			Help:      "1 when a validated grant table is installed.",
		}),
		tableInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "authz",
			Subsystem: "grant_table",
			Name:      "info",
			Help:      "Fingerprint of the installed grant table.",
		}, []string{"fingerprint"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authz",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDecision counts one answered query. A non-nil err means the query
// was rejected before it could be answered.
func (m *Metrics) ObserveDecision(operation string, allowed bool, err error) {
	m.decisions.WithLabelValues(operation, decisionResult(allowed, err)).Inc()
}

func decisionResult(allowed bool, err error) string {
	switch {
	case errors.Is(err, rbac.ErrNotReady), errors.Is(err, apperrors.ErrUnavailable):
		return ResultUnavailable
	case err != nil:
		return ResultInvalid
	case allowed:
		return ResultAllowed
	default:
		return ResultDenied
	}
}

// ObserveReload counts one load attempt from the named source.
func (m *Metrics) ObserveReload(source string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.reloads.WithLabelValues(source, result).Inc()
}

// SetTable records the fingerprint of the table now being served.
func (m *Metrics) SetTable(fingerprint string) {
	m.tableInfo.Reset()
	if fingerprint == "" {
		m.tableLoaded.Set(0)
		return
	}
	m.tableInfo.WithLabelValues(fingerprint).Set(1)
	m.tableLoaded.Set(1)
}

// Middleware tracks request count, latency, active connections, and error rates
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.activeRequests.Add(1)
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			elapsed := time.Since(start)
			latencyMs := elapsed.Milliseconds()
			m.activeRequests.Add(-1)
			m.totalRequests.Add(1)
			m.totalLatencyMs.Add(latencyMs)

			for {
				current := m.maxLatencyMs.Load()
				if latencyMs <= current || m.maxLatencyMs.CompareAndSwap(current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			endpoint := fmt.Sprintf("%s %s", method, path)

			m.requestDuration.WithLabelValues(method, path, fmt.Sprint(statusCode)).Observe(elapsed.Seconds())

			m.mu.Lock()
			m.endpointCounts[endpoint]++
			m.endpointLatencies[endpoint] += latencyMs
			m.statusCodes[statusCode]++
			m.mu.Unlock()
			if statusCode >= 400 {
				m.totalErrors.Add(1)
			}

			return nil
		}
	}
}

// Snapshot is a point-in-time snapshot of request counters
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	RequestsPerSec float64          `json:"requests_per_sec"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := m.totalRequests.Load()
	errCount := m.totalErrors.Load()
	uptime := time.Since(m.startTime).Seconds()

	s := Snapshot{
		TotalRequests:  total,
		ActiveRequests: m.activeRequests.Load(),
		TotalErrors:    errCount,
		MaxLatencyMs:   m.maxLatencyMs.Load(),
		UptimeSeconds:  uptime,
	}
	if total > 0 {
		s.AvgLatencyMs = float64(m.totalLatencyMs.Load()) / float64(total)
		s.ErrorRate = float64(errCount) / float64(total) * 100
	}
	if uptime > 0 {
		s.RequestsPerSec = float64(total) / uptime
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.EndpointCounts = make(map[string]int64, len(m.endpointCounts))
	s.EndpointAvgMs = make(map[string]int64, len(m.endpointLatencies))
	for k, v := range m.endpointCounts {
		s.EndpointCounts[k] = v
		if v > 0 {
			s.EndpointAvgMs[k] = m.endpointLatencies[k] / v
		}
	}
	s.StatusCodes = make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		s.StatusCodes[k] = v
	}
	return s
}

// RegisterRoutes adds /metrics and /metrics/requests.
func (m *Metrics) RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
	e.GET("/metrics/requests", func(c echo.Context) error {
		return c.JSON(http.StatusOK, m.Snapshot())
	})
}
