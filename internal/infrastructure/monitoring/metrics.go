package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Evaluation metrics
	Evaluations     *prometheus.CounterVec
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	DomainErrors    *prometheus.CounterVec
	ReducedResults  *prometheus.CounterVec
	RuleRewrites    *prometheus.CounterVec

	// Catalog metrics
	FunctionsRegistered prometheus.Gauge
	RulesLoaded         prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests    int64   `json:"total_requests"`
	TotalErrors      int64   `json:"total_errors"`
	TotalEvaluations int64   `json:"total_evaluations"`
	DomainErrors     int64   `json:"domain_errors"`
	ReducedResults   int64   `json:"reduced_results"`
	TotalDuration    float64 `json:"-"`
	RequestCount     int64   `json:"-"`
}

// NewMetrics creates a metrics collector registered with reg. A nil reg
// uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specfn_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specfn_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specfn_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Evaluation metrics
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_evaluations_total",
				Help: "Total number of function evaluations by dispatch path",
			},
			[]string{"function", "path"},
		),
		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_backend_calls_total",
				Help: "Total number of backend calls",
			},
			[]string{"backend", "function", "status"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specfn_backend_duration_seconds",
				Help:    "Backend call duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .05, .1, .5, 1, 5},
			},
			[]string{"backend", "function"},
		),
		DomainErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_domain_errors_total",
				Help: "Total number of evaluations left unevaluated by a domain error",
			},
			[]string{"function"},
		),
		ReducedResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_reduced_precision_total",
				Help: "Total number of results delivered below the requested precision",
			},
			[]string{"function"},
		),
		RuleRewrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specfn_rule_rewrites_total",
				Help: "Total number of rewrite rule applications",
			},
			[]string{"owner", "kind"},
		),

		// Catalog metrics
		FunctionsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "specfn_functions_registered",
				Help: "Number of functions in the catalog",
			},
		),
		RulesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "specfn_rules_loaded",
				Help: "Number of rewrite rules in the catalog",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "specfn_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordEvaluation records a finished evaluation and the path that produced it
func (m *Metrics) RecordEvaluation(function, path string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(function, path).Inc()
	m.mu.Lock()
	m.snapshot.TotalEvaluations++
	m.mu.Unlock()
}

// RecordBackendCall records a backend call
func (m *Metrics) RecordBackendCall(backend, function, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(backend, function, status).Inc()
	m.BackendDuration.WithLabelValues(backend, function).Observe(duration.Seconds())
}

// RecordDomainError records an evaluation stopped by a domain error
func (m *Metrics) RecordDomainError(function string) {
	if m == nil {
		return
	}
	m.DomainErrors.WithLabelValues(function).Inc()
	m.mu.Lock()
	m.snapshot.DomainErrors++
	m.mu.Unlock()
}

// RecordReduced records a result delivered below the requested precision
func (m *Metrics) RecordReduced(function string) {
	if m == nil {
		return
	}
	m.ReducedResults.WithLabelValues(function).Inc()
	m.mu.Lock()
	m.snapshot.ReducedResults++
	m.mu.Unlock()
}

// RecordRewrite records a rule application; kind is "call" or "shape"
func (m *Metrics) RecordRewrite(owner, kind string) {
	if m == nil {
		return
	}
	m.RuleRewrites.WithLabelValues(owner, kind).Inc()
}

// SetCatalogSize sets the catalog gauges
func (m *Metrics) SetCatalogSize(functions, rules int) {
	m.FunctionsRegistered.Set(float64(functions))
	m.RulesLoaded.Set(float64(rules))
}
