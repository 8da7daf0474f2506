package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/scheduler"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the generation engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	completionRate  prometheus.Gauge
	qualityScore    prometheus.Gauge
	backtracks      prometheus.Counter
	altPatterns     prometheus.Counter
	depthLimitHits  prometheus.Counter
	relaxationsUsed prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total generation runs by outcome",
	}, []string{"outcome"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Wall-clock duration of generation runs",
		Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120},
	})

	completionRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_completion_rate",
		Help: "Completion rate of the most recent generation run (percent)",
	})

	qualityScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_quality_score",
		Help: "Validator quality score of the most recent run",
	})

	backtracks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_backtracks_total",
		Help: "Backtracking rollbacks performed across all runs",
	})

	altPatterns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_alternative_patterns_total",
		Help: "Placements that resorted to alternative block patterns",
	})

	depthLimitHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_depth_limit_hits_total",
		Help: "Snapshot pushes refused by the depth bound",
	})

	relaxationsUsed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_relaxations_total",
		Help: "Constraint relaxation steps taken across all runs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runsTotal, runDuration,
		completionRate, qualityScore, backtracks, altPatterns, depthLimitHits, relaxationsUsed, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		completionRate:  completionRate,
		qualityScore:    qualityScore,
		backtracks:      backtracks,
		altPatterns:     altPatterns,
		depthLimitHits:  depthLimitHits,
		relaxationsUsed: relaxationsUsed,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveRun records the outcome of one generation run.
func (m *MetricsService) ObserveRun(result *scheduler.Result, quality float64, failed bool) {
	if m == nil {
		return
	}
	outcome := "completed"
	if failed {
		outcome = "failed"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	if result == nil {
		return
	}
	m.runDuration.Observe(result.Elapsed.Seconds())
	m.completionRate.Set(result.CompletionRate)
	m.qualityScore.Set(quality)
	m.backtracks.Add(float64(result.Stats.Backtracks))
	m.altPatterns.Add(float64(result.Stats.AlternativePatterns))
	m.depthLimitHits.Add(float64(result.Stats.DepthLimitHits))
	m.relaxationsUsed.Add(float64(result.Stats.Relaxations))
}
