package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	flagsFiredTotal *prometheus.CounterVec
	riskLevelTotal  *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dscan",
			Subsystem: "worker",
			Name:      "scan_process_total",
			Help:      "Total processed scans by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dscan",
			Subsystem: "worker",
			Name:      "scan_process_duration_seconds",
			Help:      "Scan processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dscan",
			Subsystem: "worker",
			Name:      "scan_process_in_flight",
			Help:      "Number of in-flight scan analyses.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dscan",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between scan submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	flagsFiredTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dscan",
			Subsystem: "detector",
			Name:      "flags_fired_total",
			Help:      "Total suspicious-feature flags fired by flag tag.",
		},
		[]string{"service", "flag"},
	)
	riskLevelTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dscan",
			Subsystem: "detector",
			Name:      "risk_level_total",
			Help:      "Total completed scans by assigned risk level.",
		},
		[]string{"service", "level"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, flagsFiredTotal, riskLevelTotal)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		flagsFiredTotal: flagsFiredTotal,
		riskLevelTotal:  riskLevelTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartScan() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishScan(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordDetection(service string, result *domain.ScanResult) {
	if result == nil {
		return
	}
	for _, flag := range result.Flags {
		m.flagsFiredTotal.WithLabelValues(service, string(flag.Tag)).Inc()
	}
	if result.RiskLevel != "" {
		m.riskLevelTotal.WithLabelValues(service, string(result.RiskLevel)).Inc()
	}
}
