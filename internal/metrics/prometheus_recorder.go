package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	requestOutcomes   *prom.CounterVec
	executorDuration  *prom.HistogramVec
	payloadSize       prom.Histogram
	executorsInFlight prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.requestOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildrunner",
			Name:      "request_outcomes_total",
			Help:      "Build request outcomes by terminal status",
		}, []string{"outcome"})
		pr.executorDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "buildrunner",
			Name:      "executor_duration_seconds",
			Help:      "Duration of executor subprocess runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"result"})
		pr.payloadSize = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildrunner",
			Name:      "payload_size_bytes",
			Help:      "Raw upload body sizes",
			Buckets:   prom.ExponentialBuckets(1024, 4, 10),
		})
		pr.executorsInFlight = prom.NewGauge(prom.GaugeOpts{
			Namespace: "buildrunner",
			Name:      "executors_in_flight",
			Help:      "Executor subprocesses currently running",
		})
		reg.MustRegister(pr.requestOutcomes, pr.executorDuration, pr.payloadSize, pr.executorsInFlight)
	})
	return pr
}

func (pr *PrometheusRecorder) IncRequestOutcome(outcome OutcomeLabel) {
	pr.requestOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (pr *PrometheusRecorder) ObserveExecutorDuration(d time.Duration, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	pr.executorDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObservePayloadSize(bytes int) {
	pr.payloadSize.Observe(float64(bytes))
}

func (pr *PrometheusRecorder) SetExecutorsInFlight(n int) {
	pr.executorsInFlight.Set(float64(n))
}
