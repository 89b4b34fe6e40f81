// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Cell, step and row metrics are kept in client_golang collectors on a private
// registry and pushed to a Pushgateway when the run ends, since an extraction
// run is a batch job with no scrape endpoint.
package prompush

import (
	"fmt"

	"github.com/beetlebugorg/s57extract/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	cellCounter  *prometheus.CounterVec
	cellDuration *prometheus.SummaryVec
	stepCounter  *prometheus.CounterVec
	stepDuration *prometheus.SummaryVec
	rowCounter   *prometheus.CounterVec
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "s57extract"
	}

	objectives := map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		cellCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.CellTotal,
				Help: "Chart cells processed, partitioned by mode and terminal status.",
			},
			[]string{"mode", "status"},
		),
		cellDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.CellDurationSeconds,
				Help:       "Time spent on one chart cell in seconds.",
				Objectives: objectives,
			},
			[]string{"mode", "status"},
		),
		stepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.StepTotal,
				Help: "Run step executions, partitioned by step and status.",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.StepDurationSeconds,
				Help:       "Duration of run steps in seconds, partitioned by step and status.",
				Objectives: objectives,
			},
			[]string{"step", "status"},
		),
		rowCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RowsTotal,
				Help: "Rows written to the output table, partitioned by mode.",
			},
			[]string{"mode"},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"cell counter": b.cellCounter,
		"cell summary": b.cellDuration,
		"step counter": b.stepCounter,
		"step summary": b.stepDuration,
		"row counter":   b.rowCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.CellTotal:
		b.cellCounter.WithLabelValues(labels["mode"], labels["status"]).Add(delta)
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.RowsTotal:
		b.rowCounter.WithLabelValues(labels["mode"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.CellDurationSeconds:
		b.cellDuration.WithLabelValues(labels["mode"], labels["status"]).Observe(value)
	case metrics.StepDurationSeconds:
		b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
