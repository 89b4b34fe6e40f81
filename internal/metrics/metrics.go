// Package metrics records operational metrics from extraction runs behind a
// small backend-agnostic interface.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// pipeline can always record metrics whether or not a real backend is
// configured. Concrete metric systems live in subpackages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names shared with the backends.
const (
	CellTotal           = "s57extract_cells_total"
	CellDurationSeconds = "s57extract_cell_duration_seconds"
	StepTotal           = "s57extract_step_total"
	StepDurationSeconds = "s57extract_step_duration_seconds"
	RowsTotal           = "s57extract_rows_total"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() {
	backend = nopBackend{}
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordCell counts one processed cell by mode and terminal status
// (written, skipped, failed) and records how long it took.
func RecordCell(mode, status string, d time.Duration) {
	lbls := Labels{
		"mode":   mode,
		"status": status,
	}
	backend.IncCounter(CellTotal, 1, lbls)
	backend.ObserveHistogram(CellDurationSeconds, d.Seconds(), lbls)
}

// RecordStep measures latency and success/failure of one run step
// (discover, clear_output, open, write, ...).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds rows written to the output table for the given mode.
func RecordRows(mode string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"mode": mode,
	})
}
