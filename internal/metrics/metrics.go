// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a CSV load.
//
// It exposes a narrow interface (Backend) for counters and timings, and a
// global, pluggable backend that defaults to a no-op implementation, so the
// Record* helpers are always safe to call. Concrete systems live in the
// prompush (Prometheus Pushgateway) and datadog (DogStatsD) subpackages.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StepTotal           = "csvload_step_total"
	StepDurationSeconds = "csvload_step_duration_seconds"
	RowsTotal           = "csvload_rows_total"
	RunsTotal           = "csvload_runs_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

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

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a load step ("parse", "transform",
// "create_table", "insert") and records its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a row-level counter for the given job and kind.
//
// Kinds used by the loader:
//   - "parsed"
//   - "null_dropped"
//   - "duplicate_dropped"
//   - "inserted"
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRun counts one complete load attempt and its outcome.
func RecordRun(job string, err error) {
	current().IncCounter(RunsTotal, 1, Labels{
		"job":    job,
		"status": status(err),
	})
}
