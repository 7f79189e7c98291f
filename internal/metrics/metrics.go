// Package metrics records collection progress as Prometheus metrics and
// exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors for one process. A nil *Recorder ignores
// every call, so components can take one optionally.
type Recorder struct {
	registry *prometheus.Registry

	pages           *prometheus.CounterVec
	rows            *prometheus.CounterVec
	faults          *prometheus.CounterVec
	checkpointSaves prometheus.Counter
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytcomments_api_pages_total",
			Help: "API pages fetched, by list kind.",
		}, []string{"kind"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytcomments_rows_total",
			Help: "Comment rows collected, by kind.",
		}, []string{"kind"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytcomments_faults_total",
			Help: "Classified API faults.",
		}, []string{"fault"}),
		checkpointSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytcomments_checkpoint_writes_total",
			Help: "Checkpoint writes.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytcomments_runs_total",
			Help: "Finished collection runs, by stop reason.",
		}, []string{"reason"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ytcomments_run_duration_seconds",
			Help:    "Wall time of collection runs.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}),
	}

	for _, c := range []prometheus.Collector{
		r.pages,
		r.rows,
		r.faults,
		r.checkpointSaves,
		r.runs,
		r.runDuration,
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Page counts one fetched page ("threads" or "replies").
func (r *Recorder) Page(kind string) {
	if r == nil {
		return
	}
	r.pages.WithLabelValues(kind).Inc()
}

// Rows counts n collected rows ("top_level" or "reply").
func (r *Recorder) Rows(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rows.WithLabelValues(kind).Add(float64(n))
}

// Fault counts a classified fault ("quota", "pagination", "fatal").
func (r *Recorder) Fault(kind string) {
	if r == nil {
		return
	}
	r.faults.WithLabelValues(kind).Inc()
}

// CheckpointSaved counts a checkpoint write.
func (r *Recorder) CheckpointSaved() {
	if r == nil {
		return
	}
	r.checkpointSaves.Inc()
}

// RunFinished records the end of a run.
func (r *Recorder) RunFinished(reason string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(reason).Inc()
	r.runDuration.Observe(d.Seconds())
}

// WriteTextfile writes every metric to path atomically. An empty path or a
// nil Recorder is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
