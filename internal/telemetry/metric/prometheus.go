package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "turbine"

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeInterrupted = "interrupted"
	OutcomeSetupError  = "setup_error"
)

// Registry holds all application metrics. A nil *Registry is valid and
// records nothing.
type Registry struct {
	registry *prometheus.Registry

	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	TasksTotal   *prometheus.CounterVec
	TaskDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all run and task metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),

		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),

		TasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "executions_total",
			Help:      "Task executions by final status.",
		}, []string{"status"}),

		TaskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "duration_seconds",
			Help:      "Task execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"task"}),
	}

	r.registry.MustRegister(r.RunsTotal, r.RunDuration, r.TasksTotal, r.TaskDuration)
	return r
}

// MustRegister adds extra collectors, such as a StorageCollector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ObserveRun records the outcome and wall time of one run.
func (r *Registry) ObserveRun(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunDuration.Observe(elapsed.Seconds())
}

// ObserveTask records one task execution. Skipped tasks count toward
// TasksTotal but add no duration sample.
func (r *Registry) ObserveTask(task, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.TasksTotal.WithLabelValues(status).Inc()
	if elapsed > 0 {
		r.TaskDuration.WithLabelValues(task).Observe(elapsed.Seconds())
	}
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
