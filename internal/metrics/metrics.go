// Package metrics wraps the Prometheus client for the executor and
// planner, grounded on the teacher's PrometheusMetrics (graph/metrics.go)
// retargeted from per-node execution metrics to per-task/workflow ones.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus series for workflow execution:
//
//   - inflight_tasks (gauge): tasks currently running, labeled workflow_id.
//   - queue_depth (gauge): tasks pending admission, labeled workflow_id.
//   - task_latency_ms (histogram): task duration, labeled workflow_id,
//     task_id, status (succeeded/failed/blocked).
//   - retries_total (counter): retry attempts, labeled workflow_id, task_id.
//   - blocked_total (counter): tasks transitioned to blocked by a failed
//     dependency, labeled workflow_id, reason.
//   - checkpoint_total (counter): approval checkpoints minted, labeled
//     plan_id, reason.
//
// All namespaced "workgraph". Safe for concurrent use.
type Metrics struct {
	inflightTasks prometheus.Gauge
	queueDepth    prometheus.Gauge
	taskLatency   *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	blocked       *prometheus.CounterVec
	checkpoints   *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// New registers every series on registry (use prometheus.DefaultRegisterer
// for the global registry, or a fresh prometheus.NewRegistry() for test
// isolation).
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		inflightTasks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "workgraph",
			Name:      "inflight_tasks",
			Help:      "Current number of tasks executing concurrently",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "workgraph",
			Name:      "queue_depth",
			Help:      "Number of tasks pending admission into the scheduler",
		}),
		taskLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workgraph",
			Name:      "task_latency_ms",
			Help:      "Task execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
		}, []string{"workflow_id", "task_id", "status"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workgraph",
			Name:      "retries_total",
			Help:      "Cumulative task retry attempts",
		}, []string{"workflow_id", "task_id"}),
		blocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workgraph",
			Name:      "blocked_total",
			Help:      "Tasks transitioned to blocked by a failed dependency",
		}, []string{"workflow_id", "reason"}),
		checkpoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workgraph",
			Name:      "checkpoint_total",
			Help:      "Budget approval checkpoints minted",
		}, []string{"plan_id", "reason"}),
	}
}

func (m *Metrics) RecordTaskLatency(workflowID, taskID string, d time.Duration, status string) {
	if !m.isEnabled() {
		return
	}
	m.taskLatency.WithLabelValues(workflowID, taskID, status).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) IncrementRetries(workflowID, taskID string) {
	if !m.isEnabled() {
		return
	}
	m.retries.WithLabelValues(workflowID, taskID).Inc()
}

func (m *Metrics) IncrementBlocked(workflowID, reason string) {
	if !m.isEnabled() {
		return
	}
	m.blocked.WithLabelValues(workflowID, reason).Inc()
}

func (m *Metrics) IncrementCheckpoints(planID, reason string) {
	if !m.isEnabled() {
		return
	}
	m.checkpoints.WithLabelValues(planID, reason).Inc()
}

func (m *Metrics) SetQueueDepth(depth int) {
	if !m.isEnabled() {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) SetInflightTasks(count int) {
	if !m.isEnabled() {
		return
	}
	m.inflightTasks.Set(float64(count))
}

func (m *Metrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Disable stops recording (tests that don't care about metric overhead).
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
