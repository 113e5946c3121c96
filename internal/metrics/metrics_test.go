package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordWithoutPanic(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTaskLatency("wf1", "t1", 10*time.Millisecond, "succeeded")
	m.IncrementRetries("wf1", "t1")
	m.IncrementBlocked("wf1", "dependency_failed")
	m.IncrementCheckpoints("plan1", "budget_approval")
	m.SetQueueDepth(3)
	m.SetInflightTasks(2)
}

func TestMetricsDisableSuppressesRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Disable()
	m.RecordTaskLatency("wf1", "t1", time.Millisecond, "succeeded")
	m.Enable()
	assert.True(t, m.isEnabled())
}
