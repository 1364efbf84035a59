package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/fuzzycharge/core/metrics"
)

var (
	_ coremetrics.MetricsSink        = (*PromSink)(nil)
	_ coremetrics.TrajectoryRecorder = (*PromSink)(nil)
	_ coremetrics.MetricsSink        = (*InfluxSink)(nil)
	_ coremetrics.TrajectoryRecorder = (*InfluxSink)(nil)
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		RunID:    "r1",
		Outcome:  coremetrics.OutcomeCompleted,
		Steps:    3212,
		FinalSoC: 100.01,
		Duration: 20 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		RunID:    "r2",
		Outcome:  coremetrics.OutcomeStalled,
		Steps:    10,
		FinalSoC: 42,
	}))

	expected := `
# HELP fuzzycharge_runs_total Number of charging simulations by outcome
# TYPE fuzzycharge_runs_total counter
fuzzycharge_runs_total{outcome="completed"} 1
fuzzycharge_runs_total{outcome="stalled"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	// only completed runs contribute a charge time
	assert.Equal(t, 1, testutil.CollectAndCount(sink.chargeTime))
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.finalSoC))
}

func TestPromSink_RecordTrajectory(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	samples := []coremetrics.StepSample{
		{Second: 0, SoC: 0, VoltageV: 10.9, CurrentA: 1.8},
		{Second: 1, SoC: 0.03, VoltageV: 10.8, CurrentA: 1.7},
	}
	require.NoError(t, sink.RecordTrajectory("r1", time.Now(), samples))

	assert.Equal(t, 10.8, testutil.ToFloat64(sink.lastVoltage))
	assert.Equal(t, 1.7, testutil.ToFloat64(sink.lastCurrent))

	expected := `
# HELP fuzzycharge_last_current_amperes Controller current at the last simulated second
# TYPE fuzzycharge_last_current_amperes gauge
fuzzycharge_last_current_amperes 1.7
`
	if err := testutil.CollectAndCompare(sink.lastCurrent, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_EmptyTrajectory(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, sink.RecordTrajectory("r1", time.Now(), nil))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.lastVoltage))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordRun(coremetrics.RunEvent{Outcome: coremetrics.OutcomeFailed}))
	require.NoError(t, second.RecordRun(coremetrics.RunEvent{Outcome: coremetrics.OutcomeFailed}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.runs.WithLabelValues("failed")))
}
