package charging

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fuzzycharge/core/fuzzy"
	"github.com/kilianp07/fuzzycharge/core/metrics"
)

type captureSink struct {
	runs    []metrics.RunEvent
	samples []metrics.StepSample
	start   time.Time
}

func (c *captureSink) RecordRun(ev metrics.RunEvent) error {
	c.runs = append(c.runs, ev)
	return nil
}

func (c *captureSink) RecordTrajectory(_ string, start time.Time, s []metrics.StepSample) error {
	c.start = start
	c.samples = append(c.samples, s...)
	return nil
}

type captureLogger struct{ lines []string }

func (l *captureLogger) add(level, msg string)             { l.lines = append(l.lines, level+": "+msg) }
func (l *captureLogger) Debugf(f string, a ...any)         { l.add("debug", fmt.Sprintf(f, a...)) }
func (l *captureLogger) Debugw(m string, _ map[string]any) { l.add("debug", m) }
func (l *captureLogger) Infof(f string, a ...any)          { l.add("info", fmt.Sprintf(f, a...)) }
func (l *captureLogger) Infow(m string, _ map[string]any)  { l.add("info", m) }
func (l *captureLogger) Warnf(f string, a ...any)          { l.add("warn", fmt.Sprintf(f, a...)) }
func (l *captureLogger) Errorf(f string, a ...any)         { l.add("error", fmt.Sprintf(f, a...)) }

func TestSimulate_ReferenceRun(t *testing.T) {
	res, err := Simulate(DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 3212, res.ElapsedSeconds(), 1)
	assert.Len(t, res.SoC, res.ElapsedSeconds()+1)
	assert.Len(t, res.Current, res.ElapsedSeconds())
	assert.GreaterOrEqual(t, res.FinalSoC(), 100.0)
	assert.Less(t, res.SoC[len(res.SoC)-2], 100.0)
	assert.Equal(t, 0.0, res.SoC[0])

	assert.InDelta(t, 10.959349593495935, res.Voltage[0], 1e-9)
	assert.InDelta(t, 1.78844696969697, res.Current[0], 1e-9)
	for i := 1; i < len(res.SoC); i++ {
		require.Greater(t, res.SoC[i], res.SoC[i-1], "step %d", i)
	}
}

func TestSimulate_SoCGainMatchesPower(t *testing.T) {
	cfg := DefaultConfig()
	res, err := Simulate(cfg)
	require.NoError(t, err)
	energy := cfg.Battery.EnergyJoules()
	assert.InDelta(t, 60976.8, energy, 1e-9)
	for i := range res.Voltage {
		gain := res.SoC[i+1] - res.SoC[i]
		assert.InDelta(t, res.Voltage[i]*res.Current[i]/energy*100, gain, 1e-9)
	}
}

func TestSimulate_PartialRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SoCInit, cfg.SoCTarget = 50, 80
	cfg.Conditions = Conditions{Temperature: 30, Utilization: 40}
	res, err := Simulate(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 597, res.ElapsedSeconds(), 1)
	assert.GreaterOrEqual(t, res.FinalSoC(), 80.0)
}

func TestSimulate_Deterministic(t *testing.T) {
	sim, err := NewSimulator(DefaultConfig())
	require.NoError(t, err)
	a, err := sim.Simulate(DefaultConfig())
	require.NoError(t, err)
	b, err := sim.Simulate(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a.SoC, b.SoC)
	assert.Equal(t, a.Voltage, b.Voltage)
	assert.Equal(t, a.Current, b.Current)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestSimulate_StepCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 100
	sink := &captureSink{}
	log := &captureLogger{}
	sim, err := NewSimulator(cfg, WithMetrics(sink), WithLogger(log))
	require.NoError(t, err)

	res, err := sim.Simulate(cfg)
	require.ErrorIs(t, err, ErrSimulationStalled)
	assert.Equal(t, 100, res.ElapsedSeconds())
	assert.Len(t, res.SoC, 101)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, metrics.OutcomeStalled, sink.runs[0].Outcome)
	assert.Equal(t, 100, sink.runs[0].Steps)
	assert.Len(t, sink.samples, 100)
	assert.Contains(t, log.lines[len(log.lines)-1], "warn: run")
}

func TestSimulate_NoProgressStalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.CurrentMin, cfg.Limits.CurrentMax = -3, -1.35
	res, err := Simulate(cfg)
	require.ErrorIs(t, err, ErrSimulationStalled)
	assert.Equal(t, 0, res.ElapsedSeconds())
	assert.Equal(t, []float64{0}, res.SoC)
}

func TestSimulate_AlreadyAtTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SoCInit = 100
	res, err := Simulate(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ElapsedSeconds())
	assert.Equal(t, []float64{100}, res.SoC)
	assert.Equal(t, Stats{}, res.Stats())
}

func TestSimulate_StrictDomainFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictDomain = true
	cfg.Conditions.Temperature = 80
	sink := &captureSink{}
	sim, err := NewSimulator(cfg, WithMetrics(sink))
	require.NoError(t, err)
	_, err = sim.Simulate(cfg)
	require.ErrorIs(t, err, fuzzy.ErrOutOfDomain)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, metrics.OutcomeFailed, sink.runs[0].Outcome)
	assert.Empty(t, sink.samples)
}

func TestSimulate_RecordsRun(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.SoCInit, cfg.SoCTarget = 90, 95
	sim, err := NewSimulator(cfg, WithMetrics(sink), WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)
	res, err := sim.Simulate(cfg)
	require.NoError(t, err)

	require.Len(t, sink.runs, 1)
	ev := sink.runs[0]
	assert.Equal(t, res.RunID, ev.RunID)
	assert.Equal(t, metrics.OutcomeCompleted, ev.Outcome)
	assert.Equal(t, res.ElapsedSeconds(), ev.Steps)
	assert.Equal(t, res.FinalSoC(), ev.FinalSoC)
	assert.Equal(t, t0, ev.Time)
	assert.InDelta(t, (res.FinalSoC()-90)/100*cfg.Battery.EnergyJoules(), ev.EnergyJ, 1e-6)
	assert.Equal(t, t0, sink.start)
	require.Len(t, sink.samples, res.ElapsedSeconds())
	assert.Equal(t, 1, sink.samples[0].Second)
	assert.Equal(t, res.SoC[1], sink.samples[0].SoC)
}

func TestSimulate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)
	cfg.Battery.CapacityMAh = 0
	_, err = sim.Simulate(cfg)
	assert.ErrorContains(t, err, "capacity")
}

func TestSimulate_RejectsOtherLimits(t *testing.T) {
	sink := &captureSink{}
	sim, err := NewSimulator(DefaultConfig(), WithMetrics(sink))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Limits.VoltageMin, cfg.Limits.VoltageMax = 8, 12
	res, err := sim.Simulate(cfg)
	require.ErrorIs(t, err, ErrConfigMismatch)
	assert.Empty(t, res.Voltage)
	assert.Empty(t, sink.runs)
}

func TestSimulate_RejectsOtherStrictDomain(t *testing.T) {
	sim, err := NewSimulator(DefaultConfig())
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.StrictDomain = true
	cfg.Conditions.Temperature = 80
	_, err = sim.Simulate(cfg)
	require.ErrorIs(t, err, ErrConfigMismatch)

	strict := DefaultConfig()
	strict.StrictDomain = true
	sim, err = NewSimulator(strict)
	require.NoError(t, err)
	_, err = sim.Simulate(DefaultConfig())
	assert.ErrorIs(t, err, ErrConfigMismatch)
}

func TestSimulate_CustomLimitsRespected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.VoltageMin, cfg.Limits.VoltageMax = 8, 12
	cfg.SoCInit = 90
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	// Step defaults are filled on both sides.
	cfg.Limits.VoltageStep, cfg.Limits.CurrentStep = 0, 0
	res, err := sim.Simulate(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Voltage)
	for _, u := range res.Voltage {
		assert.GreaterOrEqual(t, u, 8.0)
		assert.Less(t, u, 12.0)
	}
}

func TestResult_Stats(t *testing.T) {
	r := Result{
		SoC:     []float64{0, 1, 2},
		Voltage: []float64{10, 12},
		Current: []float64{2, 1},
	}
	st := r.Stats()
	assert.Equal(t, 10.0, st.VoltageMin)
	assert.Equal(t, 11.0, st.VoltageMean)
	assert.Equal(t, 12.0, st.VoltageMax)
	assert.Equal(t, 1.5, st.CurrentMean)
	assert.Equal(t, 32.0, st.EnergyJ)
	assert.Equal(t, 2.0, r.FinalSoC())
	assert.Equal(t, 0.0, Result{}.FinalSoC())
}
