package metrics

import "time"

// Outcome classifies how a simulation run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStalled   Outcome = "stalled"
	OutcomeFailed    Outcome = "failed"
)

// RunEvent summarises one charging simulation.
type RunEvent struct {
	RunID       string
	Outcome     Outcome
	Steps       int
	SoCInit     float64
	SoCTarget   float64
	FinalSoC    float64
	Temperature float64
	Utilization float64
	// EnergyJ is the energy delivered to the battery over the run.
	EnergyJ float64
	Error   string
	// Duration is the wall-clock time spent computing the run.
	Duration time.Duration
	Time     time.Time
}

// StepSample is the controller output for one simulated second.
type StepSample struct {
	Second   int
	SoC      float64
	VoltageV float64
	CurrentA float64
}

// MetricsSink records simulation runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// TrajectoryRecorder is implemented by sinks that store the per-second
// samples of a run. start is the wall-clock time mapped to second zero.
type TrajectoryRecorder interface {
	RecordTrajectory(runID string, start time.Time, samples []StepSample) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                               { return nil }
func (NopSink) RecordTrajectory(string, time.Time, []StepSample) error { return nil }
