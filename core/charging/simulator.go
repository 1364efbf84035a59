package charging

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fuzzycharge/core/fuzzy"
	"github.com/kilianp07/fuzzycharge/core/logger"
	"github.com/kilianp07/fuzzycharge/core/metrics"
)

// ErrSimulationStalled is returned when the target SoC cannot be reached,
// either because the step cap was hit or because a step made no progress.
var ErrSimulationStalled = errors.New("simulation stalled")

// ErrConfigMismatch is returned when a run asks for controller settings
// other than the ones the simulator was built with.
var ErrConfigMismatch = errors.New("config does not match simulator")

// Simulator runs charging simulations against a single Controller.
type Simulator struct {
	ctrl   *Controller
	strict bool
	log    logger.Logger
	sink   metrics.MetricsSink
	now    func() time.Time
	ids    func() string
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithMetrics sets the sink receiving run events and trajectories.
func WithMetrics(m metrics.MetricsSink) Option {
	return func(s *Simulator) { s.sink = m }
}

// WithClock overrides the wall clock used to timestamp runs.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// NewSimulator builds the controller described by cfg. The controller is
// reused by every Simulate call.
func NewSimulator(cfg Config, opts ...Option) (*Simulator, error) {
	cfg.SetDefaults()
	var engineOpts []fuzzy.Option
	if cfg.StrictDomain {
		engineOpts = append(engineOpts, fuzzy.WithStrictDomain())
	}
	ctrl, err := NewController(cfg.Limits, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("build controller: %w", err)
	}
	s := &Simulator{
		ctrl:   ctrl,
		strict: cfg.StrictDomain,
		log:    nopLogger{},
		sink:   metrics.NopSink{},
		now:    time.Now,
		ids:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Controller returns the controller shared by the simulator's runs.
func (s *Simulator) Controller() *Controller { return s.ctrl }

// Simulate charges from cfg.SoCInit until cfg.SoCTarget, one second per
// step. cfg.Limits and cfg.StrictDomain must match the config given to
// NewSimulator, otherwise ErrConfigMismatch is returned and nothing runs.
// On error the steps computed so far are returned along with it.
func (s *Simulator) Simulate(cfg Config) (Result, error) {
	cfg.SetDefaults()
	res := Result{RunID: s.ids()}
	if err := cfg.Validate(); err != nil {
		return res, fmt.Errorf("invalid config: %w", err)
	}
	if err := s.checkConfig(cfg); err != nil {
		return res, err
	}
	start := s.now()
	s.log.Debugw("simulation started", map[string]any{
		"run_id":      res.RunID,
		"soc_init":    cfg.SoCInit,
		"soc_target":  cfg.SoCTarget,
		"temperature": cfg.Conditions.Temperature,
		"utilization": cfg.Conditions.Utilization,
	})

	err := s.run(cfg, &res)
	s.record(cfg, res, start, err)
	return res, err
}

func (s *Simulator) checkConfig(cfg Config) error {
	if l := s.ctrl.Limits(); cfg.Limits != l {
		return fmt.Errorf("%w: limits %+v, simulator built with %+v", ErrConfigMismatch, cfg.Limits, l)
	}
	if cfg.StrictDomain != s.strict {
		return fmt.Errorf("%w: strict domain %t, simulator built with %t", ErrConfigMismatch, cfg.StrictDomain, s.strict)
	}
	return nil
}

func (s *Simulator) run(cfg Config, res *Result) error {
	energy := cfg.Battery.EnergyJoules()
	soc := cfg.SoCInit
	res.SoC = append(res.SoC, soc)
	for soc < cfg.SoCTarget {
		step := len(res.Voltage)
		if step >= cfg.MaxSteps {
			return fmt.Errorf("%w: soc %.4f%% below target %.4f%% after %d steps",
				ErrSimulationStalled, soc, cfg.SoCTarget, step)
		}
		u, i, err := s.ctrl.Evaluate(soc, cfg.Conditions.Temperature, cfg.Conditions.Utilization)
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
		gain := SoCGain(u*i, energy)
		// The controller is deterministic, so a step without progress
		// would repeat forever.
		if !(gain > 0) || math.IsInf(gain, 0) {
			return fmt.Errorf("%w: step %d gains %v%% at soc %.4f%% (U=%.4f V, I=%.4f A)",
				ErrSimulationStalled, step, gain, soc, u, i)
		}
		soc += gain
		res.SoC = append(res.SoC, soc)
		res.Voltage = append(res.Voltage, u)
		res.Current = append(res.Current, i)
	}
	return nil
}

// SoCGain returns the percentage of capacity added by powerW watts applied
// for one second to a battery storing energyJ joules when full.
func SoCGain(powerW, energyJ float64) float64 {
	return powerW / energyJ * 100
}

func (s *Simulator) record(cfg Config, res Result, start time.Time, runErr error) {
	ev := metrics.RunEvent{
		RunID:       res.RunID,
		Outcome:     metrics.OutcomeCompleted,
		Steps:       res.ElapsedSeconds(),
		SoCInit:     cfg.SoCInit,
		SoCTarget:   cfg.SoCTarget,
		FinalSoC:    res.FinalSoC(),
		Temperature: cfg.Conditions.Temperature,
		Utilization: cfg.Conditions.Utilization,
		EnergyJ:     res.Stats().EnergyJ,
		Duration:    s.now().Sub(start),
		Time:        start,
	}
	switch {
	case errors.Is(runErr, ErrSimulationStalled):
		ev.Outcome = metrics.OutcomeStalled
		ev.Error = runErr.Error()
		s.log.Warnf("run %s stalled: %v", res.RunID, runErr)
	case runErr != nil:
		ev.Outcome = metrics.OutcomeFailed
		ev.Error = runErr.Error()
		s.log.Errorf("run %s failed: %v", res.RunID, runErr)
	default:
		s.log.Infow("simulation completed", map[string]any{
			"run_id":    res.RunID,
			"seconds":   ev.Steps,
			"final_soc": ev.FinalSoC,
		})
	}

	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record run %s: %v", res.RunID, err)
	}
	if rec, ok := s.sink.(metrics.TrajectoryRecorder); ok && len(res.Voltage) > 0 {
		if err := rec.RecordTrajectory(res.RunID, start, res.Samples()); err != nil {
			s.log.Errorf("record trajectory %s: %v", res.RunID, err)
		}
	}
}

// Simulate runs cfg on a fresh Simulator without logging or metrics.
func Simulate(cfg Config) (Result, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return Result{}, err
	}
	return s.Simulate(cfg)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
