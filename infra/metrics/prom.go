package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fuzzycharge/core/metrics"
)

// PromSink exposes simulation runs as Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	chargeTime  prometheus.Histogram
	runDuration prometheus.Histogram
	finalSoC    prometheus.Gauge
	voltage     prometheus.Histogram
	current     prometheus.Histogram
	lastVoltage prometheus.Gauge
	lastCurrent prometheus.Gauge
}

// NewPromSink registers the simulation metrics on the default registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fuzzycharge_runs_total",
		Help: "Number of charging simulations by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.chargeTime, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuzzycharge_charge_time_seconds",
		Help:    "Simulated seconds needed to reach the target state of charge",
		Buckets: prometheus.ExponentialBuckets(60, 2, 10),
	})); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuzzycharge_run_duration_seconds",
		Help:    "Wall-clock time spent computing a simulation",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.finalSoC, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fuzzycharge_final_soc_percent",
		Help: "State of charge at the end of the last run",
	})); err != nil {
		return nil, err
	}
	if s.voltage, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuzzycharge_charge_voltage_volts",
		Help:    "Distribution of the controller voltage over simulated seconds",
		Buckets: prometheus.LinearBuckets(5, 1, 16),
	})); err != nil {
		return nil, err
	}
	if s.current, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fuzzycharge_charge_current_amperes",
		Help:    "Distribution of the controller current over simulated seconds",
		Buckets: prometheus.LinearBuckets(1.25, 0.25, 8),
	})); err != nil {
		return nil, err
	}
	if s.lastVoltage, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fuzzycharge_last_voltage_volts",
		Help: "Controller voltage at the last simulated second",
	})); err != nil {
		return nil, err
	}
	if s.lastCurrent, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fuzzycharge_last_current_amperes",
		Help: "Controller current at the last simulated second",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun counts the run and, for completed runs, observes the charge time.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(string(ev.Outcome)).Inc()
	s.runDuration.Observe(ev.Duration.Seconds())
	s.finalSoC.Set(ev.FinalSoC)
	if ev.Outcome == coremetrics.OutcomeCompleted {
		s.chargeTime.Observe(float64(ev.Steps))
	}
	return nil
}

// RecordTrajectory observes every sample in the voltage and current
// histograms.
func (s *PromSink) RecordTrajectory(_ string, _ time.Time, samples []coremetrics.StepSample) error {
	for _, smp := range samples {
		s.voltage.Observe(smp.VoltageV)
		s.current.Observe(smp.CurrentA)
	}
	if n := len(samples); n > 0 {
		s.lastVoltage.Set(samples[n-1].VoltageV)
		s.lastCurrent.Set(samples[n-1].CurrentA)
	}
	return nil
}
