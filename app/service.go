package app

import (
	"context"
	"fmt"
	"io"

	"github.com/kilianp07/fuzzycharge/config"
	"github.com/kilianp07/fuzzycharge/core/charging"
	"github.com/kilianp07/fuzzycharge/core/factory"
	coremetrics "github.com/kilianp07/fuzzycharge/core/metrics"
	"github.com/kilianp07/fuzzycharge/infra/logger"
	"github.com/kilianp07/fuzzycharge/infra/metrics"
)

// Service wires the configured metrics sinks into a simulator.
type Service struct {
	Simulator   *charging.Simulator
	sink        coremetrics.MetricsSink
	log         logger.Logger
	metricsAddr string
}

// New creates a Service from the configuration. A non-empty metricsAddr
// enables the Prometheus sink and its HTTP endpoint.
func New(cfg *config.Config, metricsAddr string) (*Service, error) {
	logg := logger.New("service")
	sinkCfgs := cfg.Metrics.Sinks
	if metricsAddr != "" && !hasSink(sinkCfgs, "prometheus") {
		sinkCfgs = append(append([]factory.ModuleConfig(nil), sinkCfgs...), factory.ModuleConfig{Type: "prometheus"})
	}
	sink, err := coremetrics.NewMetricsSink(sinkCfgs)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	sim, err := charging.NewSimulator(cfg.Simulation,
		charging.WithLogger(logger.New("simulator")),
		charging.WithMetrics(sink),
	)
	if err != nil {
		_ = closeSink(sink)
		return nil, err
	}
	return &Service{Simulator: sim, sink: sink, log: logg, metricsAddr: metricsAddr}, nil
}

func hasSink(cfgs []factory.ModuleConfig, typ string) bool {
	for _, c := range cfgs {
		if c.Type == typ {
			return true
		}
	}
	return false
}

// Simulate runs one simulation with the service's sinks attached.
func (s *Service) Simulate(cfg charging.Config) (charging.Result, error) {
	return s.Simulator.Simulate(cfg)
}

// Serve exposes the Prometheus endpoint until the context is cancelled. It
// returns immediately when no metrics address was configured.
func (s *Service) Serve(ctx context.Context) error {
	if s.metricsAddr == "" {
		return nil
	}
	s.log.Infof("serving metrics on %s", s.metricsAddr)
	if err := metrics.StartPromServer(ctx, s.metricsAddr); err != nil {
		return fmt.Errorf("prom server: %w", err)
	}
	return nil
}

// Close releases resources held by the sinks.
func (s *Service) Close() error { return closeSink(s.sink) }

func closeSink(sink coremetrics.MetricsSink) error {
	if c, ok := sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
