package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fuzzycharge/config"
	"github.com/kilianp07/fuzzycharge/core/factory"
	coremetrics "github.com/kilianp07/fuzzycharge/core/metrics"
)

func TestNew_DefaultsToNopSink(t *testing.T) {
	svc, err := New(config.Default(), "")
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()
	assert.IsType(t, coremetrics.NopSink{}, svc.sink)

	cfg := config.Default().Simulation
	cfg.SoCInit = 95
	res, err := svc.Simulate(cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.FinalSoC(), 100.0)
}

func TestNew_MetricsAddrAddsPrometheus(t *testing.T) {
	svc, err := New(config.Default(), "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()
	assert.NotEqual(t, coremetrics.NopSink{}, svc.sink)

	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	svc2, err := New(cfg, "127.0.0.1:0")
	require.NoError(t, err)
	m, ok := svc2.sink.(*coremetrics.MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 2)
	assert.Len(t, cfg.Metrics.Sinks, 1)
}

func TestNew_UnknownSink(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err := New(cfg, "")
	assert.ErrorContains(t, err, "metrics sink")
}

func TestServe_NoAddress(t *testing.T) {
	svc, err := New(config.Default(), "")
	require.NoError(t, err)
	assert.NoError(t, svc.Serve(context.Background()))
}

func TestHasSink(t *testing.T) {
	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "prometheus"}}
	assert.True(t, hasSink(cfgs, "prometheus"))
	assert.False(t, hasSink(cfgs, "influx"))
}
