package scenarios

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/fuzzycharge/core/charging"
	"github.com/kilianp07/fuzzycharge/infra/logger"
	"github.com/kilianp07/fuzzycharge/infra/metrics"
)

const outputTolerance = 1e-6

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cfg := sc.Conditions.ToConfig()
	sim, err := charging.NewSimulator(cfg,
		charging.WithLogger(logger.NopLogger{}),
		charging.WithMetrics(sink),
	)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	res, err := sim.Simulate(cfg)

	outcome := "completed"
	if errors.Is(err, charging.ErrSimulationStalled) {
		outcome = "stalled"
	} else if err != nil {
		outcome = "failed"
	}
	if outcome != sc.Expected.Outcome {
		t.Fatalf("scenario %s expected outcome %s, got %s (%v)", sc.Name, sc.Expected.Outcome, outcome, err)
	}

	exp := sc.Expected
	if exp.Seconds > 0 {
		if d := res.ElapsedSeconds() - exp.Seconds; d < -exp.Tolerance || d > exp.Tolerance {
			t.Errorf("scenario %s expected %d±%d seconds, got %d", sc.Name, exp.Seconds, exp.Tolerance, res.ElapsedSeconds())
		}
	}
	if exp.FinalSoC != nil && res.FinalSoC() < *exp.FinalSoC {
		t.Errorf("scenario %s expected final soc >= %v, got %v", sc.Name, *exp.FinalSoC, res.FinalSoC())
	}
	checkFirst(t, sc.Name, "voltage", res.Voltage, exp.FirstVoltage)
	checkFirst(t, sc.Name, "current", res.Current, exp.FirstCurrent)

	expected := fmt.Sprintf(`
# HELP fuzzycharge_runs_total Number of charging simulations by outcome
# TYPE fuzzycharge_runs_total counter
fuzzycharge_runs_total{outcome=%q} 1
`, outcome)
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "fuzzycharge_runs_total"); err != nil {
		t.Errorf("scenario %s metrics: %v", sc.Name, err)
	}
}

func checkFirst(t *testing.T, name, what string, series []float64, want *float64) {
	t.Helper()
	if want == nil {
		return
	}
	if len(series) == 0 {
		t.Errorf("scenario %s has no %s samples", name, what)
		return
	}
	if math.Abs(series[0]-*want) > outputTolerance {
		t.Errorf("scenario %s expected first %s %v, got %v", name, what, *want, series[0])
	}
}
