package charging

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fuzzycharge/core/metrics"
)

// Result holds the trajectories of a run. SoC has one more element than
// Voltage and Current: its first element is the initial state and element
// i+1 is the state after second i.
type Result struct {
	RunID   string    `json:"run_id"`
	SoC     []float64 `json:"soc"`
	Voltage []float64 `json:"voltage"`
	Current []float64 `json:"current"`
}

// ElapsedSeconds returns the number of simulated seconds.
func (r Result) ElapsedSeconds() int { return len(r.Voltage) }

// FinalSoC returns the last state of charge, or zero for an empty result.
func (r Result) FinalSoC() float64 {
	if len(r.SoC) == 0 {
		return 0
	}
	return r.SoC[len(r.SoC)-1]
}

// Samples pairs every simulated second with the SoC reached at its end.
func (r Result) Samples() []metrics.StepSample {
	out := make([]metrics.StepSample, len(r.Voltage))
	for i := range r.Voltage {
		out[i] = metrics.StepSample{
			Second:   i + 1,
			SoC:      r.SoC[i+1],
			VoltageV: r.Voltage[i],
			CurrentA: r.Current[i],
		}
	}
	return out
}

// Stats summarises the controller outputs of a run.
type Stats struct {
	VoltageMin  float64 `json:"voltage_min"`
	VoltageMean float64 `json:"voltage_mean"`
	VoltageMax  float64 `json:"voltage_max"`
	CurrentMin  float64 `json:"current_min"`
	CurrentMean float64 `json:"current_mean"`
	CurrentMax  float64 `json:"current_max"`
	// EnergyJ is the energy delivered, one second per step.
	EnergyJ float64 `json:"energy_j"`
}

// Stats returns summary statistics. A run without steps yields zero Stats.
func (r Result) Stats() Stats {
	if len(r.Voltage) == 0 {
		return Stats{}
	}
	power := make([]float64, len(r.Voltage))
	floats.MulTo(power, r.Voltage, r.Current)
	return Stats{
		VoltageMin:  floats.Min(r.Voltage),
		VoltageMean: stat.Mean(r.Voltage, nil),
		VoltageMax:  floats.Max(r.Voltage),
		CurrentMin:  floats.Min(r.Current),
		CurrentMean: stat.Mean(r.Current, nil),
		CurrentMax:  floats.Max(r.Current),
		EnergyJ:     floats.Sum(power),
	}
}
