package charging

import (
	"fmt"
	"math"

	"github.com/kilianp07/fuzzycharge/core/fuzzy"
)

// DefaultMaxSteps bounds a run to a little over eleven simulated days.
const DefaultMaxSteps = 1_000_000

// Battery describes the cell being charged.
type Battery struct {
	// CapacityMAh is the rated capacity in milliampere-hours.
	CapacityMAh float64 `json:"capacity_mah"`
	// NominalVoltage is the rated cell voltage in volts.
	NominalVoltage float64 `json:"nominal_voltage"`
}

// EnergyJoules returns the stored energy at full charge.
func (b Battery) EnergyJoules() float64 {
	return b.CapacityMAh * b.NominalVoltage * 3600 / 1000
}

// Limits bounds the controller outputs. The output universes are sampled
// from the minimum in Step increments, strictly below the maximum.
type Limits struct {
	VoltageMin  float64 `json:"voltage_min"`
	VoltageMax  float64 `json:"voltage_max"`
	VoltageStep float64 `json:"voltage_step"`
	CurrentMin  float64 `json:"current_min"`
	CurrentMax  float64 `json:"current_max"`
	CurrentStep float64 `json:"current_step"`
}

// Conditions are held constant for a whole run.
type Conditions struct {
	// Temperature is the battery temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`
	// Utilization is the device load in percent.
	Utilization float64 `json:"utilization"`
}

// Config holds every parameter of a simulation run.
type Config struct {
	Battery    Battery    `json:"battery"`
	Limits     Limits     `json:"limits"`
	Conditions Conditions `json:"conditions"`
	SoCInit    float64    `json:"soc_init"`
	SoCTarget  float64    `json:"soc_target"`
	// MaxSteps caps the number of simulated seconds.
	MaxSteps int `json:"max_steps"`
	// StrictDomain rejects controller inputs outside their universe instead
	// of clamping them.
	StrictDomain bool `json:"strict_domain"`
}

// DefaultConfig returns the reference 4500 mAh phone cell scenario.
func DefaultConfig() Config {
	return Config{
		Battery: Battery{CapacityMAh: 4500, NominalVoltage: 3.764},
		Limits: Limits{
			VoltageMin: 5, VoltageMax: 20, VoltageStep: 1,
			CurrentMin: 1.35, CurrentMax: 3, CurrentStep: 0.25,
		},
		Conditions: Conditions{Temperature: 61, Utilization: 21},
		SoCInit:    0,
		SoCTarget:  100,
		MaxSteps:   DefaultMaxSteps,
	}
}

// SetDefaults fills the fields whose zero value is never meaningful.
func (c *Config) SetDefaults() {
	if c.Limits.VoltageStep == 0 {
		c.Limits.VoltageStep = 1
	}
	if c.Limits.CurrentStep == 0 {
		c.Limits.CurrentStep = 0.25
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
}

// Validate checks the battery, limits and SoC bounds.
func (c Config) Validate() error {
	if !(c.Battery.CapacityMAh > 0) {
		return fmt.Errorf("battery capacity must be positive")
	}
	if !(c.Battery.NominalVoltage > 0) {
		return fmt.Errorf("nominal voltage must be positive")
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	for _, v := range []float64{c.Conditions.Temperature, c.Conditions.Utilization} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("conditions must be finite")
		}
	}
	if c.SoCInit < 0 || c.SoCInit > 100 {
		return fmt.Errorf("soc_init %v outside [0, 100]", c.SoCInit)
	}
	if !(c.SoCTarget > 0 && c.SoCTarget <= 100) {
		return fmt.Errorf("soc_target %v outside (0, 100]", c.SoCTarget)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive")
	}
	return nil
}

// Validate checks that both output ranges are non-empty.
func (l Limits) Validate() error {
	if !(l.VoltageMax > l.VoltageMin) {
		return fmt.Errorf("voltage range [%v, %v] is empty", l.VoltageMin, l.VoltageMax)
	}
	if !(l.CurrentMax > l.CurrentMin) {
		return fmt.Errorf("current range [%v, %v] is empty", l.CurrentMin, l.CurrentMax)
	}
	if !(l.VoltageStep > 0) || !(l.CurrentStep > 0) {
		return fmt.Errorf("voltage and current steps must be positive")
	}
	if err := l.voltageUniverse().Validate(); err != nil {
		return fmt.Errorf("voltage: %w", err)
	}
	if err := l.currentUniverse().Validate(); err != nil {
		return fmt.Errorf("current: %w", err)
	}
	return nil
}

func (l Limits) voltageUniverse() fuzzy.Universe {
	return fuzzy.Universe{Start: l.VoltageMin, Stop: l.VoltageMax, Step: l.VoltageStep}
}

func (l Limits) currentUniverse() fuzzy.Universe {
	return fuzzy.Universe{Start: l.CurrentMin, Stop: l.CurrentMax, Step: l.CurrentStep}
}
