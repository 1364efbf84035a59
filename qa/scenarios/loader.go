package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/fuzzycharge/core/charging"
)

// ConditionsDef overrides the charging conditions of the reference run.
// Unset fields keep the reference value.
type ConditionsDef struct {
	Temperature *float64 `yaml:"temperature,omitempty"`
	Using       *float64 `yaml:"using,omitempty"`
	CapacityMAh *float64 `yaml:"capacity_mah,omitempty"`
	SoCInit     *float64 `yaml:"soc_init,omitempty"`
	SoCTarget   *float64 `yaml:"soc_target,omitempty"`
	MaxSteps    *int     `yaml:"max_steps,omitempty"`
	Strict      bool     `yaml:"strict,omitempty"`
}

// ToConfig applies the overrides to the reference configuration.
func (c ConditionsDef) ToConfig() charging.Config {
	cfg := charging.DefaultConfig()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.Conditions.Temperature, c.Temperature)
	set(&cfg.Conditions.Utilization, c.Using)
	set(&cfg.Battery.CapacityMAh, c.CapacityMAh)
	set(&cfg.SoCInit, c.SoCInit)
	set(&cfg.SoCTarget, c.SoCTarget)
	if c.MaxSteps != nil {
		cfg.MaxSteps = *c.MaxSteps
	}
	cfg.StrictDomain = c.Strict
	return cfg
}

// Expected describes the outcome a scenario must reach. Zero values are not
// checked.
type Expected struct {
	Outcome   string   `yaml:"outcome"`
	Seconds   int      `yaml:"seconds,omitempty"`
	Tolerance int      `yaml:"tolerance,omitempty"`
	FinalSoC  *float64 `yaml:"min_final_soc,omitempty"`
	// FirstVoltage and FirstCurrent are the controller outputs of second zero.
	FirstVoltage *float64 `yaml:"first_voltage,omitempty"`
	FirstCurrent *float64 `yaml:"first_current,omitempty"`
}

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Conditions  ConditionsDef `yaml:"conditions"`
	Expected    Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Expected.Outcome == "" {
		sc.Expected.Outcome = "completed"
	}
	return &sc, nil
}
