package charging

import (
	"fmt"

	"github.com/kilianp07/fuzzycharge/core/fuzzy"
)

// Variable names of the charging rule base.
const (
	VarSoC         = "soc"
	VarTemperature = "temperature"
	VarUsing       = "using"
	VarVoltage     = "charge_u"
	VarCurrent     = "charge_i"
)

const (
	low    = "low"
	medium = "medium"
	high   = "high"
)

// ruleTable maps a condition level, shared by SoC, temperature and
// utilisation, to the voltage and current labels it implies. The current
// column is deliberately not the mirror of the voltage column.
var ruleTable = []struct {
	when    string
	voltage string
	current string
}{
	{when: low, voltage: high, current: medium},
	{when: medium, voltage: medium, current: high},
	{when: high, voltage: low, current: low},
}

// Controller is the fuzzy charging controller. It is built once per set of
// Limits and is safe for concurrent use.
type Controller struct {
	engine *fuzzy.Engine
	limits Limits
}

// NewController builds the input variables, the voltage and current outputs
// spanning limits and the six charging rules.
func NewController(limits Limits, opts ...fuzzy.Option) (*Controller, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	vars, err := chargingVariables(limits)
	if err != nil {
		return nil, err
	}
	engine, err := fuzzy.NewEngine(vars, chargingRules(), opts...)
	if err != nil {
		return nil, err
	}
	return &Controller{engine: engine, limits: limits}, nil
}

// Evaluate returns the charging voltage and current for the given state.
func (c *Controller) Evaluate(soc, temperature, using float64) (voltage, current float64, err error) {
	inf, err := c.Explain(soc, temperature, using)
	if err != nil {
		return 0, 0, err
	}
	return inf.Outputs[VarVoltage], inf.Outputs[VarCurrent], nil
}

// Explain evaluates the controller and returns the full inference trace.
func (c *Controller) Explain(soc, temperature, using float64) (fuzzy.Inference, error) {
	return c.engine.Infer(map[string]float64{
		VarSoC:         soc,
		VarTemperature: temperature,
		VarUsing:       using,
	})
}

// Rules returns the rule base in evaluation order.
func (c *Controller) Rules() []fuzzy.Rule { return c.engine.Rules() }

// Limits returns the output ranges the controller was built with.
func (c *Controller) Limits() Limits { return c.limits }

func chargingVariables(l Limits) ([]*fuzzy.Variable, error) {
	soc := fuzzy.NewAntecedent(VarSoC, fuzzy.Universe{Start: 0, Stop: 101, Step: 1})
	temp := fuzzy.NewAntecedent(VarTemperature, fuzzy.Universe{Start: 15, Stop: 75, Step: 1})
	using := fuzzy.NewAntecedent(VarUsing, fuzzy.Universe{Start: 1, Stop: 101, Step: 1})
	voltage := fuzzy.NewConsequent(VarVoltage, l.voltageUniverse())
	current := fuzzy.NewConsequent(VarCurrent, l.currentUniverse())

	terms := []struct {
		v     *fuzzy.Variable
		label string
		mf    fuzzy.MembershipFunc
	}{
		{soc, low, fuzzy.Triangular{A: 0, B: 0, C: 33}},
		{soc, medium, fuzzy.Triangular{A: 30, B: 50, C: 70}},
		{soc, high, fuzzy.Triangular{A: 67, B: 100, C: 100}},
		{temp, low, fuzzy.Trapezoidal{A: 15, B: 15, C: 25, D: 35}},
		{temp, medium, fuzzy.Triangular{A: 25, B: 40, C: 55}},
		{temp, high, fuzzy.Trapezoidal{A: 45, B: 60, C: 75, D: 75}},
		{using, low, fuzzy.Triangular{A: 1, B: 1, C: 33}},
		{using, medium, fuzzy.Triangular{A: 30, B: 50, C: 70}},
		{using, high, fuzzy.Triangular{A: 67, B: 100, C: 100}},
	}
	for _, t := range terms {
		if err := t.v.AddTerm(t.label, t.mf); err != nil {
			return nil, err
		}
	}
	for _, out := range []struct {
		v      *fuzzy.Variable
		lo, hi float64
	}{
		{voltage, l.VoltageMin, l.VoltageMax},
		{current, l.CurrentMin, l.CurrentMax},
	} {
		if err := addOutputTerms(out.v, out.lo, out.hi); err != nil {
			return nil, err
		}
	}
	return []*fuzzy.Variable{soc, temp, using, voltage, current}, nil
}

// addOutputTerms splits [lo, hi] in thirds. The medium term is narrowed and
// shifted down by a sixth of a third.
func addOutputTerms(v *fuzzy.Variable, lo, hi float64) error {
	delta := (hi - lo) / 3
	shift := delta / 6
	mfs := []struct {
		label   string
		a, b, c float64
	}{
		{low, lo, lo, lo + delta},
		{medium, lo + delta - shift, (lo + hi) / 2, hi - delta - shift},
		{high, hi - delta, hi, hi},
	}
	for _, m := range mfs {
		mf, err := fuzzy.NewTriangular(m.a, m.b, m.c)
		if err != nil {
			return fmt.Errorf("%s[%s]: %w", v.Name(), m.label, err)
		}
		if err := v.AddTerm(m.label, mf); err != nil {
			return err
		}
	}
	return nil
}

func chargingRules() []fuzzy.Rule {
	rules := make([]fuzzy.Rule, 0, 2*len(ruleTable))
	when := func(level string) []fuzzy.Clause {
		return []fuzzy.Clause{
			fuzzy.Is(VarSoC, level),
			fuzzy.Is(VarTemperature, level),
			fuzzy.Is(VarUsing, level),
		}
	}
	for _, r := range ruleTable {
		rules = append(rules, fuzzy.Rule{
			Name: "voltage-" + r.when,
			If:   when(r.when),
			Then: fuzzy.Is(VarVoltage, r.voltage),
		})
	}
	for _, r := range ruleTable {
		rules = append(rules, fuzzy.Rule{
			Name: "current-" + r.when,
			If:   when(r.when),
			Then: fuzzy.Is(VarCurrent, r.current),
		})
	}
	return rules
}
