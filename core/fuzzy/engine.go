package fuzzy

import (
	"fmt"
	"math"
)

// Engine evaluates a fixed rule base over a fixed set of variables.
type Engine struct {
	inputs  []*Variable
	outputs []*output
	vars    map[string]*Variable
	rules   []Rule
	strict  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrictDomain makes inputs outside their universe fail with
// ErrOutOfDomain instead of being clamped to the nearest bound.
func WithStrictDomain() Option {
	return func(e *Engine) { e.strict = true }
}

// Inference is the trace of a single evaluation.
type Inference struct {
	// Inputs are the crisp values actually fuzzified, after clamping.
	Inputs  map[string]float64
	Degrees Degrees
	// Strengths holds the firing strength of every rule keyed by rule name.
	Strengths map[string]float64
	// Activations holds the clip level of every consequent label that at
	// least one rule targets, keyed by variable then label.
	Activations map[string]map[string]float64
	Outputs     map[string]float64
}

// NewEngine validates the variables and rules and pre-samples the
// consequent terms. The engine keeps its own copy of every variable, so
// terms added to vars afterwards are not seen by it.
func NewEngine(vars []*Variable, rules []Rule, opts ...Option) (*Engine, error) {
	e := &Engine{vars: make(map[string]*Variable, len(vars))}
	for _, o := range opts {
		o(e)
	}
	for _, v := range vars {
		if v == nil {
			return nil, fmt.Errorf("nil variable")
		}
		if _, dup := e.vars[v.name]; dup {
			return nil, fmt.Errorf("duplicate variable %q", v.name)
		}
		if err := v.universe.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}
		if len(v.terms) == 0 {
			return nil, fmt.Errorf("%s: no terms defined", v.name)
		}
		v = v.clone()
		e.vars[v.name] = v
		switch v.kind {
		case Antecedent:
			e.inputs = append(e.inputs, v)
		case Consequent:
			out, err := newOutput(v)
			if err != nil {
				return nil, err
			}
			e.outputs = append(e.outputs, out)
		default:
			return nil, fmt.Errorf("%s: unsupported kind %s", v.name, v.kind)
		}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule base is empty")
	}
	names := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule%d", i+1)
		}
		if _, dup := names[r.Name]; dup {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		names[r.Name] = struct{}{}
		if err := e.checkRule(r); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		e.rules = append(e.rules, r)
	}
	return e, nil
}

func (e *Engine) checkRule(r Rule) error {
	if len(r.If) == 0 {
		return fmt.Errorf("no antecedent clause")
	}
	for _, c := range r.If {
		if err := e.checkClause(c, Antecedent); err != nil {
			return err
		}
	}
	return e.checkClause(r.Then, Consequent)
}

func (e *Engine) checkClause(c Clause, kind Kind) error {
	v, ok := e.vars[c.Variable]
	if !ok {
		return fmt.Errorf("unknown variable %q", c.Variable)
	}
	if v.kind != kind {
		return fmt.Errorf("%s is a %s, want %s", c.Variable, v.kind, kind)
	}
	if _, ok := v.Term(c.Label); !ok {
		return fmt.Errorf("unknown term %s", c)
	}
	return nil
}

// Rules returns the rule base in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate returns the crisp value of every consequent for the given crisp
// antecedent values.
func (e *Engine) Evaluate(inputs map[string]float64) (map[string]float64, error) {
	inf, err := e.Infer(inputs)
	if err != nil {
		return nil, err
	}
	return inf.Outputs, nil
}

// Infer runs fuzzification, rule evaluation, aggregation and centroid
// defuzzification, returning every intermediate result. On error the
// returned Inference holds whatever was computed before the failure.
func (e *Engine) Infer(inputs map[string]float64) (Inference, error) {
	inf := Inference{
		Inputs:      make(map[string]float64, len(e.inputs)),
		Degrees:     make(Degrees, len(e.inputs)),
		Strengths:   make(map[string]float64, len(e.rules)),
		Activations: make(map[string]map[string]float64, len(e.outputs)),
		Outputs:     make(map[string]float64, len(e.outputs)),
	}
	for name := range inputs {
		if v, ok := e.vars[name]; !ok || v.kind != Antecedent {
			return inf, fmt.Errorf("unknown input %q", name)
		}
	}
	for _, v := range e.inputs {
		raw, ok := inputs[v.name]
		if !ok {
			return inf, fmt.Errorf("%w: %s", ErrMissingInput, v.name)
		}
		x, err := e.admit(v, raw)
		if err != nil {
			return inf, err
		}
		inf.Inputs[v.name] = x
		inf.Degrees[v.name] = v.Fuzzify(x)
	}

	for _, out := range e.outputs {
		inf.Activations[out.v.name] = make(map[string]float64)
	}
	for _, r := range e.rules {
		s := r.FiringStrength(inf.Degrees)
		inf.Strengths[r.Name] = s
		act := inf.Activations[r.Then.Variable]
		if cur, ok := act[r.Then.Label]; !ok || s > cur {
			act[r.Then.Label] = s
		}
	}

	for _, out := range e.outputs {
		xs, mu := out.aggregate(inf.Activations[out.v.name])
		y, err := centroid(xs, mu)
		if err != nil {
			return inf, fmt.Errorf("%s: %w", out.v.name, err)
		}
		inf.Outputs[out.v.name] = y
	}
	return inf, nil
}

func (e *Engine) admit(v *Variable, x float64) (float64, error) {
	u := v.universe
	if math.IsNaN(x) {
		return 0, fmt.Errorf("%w: %s is NaN", ErrOutOfDomain, v.name)
	}
	if u.Contains(x) {
		return x, nil
	}
	if e.strict {
		return 0, fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfDomain, v.name, x, u.Min(), u.Max())
	}
	return u.Clamp(x), nil
}
