package fuzzy

import "fmt"

// Kind distinguishes input variables from output variables.
type Kind int

const (
	// Antecedent variables receive crisp inputs.
	Antecedent Kind = iota
	// Consequent variables produce crisp outputs.
	Consequent
)

func (k Kind) String() string {
	switch k {
	case Antecedent:
		return "antecedent"
	case Consequent:
		return "consequent"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Term is a labelled membership function of a variable.
type Term struct {
	Label string
	MF    MembershipFunc
}

// Variable is a linguistic variable: a named universe with labelled terms.
// NewEngine copies the variables it is given.
type Variable struct {
	name     string
	kind     Kind
	universe Universe
	terms    []Term
}

// NewAntecedent returns an input variable over u.
func NewAntecedent(name string, u Universe) *Variable {
	return &Variable{name: name, kind: Antecedent, universe: u}
}

// NewConsequent returns an output variable over u.
func NewConsequent(name string, u Universe) *Variable {
	return &Variable{name: name, kind: Consequent, universe: u}
}

func (v *Variable) clone() *Variable {
	c := *v
	c.terms = append([]Term(nil), v.terms...)
	return &c
}

func (v *Variable) Name() string       { return v.name }
func (v *Variable) Kind() Kind         { return v.kind }
func (v *Variable) Universe() Universe { return v.universe }

// AddTerm registers mf under label. The function's support must lie within
// [Start, Stop] of the variable's universe.
func (v *Variable) AddTerm(label string, mf MembershipFunc) error {
	if label == "" || mf == nil {
		return fmt.Errorf("%s: term needs a label and a membership function", v.name)
	}
	if _, ok := v.Term(label); ok {
		return fmt.Errorf("%s: term %q already defined", v.name, label)
	}
	lo, hi := mf.Support()
	if lo < v.universe.Start || hi > v.universe.Stop {
		return fmt.Errorf("%s[%s]: support [%v, %v] outside universe [%v, %v]",
			v.name, label, lo, hi, v.universe.Start, v.universe.Stop)
	}
	v.terms = append(v.terms, Term{Label: label, MF: mf})
	return nil
}

// Term returns the membership function registered under label.
func (v *Variable) Term(label string) (MembershipFunc, bool) {
	for _, t := range v.terms {
		if t.Label == label {
			return t.MF, true
		}
	}
	return nil, false
}

// Labels returns the term labels in registration order.
func (v *Variable) Labels() []string {
	out := make([]string, len(v.terms))
	for i, t := range v.terms {
		out[i] = t.Label
	}
	return out
}

// Fuzzify returns the degree of x in every term of the variable.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	out := make(map[string]float64, len(v.terms))
	for _, t := range v.terms {
		out[t.Label] = t.MF.Degree(x)
	}
	return out
}

// Sample evaluates the term labelled label at every universe point.
func (v *Variable) Sample(label string) ([]float64, error) {
	mf, ok := v.Term(label)
	if !ok {
		return nil, fmt.Errorf("%s: unknown term %q", v.name, label)
	}
	pts := v.universe.Points()
	out := make([]float64, len(pts))
	for i, x := range pts {
		out[i] = mf.Degree(x)
	}
	return out, nil
}
