package fuzzy

import (
	"fmt"
	"strings"
)

// Clause references a label of a variable.
type Clause struct {
	Variable string
	Label    string
}

// Is builds a Clause, reading as fuzzy.Is("soc", "low").
func Is(variable, label string) Clause {
	return Clause{Variable: variable, Label: label}
}

func (c Clause) String() string { return c.Variable + "[" + c.Label + "]" }

// Rule is a disjunction of antecedent clauses implying one consequent clause.
type Rule struct {
	Name string
	If   []Clause
	Then Clause
}

// Degrees holds fuzzified inputs keyed by variable then label.
type Degrees map[string]map[string]float64

// FiringStrength returns the max of the referenced antecedent degrees.
// Unknown clauses contribute zero.
func (r Rule) FiringStrength(d Degrees) float64 {
	strength := 0.0
	for _, c := range r.If {
		if deg := d[c.Variable][c.Label]; deg > strength {
			strength = deg
		}
	}
	return strength
}

func (r Rule) String() string {
	parts := make([]string, len(r.If))
	for i, c := range r.If {
		parts[i] = c.String()
	}
	return fmt.Sprintf("IF %s THEN %s", strings.Join(parts, " OR "), r.Then)
}
