// Package fuzzy implements a small Mamdani inference engine. Linguistic
// variables are sampled over a discrete universe, rules combine antecedent
// labels with OR (max), consequent terms are clipped by their activation and
// merged with max, and the aggregate is defuzzified by its centroid.
//
// An Engine is immutable once built and can be shared between callers.
package fuzzy
