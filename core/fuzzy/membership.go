package fuzzy

import "fmt"

// MembershipFunc maps a point of a universe to a degree in [0, 1].
type MembershipFunc interface {
	Degree(x float64) float64
	// Support returns the interval outside of which the degree is zero.
	Support() (lo, hi float64)
}

// Triangular is a piecewise linear function rising from A to a peak at B and
// falling back to zero at C. A == B or B == C gives a shoulder.
type Triangular struct {
	A, B, C float64
}

// NewTriangular returns a triangular function with a <= b <= c.
func NewTriangular(a, b, c float64) (Triangular, error) {
	if !(a <= b && b <= c) {
		return Triangular{}, fmt.Errorf("%w: triangular(%v, %v, %v)", ErrInvalidBreakpoints, a, b, c)
	}
	return Triangular{A: a, B: b, C: c}, nil
}

func (t Triangular) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x == t.B:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

func (t Triangular) Support() (float64, float64) { return t.A, t.C }

func (t Triangular) String() string {
	return fmt.Sprintf("trimf(%g, %g, %g)", t.A, t.B, t.C)
}

// Trapezoidal rises from A to B, holds 1 on [B, C] and falls to zero at D.
type Trapezoidal struct {
	A, B, C, D float64
}

// NewTrapezoidal returns a trapezoidal function with a <= b <= c <= d.
func NewTrapezoidal(a, b, c, d float64) (Trapezoidal, error) {
	if !(a <= b && b <= c && c <= d) {
		return Trapezoidal{}, fmt.Errorf("%w: trapezoidal(%v, %v, %v, %v)", ErrInvalidBreakpoints, a, b, c, d)
	}
	return Trapezoidal{A: a, B: b, C: c, D: d}, nil
}

func (t Trapezoidal) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

func (t Trapezoidal) Support() (float64, float64) { return t.A, t.D }

func (t Trapezoidal) String() string {
	return fmt.Sprintf("trapmf(%g, %g, %g, %g)", t.A, t.B, t.C, t.D)
}
