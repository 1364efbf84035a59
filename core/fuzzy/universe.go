package fuzzy

import (
	"fmt"
	"math"
)

// MaxUniversePoints bounds the number of sample points of a universe.
const MaxUniversePoints = 100_000

// Universe is the discrete domain of a linguistic variable. Its points are
// Start, Start+Step, ... strictly below Stop.
type Universe struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Step  float64 `json:"step"`
}

// NewUniverse returns a validated universe.
func NewUniverse(start, stop, step float64) (Universe, error) {
	u := Universe{Start: start, Stop: stop, Step: step}
	if err := u.Validate(); err != nil {
		return Universe{}, err
	}
	return u, nil
}

// Validate checks that the universe holds at least one point and no more
// than MaxUniversePoints.
func (u Universe) Validate() error {
	if !(u.Step > 0) {
		return fmt.Errorf("universe step must be positive, got %v", u.Step)
	}
	if !(u.Stop > u.Start) {
		return fmt.Errorf("universe [%v, %v) is empty", u.Start, u.Stop)
	}
	if n := (u.Stop - u.Start) / u.Step; !(n <= MaxUniversePoints) {
		return fmt.Errorf("universe [%v, %v) step %v has more than %d points", u.Start, u.Stop, u.Step, MaxUniversePoints)
	}
	return nil
}

// Len returns the number of sample points.
func (u Universe) Len() int {
	return int(math.Ceil((u.Stop - u.Start) / u.Step))
}

// Points returns the sample points in ascending order.
func (u Universe) Points() []float64 {
	pts := make([]float64, u.Len())
	for i := range pts {
		pts[i] = u.Start + float64(i)*u.Step
	}
	return pts
}

// Min returns the first sample point.
func (u Universe) Min() float64 { return u.Start }

// Max returns the last sample point, which is below Stop.
func (u Universe) Max() float64 { return u.Start + float64(u.Len()-1)*u.Step }

// Contains reports whether x lies within [Min, Max].
func (u Universe) Contains(x float64) bool {
	return x >= u.Min() && x <= u.Max()
}

// Clamp limits x to [Min, Max].
func (u Universe) Clamp(x float64) float64 {
	return math.Min(math.Max(x, u.Min()), u.Max())
}
