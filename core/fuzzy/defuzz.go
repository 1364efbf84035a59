package fuzzy

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// output caches the sampled terms of a consequent variable.
type output struct {
	v       *Variable
	points  []float64
	labels  []string
	samples map[string][]float64
}

func newOutput(v *Variable) (*output, error) {
	out := &output{
		v:       v,
		points:  v.universe.Points(),
		labels:  v.Labels(),
		samples: make(map[string][]float64, len(v.terms)),
	}
	for _, l := range out.labels {
		s, err := v.Sample(l)
		if err != nil {
			return nil, err
		}
		out.samples[l] = s
	}
	return out, nil
}

// aggregate clips every activated term at its level and merges them with
// max. The universe is refined with the points where a sampled term crosses
// its clip level so the clipped plateau edges are kept exactly.
func (o *output) aggregate(levels map[string]float64) (xs, mu []float64) {
	xs = append([]float64(nil), o.points...)
	for _, l := range o.labels {
		level, ok := levels[l]
		if !ok {
			continue
		}
		s := o.samples[l]
		for i := 0; i+1 < len(s); i++ {
			lo, hi := s[i], s[i+1]
			if (lo < level && hi > level) || (lo > level && hi < level) {
				x := o.points[i] + (level-lo)*(o.points[i+1]-o.points[i])/(hi-lo)
				xs = append(xs, x)
			}
		}
	}
	sort.Float64s(xs)
	xs = dedupe(xs)

	mu = make([]float64, len(xs))
	for _, l := range o.labels {
		level, ok := levels[l]
		if !ok {
			continue
		}
		s := o.samples[l]
		for j, x := range xs {
			m := interpolate(o.points, s, x)
			if m > level {
				m = level
			}
			if m > mu[j] {
				mu[j] = m
			}
		}
	}
	return xs, mu
}

// centroid returns the centre of gravity of the piecewise linear curve
// through (xs[i], mu[i]).
func centroid(xs, mu []float64) (float64, error) {
	if len(xs) == 0 || floats.Max(mu) <= 0 {
		return 0, ErrNoRuleFired
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	moments := make([]float64, 0, len(xs)-1)
	areas := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		x1, x2 := xs[i-1], xs[i]
		y1, y2 := mu[i-1], mu[i]
		if (y1 == 0 && y2 == 0) || x1 == x2 {
			continue
		}
		w := x2 - x1
		var m, a float64
		switch {
		case y1 == y2:
			m = x1 + w/2
			a = w * y1
		case y1 == 0:
			m = x1 + 2*w/3
			a = w * y2 / 2
		case y2 == 0:
			m = x1 + w/3
			a = w * y1 / 2
		default:
			m = x1 + 2*w*(y2+y1/2)/(3*(y1+y2))
			a = w * (y1 + y2) / 2
		}
		moments = append(moments, m)
		areas = append(areas, a)
	}
	total := floats.Sum(areas)
	if total <= 0 {
		return 0, ErrNoRuleFired
	}
	return floats.Dot(moments, areas) / total, nil
}

// interpolate evaluates the piecewise linear function through (xp, fp) at
// x, holding the end values outside [xp[0], xp[n-1]].
func interpolate(xp, fp []float64, x float64) float64 {
	n := len(xp)
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	i := sort.SearchFloat64s(xp, x)
	if xp[i] == x {
		return fp[i]
	}
	x0, x1 := xp[i-1], xp[i]
	return fp[i-1] + (fp[i]-fp[i-1])*(x-x0)/(x1-x0)
}

func dedupe(xs []float64) []float64 {
	if len(xs) < 2 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
