package fuzzy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroid(t *testing.T) {
	c, err := centroid([]float64{0, 1, 2}, []float64{0, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c, 1e-12)

	c, err = centroid([]float64{2, 4}, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, c, 1e-12)

	c, err = centroid([]float64{0, 3}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, c, 1e-12)

	_, err = centroid([]float64{0, 1, 2}, []float64{0, 0, 0})
	assert.True(t, errors.Is(err, ErrNoRuleFired))
	_, err = centroid(nil, nil)
	assert.True(t, errors.Is(err, ErrNoRuleFired))
}

func TestInterpolate(t *testing.T) {
	xp := []float64{0, 1, 2}
	fp := []float64{0, 1, 0.5}
	assert.Equal(t, 0.0, interpolate(xp, fp, -1))
	assert.Equal(t, 0.5, interpolate(xp, fp, 3))
	assert.Equal(t, 1.0, interpolate(xp, fp, 1))
	assert.InDelta(t, 0.75, interpolate(xp, fp, 1.5), 1e-12)
	assert.InDelta(t, 0.25, interpolate(xp, fp, 0.25), 1e-12)
}

func TestAggregate_AddsCrossings(t *testing.T) {
	v := NewConsequent("y", Universe{Start: 0, Stop: 11, Step: 1})
	require.NoError(t, v.AddTerm("small", Triangular{A: 0, B: 0, C: 5}))
	out, err := newOutput(v)
	require.NoError(t, err)
	xs, mu := out.aggregate(map[string]float64{"small": 0.5})
	assert.Contains(t, xs, 2.5)
	assert.Len(t, xs, 12)
	for i, x := range xs {
		if x <= 2.5 {
			assert.InDelta(t, 0.5, mu[i], 1e-12, "x=%v", x)
		}
	}
}
