package metrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fuzzycharge/core/factory"
)

var (
	errUnreachable = errors.New("unreachable backend")
	builtSinks     []*closingSink
	registerOnce   sync.Once
)

func registerTestSinks(t *testing.T) {
	t.Helper()
	registerOnce.Do(func() {
		require.NoError(t, RegisterMetricsSink("closing-test", func(map[string]any) (MetricsSink, error) {
			s := &closingSink{}
			builtSinks = append(builtSinks, s)
			return s, nil
		}))
		require.NoError(t, RegisterMetricsSink("failing-test", func(map[string]any) (MetricsSink, error) {
			return nil, errUnreachable
		}))
	})
	builtSinks = nil
}

func TestNewMetricsSink_ClosesBuiltSinksOnError(t *testing.T) {
	registerTestSinks(t)

	sink, err := NewMetricsSink([]factory.ModuleConfig{
		{Type: "closing-test"},
		{Type: "closing-test"},
		{Type: "failing-test"},
	})
	assert.ErrorIs(t, err, errUnreachable)
	assert.Nil(t, sink)
	require.Len(t, builtSinks, 2)
	for _, s := range builtSinks {
		assert.True(t, s.closed)
	}
}

func TestNewMetricsSink_UnknownTypeClosesBuiltSinks(t *testing.T) {
	registerTestSinks(t)

	_, err := NewMetricsSink([]factory.ModuleConfig{{Type: "closing-test"}, {Type: "nope"}})
	assert.Error(t, err)
	require.Len(t, builtSinks, 1)
	assert.True(t, builtSinks[0].closed)
}

func TestNewMetricsSink_BuildsMultiSink(t *testing.T) {
	registerTestSinks(t)

	sink, err := NewMetricsSink([]factory.ModuleConfig{{Type: "closing-test"}, {Type: "closing-test"}})
	require.NoError(t, err)
	assert.IsType(t, &MultiSink{}, sink)
	for _, s := range builtSinks {
		assert.False(t, s.closed)
	}
}
