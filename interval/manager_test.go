package interval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/EMinsight/libROM/isvd"
	"github.com/EMinsight/libROM/transport"
)

func baseKernelConfig(dim int) isvd.Config {
	return isvd.Config{Dim: dim, Epsilon: 1e-10, Variant: isvd.Naive}
}

// scenario 5: interval rollover.
func TestRolloverProducesExpectedIntervalSizes(t *testing.T) {
	const dim = 5
	rnd := rand.New(rand.NewSource(11))
	m := NewManager(transport.Solo{}, baseKernelConfig(dim), Config{MaxIncrementsPerInterval: 3})

	const total = 7
	for i := 0; i < total; i++ {
		row := make([]float64, dim)
		for j := range row {
			row[j] = rnd.NormFloat64()
		}
		m.TakeSample(row, float64(i))
	}
	// force the last interval to freeze by rolling over once more.
	m.rollover()

	history := m.History()
	require.Len(t, history, 3)
	require.Equal(t, 3, history[0].NumSamples)
	require.Equal(t, 3, history[1].NumSamples)
	require.Equal(t, 1, history[2].NumSamples)

	starts := m.IntervalStarts()
	require.Len(t, starts, 3)
	require.True(t, starts[0] <= starts[1])
	require.True(t, starts[1] <= starts[2])
	require.Equal(t, 0.0, starts[0])
	require.Equal(t, 3.0, starts[1])
	require.Equal(t, 6.0, starts[2])
}

func TestManagerStartsFreshIntervalOnFirstSample(t *testing.T) {
	m := NewManager(transport.Solo{}, baseKernelConfig(2), Config{MaxIncrementsPerInterval: 2})
	require.Nil(t, m.Current())
	m.TakeSample([]float64{1, 0}, 0)
	require.NotNil(t, m.Current())
	require.Equal(t, 1, m.Current().NumSamples())
}

// Interval independence: the second interval's factorization does not carry
// over any information from the first.
func TestIntervalIndependence(t *testing.T) {
	m := NewManager(transport.Solo{}, baseKernelConfig(2), Config{MaxIncrementsPerInterval: 1})
	m.TakeSample([]float64{1, 0}, 0)
	m.TakeSample([]float64{0, 1}, 1)
	require.Equal(t, 1, m.Current().Rank())
	require.Equal(t, 1, m.Current().NumSamples())
}

func TestNewManagerPanicsOnNonPositiveCapacity(t *testing.T) {
	require.Panics(t, func() {
		NewManager(transport.Solo{}, baseKernelConfig(2), Config{MaxIncrementsPerInterval: 0})
	})
}
