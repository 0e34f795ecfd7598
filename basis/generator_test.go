package basis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EMinsight/libROM/isvd"
	"github.com/EMinsight/libROM/transport"
)

func baseConfig() Config {
	return Config{
		Dim:                      3,
		Epsilon:                  1e-10,
		MaxIncrementsPerInterval: 4,
		Variant:                  isvd.Naive,
		RetainTemporalBasis:      true,
		RetainSnapshots:          true,
	}
}

func TestIsNextSampleNeededAlwaysTrue(t *testing.T) {
	g := New(transport.Solo{}, baseConfig())
	require.True(t, g.IsNextSampleNeeded(0))
	require.True(t, g.IsNextSampleNeeded(100))
}

func TestGeneratorTakeSampleDelegatesAndAccessorsWork(t *testing.T) {
	g := New(transport.Solo{}, baseConfig())
	redundant := g.TakeSample([]float64{1, 0, 0}, 0)
	require.False(t, redundant)

	sigma := g.GetSingularValues()
	require.Len(t, sigma, 1)
	require.InDelta(t, 1, sigma[0], 1e-12)

	spatial := g.GetSpatialBasis()
	d, r := spatial.Dims()
	require.Equal(t, 3, d)
	require.Equal(t, 1, r)

	temporal := g.GetTemporalBasis()
	n, rr := temporal.Dims()
	require.Equal(t, 1, n)
	require.Equal(t, 1, rr)
}

func TestGetTemporalBasisPanicsWhenNotRetained(t *testing.T) {
	cfg := baseConfig()
	cfg.RetainTemporalBasis = false
	g := New(transport.Solo{}, cfg)
	g.TakeSample([]float64{1, 0, 0}, 0)
	require.Panics(t, func() { g.GetTemporalBasis() })
}

func TestGetSnapshotMatrixPanicsWhenNotRetained(t *testing.T) {
	cfg := baseConfig()
	cfg.RetainSnapshots = false
	g := New(transport.Solo{}, cfg)
	g.TakeSample([]float64{1, 0, 0}, 0)
	require.Panics(t, func() { g.GetSnapshotMatrix() })
}

func TestGetSnapshotMatrixMaterializesRetainedColumns(t *testing.T) {
	g := New(transport.Solo{}, baseConfig())
	g.TakeSample([]float64{1, 0, 0}, 0)
	g.TakeSample([]float64{0, 1, 0}, 1)

	S := g.GetSnapshotMatrix()
	d, n := S.Dims()
	require.Equal(t, 3, d)
	require.Equal(t, 2, n)
	require.Equal(t, 1.0, S.At(0, 0))
	require.Equal(t, 1.0, S.At(1, 1))
	require.Equal(t, 0.0, S.At(2, 0))
}

func TestGetSnapshotMatrixResetsOnRollover(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxIncrementsPerInterval = 1
	g := New(transport.Solo{}, cfg)
	g.TakeSample([]float64{1, 0, 0}, 0)
	g.TakeSample([]float64{0, 1, 0}, 1)

	S := g.GetSnapshotMatrix()
	_, n := S.Dims()
	require.Equal(t, 1, n, "only the current interval's snapshot should remain retained")
}

func TestGeneratorHistoryAfterRollover(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxIncrementsPerInterval = 1
	g := New(transport.Solo{}, cfg)
	g.TakeSample([]float64{1, 0, 0}, 0)
	g.TakeSample([]float64{0, 1, 0}, 1)
	require.Len(t, g.History(), 1)
}

func TestSampleTimes(t *testing.T) {
	g := New(transport.Solo{}, baseConfig())
	g.TakeSample([]float64{1, 0, 0}, 0)
	g.TakeSample([]float64{0, 1, 0}, 2.5)
	require.Equal(t, []float64{0, 2.5}, g.SampleTimes())
}
