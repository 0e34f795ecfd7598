package isvd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/EMinsight/libROM/transport"
)

func TestOrthogonalityDeviationZeroForOrthonormalColumns(t *testing.T) {
	k := New(transport.Solo{}, Config{Dim: 3, Epsilon: 1e-12, Variant: Naive})
	k.TakeSample([]float64{1, 0, 0}, 0)
	k.TakeSample([]float64{0, 1, 0}, 1)
	dev := OrthogonalityDeviation(transport.Solo{}, k.CurrentBasis())
	require.InDelta(t, 0, dev, 1e-9)
}

func TestNaiveReorthogonalizesEventually(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	const dim = 10
	k := New(transport.Solo{}, Config{Dim: dim, Epsilon: 1e-12, Variant: Naive, ReorthoEvery: 2})
	for i := 0; i < 8; i++ {
		row := make([]float64, dim)
		for j := range row {
			row[j] = rnd.NormFloat64()
		}
		k.TakeSample(row, float64(i))
	}
	require.Greater(t, k.ReorthogonalizationCount(), 0)
	dev := OrthogonalityDeviation(transport.Solo{}, k.CurrentBasis())
	require.Less(t, dev, 1e-6)
}

func TestFastUpdateNeverReorthogonalizes(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	const dim = 6
	k := New(transport.Solo{}, Config{Dim: dim, Epsilon: 1e-12, Variant: FastUpdate})
	for i := 0; i < 6; i++ {
		row := make([]float64, dim)
		for j := range row {
			row[j] = rnd.NormFloat64()
		}
		k.TakeSample(row, float64(i))
	}
	require.Equal(t, 0, k.ReorthogonalizationCount())
}

// Determinism across simulated ranks: Σ is bit-identical across ranks after
// the last TakeSample (spec §8).
func TestDeterminismAcrossRanks(t *testing.T) {
	const ranks = 3
	const dimPerRank = 4
	groups := transport.NewInMemoryGroup(ranks)

	rnd := rand.New(rand.NewSource(99))
	const steps = 5
	samples := make([][][]float64, steps)
	for s := 0; s < steps; s++ {
		samples[s] = make([][]float64, ranks)
		for r := 0; r < ranks; r++ {
			row := make([]float64, dimPerRank)
			for j := range row {
				row[j] = rnd.NormFloat64()
			}
			samples[s][r] = row
		}
	}

	sigmas := make([][]float64, ranks)
	var wg sync.WaitGroup
	wg.Add(ranks)
	for rk := 0; rk < ranks; rk++ {
		rk := rk
		go func() {
			defer wg.Done()
			k := New(groups[rk], Config{Dim: dimPerRank, Epsilon: 1e-12, Variant: Naive})
			for s := 0; s < steps; s++ {
				k.TakeSample(samples[s][rk], float64(s))
			}
			sigmas[rk] = k.SingularValues()
		}()
	}
	wg.Wait()

	for rk := 1; rk < ranks; rk++ {
		require.Equal(t, sigmas[0], sigmas[rk])
	}
}
