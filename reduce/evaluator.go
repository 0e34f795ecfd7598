// Package reduce implements the reduced model evaluator of spec §4.5: given
// a real-valued time t, it reconstructs U·Σ·v(t) for the nearest absorbed
// sample, or U·Σ·v for an externally supplied v (DMD-style consumers).
package reduce

import (
	"math"

	"github.com/EMinsight/libROM/basis"
	"github.com/EMinsight/libROM/linalg"
)

// Evaluator is stateless except for a cache of the most recently computed
// reconstruction (spec §4.5). The cache is dropped by Evaluator.TakeSample
// and by Invalidate; a mutation made directly on the underlying Generator
// does not drop it.
type Evaluator struct {
	gen *basis.Generator

	cacheValid  bool
	cacheIsTime bool
	cacheKey    float64
	cacheResult []float64
}

// New wraps gen in an Evaluator. gen must be configured with
// RetainTemporalBasis for Reconstruct to work; ReconstructWithVector has no
// such requirement.
func New(gen *basis.Generator) *Evaluator {
	return &Evaluator{gen: gen}
}

// Reconstruct returns U·Σ·v(t), where v(t) is the stored right-singular
// vector at the sample whose absorbed timestamp is nearest to t (spec §4.5).
// The local row block is returned; callers needing the full vector must
// gather across the process group themselves.
func (e *Evaluator) Reconstruct(t float64) []float64 {
	if e.cacheValid && e.cacheIsTime && e.cacheKey == t {
		return cloneFloats(e.cacheResult)
	}
	v := e.nearestTemporalVector(t)
	result := e.project(v)
	e.cacheValid = true
	e.cacheIsTime = true
	e.cacheKey = t
	e.cacheResult = result
	return cloneFloats(result)
}

// ReconstructWithVector returns U·Σ·v for an externally supplied reduced
// coordinate vector v, bypassing the stored temporal basis entirely (spec
// §4.5 "for DMD-style consumers, an externally supplied vector").
func (e *Evaluator) ReconstructWithVector(v []float64) []float64 {
	result := e.project(v)
	e.cacheValid = true
	e.cacheIsTime = false
	e.cacheResult = result
	return cloneFloats(result)
}

// TakeSample forwards to the wrapped Generator and invalidates the cache,
// the common case of spec §4.5's invalidation rule. Callers that instead
// hold the Generator directly and mutate it that way must call Invalidate
// themselves.
func (e *Evaluator) TakeSample(uLocal []float64, t float64) bool {
	redundant := e.gen.TakeSample(uLocal, t)
	e.Invalidate()
	return redundant
}

// Invalidate drops the cached result. Callers that mutate the wrapped
// Generator through any path other than Evaluator itself must call this
// before the next Reconstruct/ReconstructWithVector (spec §4.5 "invalidated
// whenever §4.2 mutates the factorization").
func (e *Evaluator) Invalidate() {
	e.cacheValid = false
	e.cacheResult = nil
}

// nearestTemporalVector locates the absorbed sample whose timestamp is
// closest to t and returns its row of the current interval's temporal basis.
func (e *Evaluator) nearestTemporalVector(t float64) []float64 {
	times := e.gen.SampleTimes()
	if len(times) == 0 {
		panic("reduce: Reconstruct called before any sample was absorbed")
	}
	best := 0
	bestDiff := math.Abs(times[0] - t)
	for i := 1; i < len(times); i++ {
		if d := math.Abs(times[i] - t); d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	V := e.gen.GetTemporalBasis()
	_, r := V.Dims()
	row := make([]float64, r)
	for j := 0; j < r; j++ {
		row[j] = V.At(best, j)
	}
	return row
}

// project computes U·Σ·v locally: U is this process's row-partitioned
// block, Σ and v are replicated, so no communication is needed (spec §9
// "Replicated small matrices vs. distributed U").
func (e *Evaluator) project(v []float64) []float64 {
	U := e.gen.GetSpatialBasis()
	sigma := e.gen.GetSingularValues()
	if len(v) != len(sigma) {
		panic("reduce: vector length does not match the current rank")
	}
	scaled := make([]float64, len(v))
	for j := range v {
		scaled[j] = sigma[j] * v[j]
	}
	return linalg.ApplyLocal(U, scaled)
}

func cloneFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
