// Package linalg provides the distributed linear algebra primitives the
// incremental SVD kernel is built on (spec §4.1): local (non-communicating)
// vector operations, the two collectives the kernel needs, and a thin
// wrapper around gonum/mat's dense SVD for the small, fully replicated
// matrices that never touch the row-partitioned data.
//
// Every function here either runs with no communication at all (local_*) or
// is collective over a transport.Group (the others). Dimension mismatches
// are programmer errors and panic, matching gonum/mat's own convention
// (mat.Dense.Mul panics on shape mismatch rather than returning an error).
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/transport"
)

// InnerProduct is the collective dot product x·y: a local dot followed by an
// all-reduce sum (spec §4.1 "inner_product").
func InnerProduct(group transport.Group, x, y []float64) float64 {
	if len(x) != len(y) {
		panic("linalg: vector length mismatch in inner product")
	}
	local := floats.Dot(x, y)
	return group.AllReduceSum([]float64{local})[0]
}

// AxpbyLocal computes y ← α·x + β·y in place, with no communication
// (spec §4.1 "axpby_local").
func AxpbyLocal(alpha float64, x []float64, beta float64, y []float64) {
	if len(x) != len(y) {
		panic("linalg: vector length mismatch in axpby")
	}
	for i := range y {
		y[i] = alpha*x[i] + beta*y[i]
	}
}

// LocalMatVec computes the replicated length-r vector Uᵀ·x: a local
// contraction over U's local row block, followed by an all-reduce sum
// (spec §4.1 "local_matvec"). U is d×r, row-partitioned; x is a local
// length-d vector.
func LocalMatVec(group transport.Group, U *mat.Dense, x []float64) []float64 {
	d, r := U.Dims()
	if len(x) != d {
		panic("linalg: dimension mismatch in local mat-vec")
	}
	local := make([]float64, r)
	col := make([]float64, d)
	for j := 0; j < r; j++ {
		mat.Col(col, j, U)
		local[j] = floats.Dot(col, x)
	}
	return group.AllReduceSum(local)
}

// ApplyLocal computes the local rows of U·c (no communication): U is the
// local d×r row block, c a replicated length-r coefficient vector. Used to
// form the local residual j = u − (U·L)·ℓ (spec §4.2 step 2).
func ApplyLocal(U *mat.Dense, c []float64) []float64 {
	d, r := U.Dims()
	if len(c) != r {
		panic("linalg: coefficient length mismatch in local apply")
	}
	out := make([]float64, d)
	row := make([]float64, r)
	for i := 0; i < d; i++ {
		mat.Row(row, i, U)
		out[i] = floats.Dot(row, c)
	}
	return out
}

// GlobalRowCount sums localDim across the group: the global dimension
// implied by a given row-partitioning (used to check I5).
func GlobalRowCount(group transport.Group, localDim int) int {
	sum := group.AllReduceSum([]float64{float64(localDim)})
	return int(sum[0] + 0.5)
}

// Norm2 is the collective Euclidean norm of a local vector.
func Norm2(group transport.Group, x []float64) float64 {
	v := InnerProduct(group, x, x)
	if v < 0 {
		// Cancellation can push a near-zero self inner product slightly
		// negative; clamp rather than hand math.Sqrt a NaN.
		v = 0
	}
	return math.Sqrt(v)
}
