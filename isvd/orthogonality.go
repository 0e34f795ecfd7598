package isvd

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/linalg"
	"github.com/EMinsight/libROM/transport"
)

// OrthogonalityDeviation estimates ||UᵀU - I||_∞ over U's columns: the cheap
// check spec §4.2.1 uses to decide whether an early re-orthogonalization is
// warranted. It costs O(r²) collectives. The naive variant evaluates it after
// every rank-growing increment that is not already due for a scheduled
// re-orthogonalization pass; redundant samples never trigger it.
func OrthogonalityDeviation(group transport.Group, U *mat.Dense) float64 {
	_, r := U.Dims()
	max := 0.0
	col := make([][]float64, r)
	for i := 0; i < r; i++ {
		col[i] = mat.Col(nil, i, U)
	}
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			dot := linalg.InnerProduct(group, col[i], col[j])
			target := 0.0
			if i == j {
				target = 1.0
			}
			if d := math.Abs(dot - target); d > max {
				max = d
			}
		}
	}
	return max
}

// reorthogonalize performs a full modified Gram-Schmidt re-orthogonalization
// of U, then folds the resulting upper-triangular correction factor R into
// Σ and V by a second small SVD of R·Σ, restoring a diagonal Σ (spec
// §4.2.1). L is reset to the identity, matching the naive invariant that L
// never carries a rotation across TakeSample calls.
func (k *Kernel) reorthogonalize() {
	newU, R := mgs(k.group, k.u)
	rSigma := linalg.MulSmall(R, linalg.DiagFromVector(k.sigma))
	small := linalg.FactorizeSmall(rSigma)
	k.u = linalg.RotateLocal(newU, small.A)
	k.sigma = small.Sigma
	k.v = linalg.MulSmall(k.v, small.B)
	k.l = linalg.Identity(k.r)
}

// mgs runs modified Gram-Schmidt on U's columns, returning the
// orthonormalized basis and the upper-triangular factor R such that
// U ≈ newU · R.
func mgs(group transport.Group, U *mat.Dense) (newU, R *mat.Dense) {
	d, r := U.Dims()
	cols := make([][]float64, r)
	for j := 0; j < r; j++ {
		cols[j] = mat.Col(nil, j, U)
	}
	ortho := make([][]float64, r)
	R = mat.NewDense(r, r, nil)
	for j := 0; j < r; j++ {
		v := cols[j]
		for kk := 0; kk < j; kk++ {
			rkj := linalg.InnerProduct(group, ortho[kk], v)
			linalg.AxpbyLocal(-rkj, ortho[kk], 1, v)
			R.Set(kk, j, rkj)
		}
		norm := linalg.Norm2(group, v)
		R.Set(j, j, norm)
		if norm > 0 {
			for i := range v {
				v[i] /= norm
			}
		}
		ortho[j] = v
	}
	flat := mat.NewDense(d, r, nil)
	for j := 0; j < r; j++ {
		for i := 0; i < d; i++ {
			flat.Set(i, j, ortho[j][i])
		}
	}
	return flat, R
}
