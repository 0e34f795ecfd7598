package linalg

import "gonum.org/v1/gonum/mat"

// SmallSVD is the result of factorizing a small, fully replicated matrix:
// computed identically from identical input on every rank (spec §4.1
// "small_svd" and spec §5's determinism requirement).
type SmallSVD struct {
	A     *mat.Dense // left singular vectors
	B     *mat.Dense // right singular vectors
	Sigma []float64  // singular values, descending
}

// FactorizeSmall computes the thin SVD of M, which must be at most
// (r+1)×(r+1) per spec §4.1. M is never row-partitioned data; it is always
// built from replicated Σ, ℓ, and norm_j, so every rank computes the same
// factorization from the same input deterministically.
func FactorizeSmall(M *mat.Dense) SmallSVD {
	// Thin U and V are requested explicitly: the zero value of SVDKind is
	// SVDNone, which computes no singular vectors at all.
	var svd mat.SVD
	ok := svd.Factorize(M, mat.SVDThin)
	if !ok {
		panic("linalg: small SVD factorization did not converge")
	}
	var a, b mat.Dense
	svd.UTo(&a)
	svd.VTo(&b)
	return SmallSVD{A: &a, B: &b, Sigma: svd.Values(nil)}
}

// MulSmall multiplies two small, fully replicated matrices (spec §4.1
// "small_matmul").
func MulSmall(a, b *mat.Dense) *mat.Dense {
	var c mat.Dense
	c.Mul(a, b)
	return &c
}

// BuildAugmented assembles the (r+1)×(r+1) augmented matrix
//
//	Q = [[ Σ,  ℓ     ],
//	     [ 0ᵀ, norm_j]]
//
// of spec §4.2 step 5, from the replicated diagonal Σ, the replicated
// projection coefficients ℓ, and the replicated residual norm.
func BuildAugmented(sigma, ell []float64, normJ float64) *mat.Dense {
	r := len(sigma)
	if len(ell) != r {
		panic("linalg: sigma/ell length mismatch building augmented matrix")
	}
	Q := mat.NewDense(r+1, r+1, nil)
	for i := 0; i < r; i++ {
		Q.Set(i, i, sigma[i])
		Q.Set(i, r, ell[i])
	}
	Q.Set(r, r, normJ)
	return Q
}

// EmbedBlockDiag embeds L (r×r, possibly nil for r=0) into a size×size
// identity-cornered block matrix:
//
//	[[ L, 0 ],
//	 [ 0, I ]]
//
// used by the fast-update variant to grow L without ever rotating the
// distributed U (spec §4.2 step 6, fast branch).
func EmbedBlockDiag(L *mat.Dense, size int) *mat.Dense {
	var r int
	if L != nil {
		r, _ = L.Dims()
	}
	if r > size {
		panic("linalg: L is larger than the requested embedding size")
	}
	out := mat.NewDense(size, size, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			out.Set(i, j, L.At(i, j))
		}
	}
	for i := r; i < size; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// DiagFromVector builds an r×r diagonal matrix from a length-r vector.
func DiagFromVector(v []float64) *mat.Dense {
	r := len(v)
	out := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		out.Set(i, i, v[i])
	}
	return out
}

// Identity builds the size×size identity matrix (size may be 0).
func Identity(size int) *mat.Dense {
	out := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		out.Set(i, i, 1)
	}
	return out
}
