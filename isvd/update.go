package isvd

import "gonum.org/v1/gonum/mat"

// updater captures how the naive and fast-update variants fold a
// rank-growing augmented-SVD rotation back into (U, L, Σ, V) (spec §4.2
// step 6 "New branch", spec §9 "closed choice of two algorithms"). It has
// exactly two implementors. The only other difference between the variants,
// the naive re-orthogonalization check, lives in Kernel.maintainOrthogonality.
// The redundant branch does not go through updater at all — see the note on
// Kernel.absorb.
type updater interface {
	// applyNew folds a rank-growing rotation in. newColumn is j/‖j‖ (the
	// local row block of the new basis column), A and B the full
	// (r+1)×(r+1) augmented SVD factors, sigma the new length-(r+1) Σ.
	applyNew(k *Kernel, newColumn []float64, A, B *mat.Dense, sigma []float64)
}
