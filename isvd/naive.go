package isvd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/linalg"
)

// naiveUpdater recomputes an explicit U: every rank-growing increment
// immediately rotates the distributed U by the augmented SVD's left factor,
// and L is always collapsed back to the identity (spec §2 "recomputes an
// explicit U column-by-column").
type naiveUpdater struct{}

func (naiveUpdater) applyNew(k *Kernel, newColumn []float64, A, B *mat.Dense, sigma []float64) {
	extended := linalg.AppendColumnLocal(k.u, newColumn)
	k.u = linalg.RotateLocal(extended, A)
	k.sigma = sigma
	k.v = linalg.ExtendAndRotateV(k.v, B)
	k.l = linalg.Identity(k.r + 1)
}
