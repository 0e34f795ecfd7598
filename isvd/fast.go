package isvd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/libROM/linalg"
)

// fastUpdater maintains an implicit mixer L such that the true left basis
// equals U·L, and never rotates the distributed U — a rank-growing
// increment appends the new column unchanged and folds the rotation into L
// instead (spec §2 "avoiding most orthogonalization work").
type fastUpdater struct{}

func (fastUpdater) applyNew(k *Kernel, newColumn []float64, A, B *mat.Dense, sigma []float64) {
	k.u = linalg.AppendColumnLocal(k.u, newColumn)
	embedded := linalg.EmbedBlockDiag(k.l, k.r+1)
	k.l = linalg.MulSmall(embedded, A)
	k.sigma = sigma
	k.v = linalg.ExtendAndRotateV(k.v, B)
}
