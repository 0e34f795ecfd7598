package linalg

import "gonum.org/v1/gonum/mat"

// RotateLocal computes U·A on U's local row block, purely locally: A is a
// small replicated matrix, so no communication is needed to rotate the
// row-partitioned U by it (spec §9 "Replicated small matrices vs.
// distributed U").
func RotateLocal(U, A *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(U, A)
	return &out
}

// AppendColumnLocal appends col (length d, the local row block's row count)
// as a new column of U, with no communication. U may be nil, meaning an
// empty d×0 block whose d is inferred from len(col).
func AppendColumnLocal(U *mat.Dense, col []float64) *mat.Dense {
	var d, r int
	if U == nil {
		d = len(col)
	} else {
		d, r = U.Dims()
		if d != len(col) {
			panic("linalg: column length mismatch appending to U")
		}
	}
	out := mat.NewDense(d, r+1, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < r; j++ {
			out.Set(i, j, U.At(i, j))
		}
		out.Set(i, r, col[i])
	}
	return out
}

// ExtendAndRotateV embeds V (n×r, may be nil for n=r=0) into an
// (n+1)×(r+1) block-diagonal matrix with a trailing 1, then multiplies by B:
//
//	V' = [[V, 0], [0, 1]] · B
//
// (spec §4.2 step 6). B's row count must be r+1; its column count becomes
// V's new rank. The kernel calls this only on the rank-growing branch; the
// redundant branch extends V with AppendRow instead.
func ExtendAndRotateV(V *mat.Dense, B *mat.Dense) *mat.Dense {
	var n, r int
	if V != nil {
		n, r = V.Dims()
	}
	bRows, bCols := B.Dims()
	if bRows != r+1 {
		panic("linalg: V extension size mismatch")
	}
	embedded := mat.NewDense(n+1, r+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < r; j++ {
			embedded.Set(i, j, V.At(i, j))
		}
	}
	embedded.Set(n, r, 1)
	out := mat.NewDense(n+1, bCols, nil)
	out.Mul(embedded, B)
	return out
}

// AppendRow appends row (length r, V's column count) as a new row of V, with
// no communication: V is fully replicated, so every rank computes the same
// extension from the same replicated inputs. V may be nil, meaning an empty
// 0×r block whose r is inferred from len(row).
func AppendRow(V *mat.Dense, row []float64) *mat.Dense {
	var n, r int
	if V == nil {
		r = len(row)
	} else {
		n, r = V.Dims()
		if r != len(row) {
			panic("linalg: row length mismatch appending to V")
		}
	}
	out := mat.NewDense(n+1, r, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < r; j++ {
			out.Set(i, j, V.At(i, j))
		}
	}
	for j := 0; j < r; j++ {
		out.Set(n, j, row[j])
	}
	return out
}

// ScaleColumn returns a copy of col scaled by 1/norm. Panics if norm is not
// strictly positive; callers must route the zero-norm case through the
// redundancy decision instead (spec §9 "exact-zero snapshot").
func ScaleColumn(col []float64, norm float64) []float64 {
	if norm <= 0 {
		panic("linalg: non-positive norm scaling a column")
	}
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = v / norm
	}
	return out
}
