package linalg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAppendColumnLocalFromNil(t *testing.T) {
	out := AppendColumnLocal(nil, []float64{1, 2, 3})
	d, r := out.Dims()
	require.Equal(t, 3, d)
	require.Equal(t, 1, r)
	require.Equal(t, 2.0, out.At(1, 0))
}

func TestAppendColumnLocalExtends(t *testing.T) {
	U := mat.NewDense(2, 1, []float64{1, 2})
	out := AppendColumnLocal(U, []float64{3, 4})
	d, r := out.Dims()
	require.Equal(t, 2, d)
	require.Equal(t, 2, r)
	require.Equal(t, 1.0, out.At(0, 0))
	require.Equal(t, 3.0, out.At(0, 1))
}

func TestAppendColumnLocalPanicsOnMismatch(t *testing.T) {
	U := mat.NewDense(2, 1, []float64{1, 2})
	require.Panics(t, func() { AppendColumnLocal(U, []float64{1, 2, 3}) })
}

func TestAppendRowFromNilAndExtends(t *testing.T) {
	out := AppendRow(nil, []float64{1, 2})
	n, r := out.Dims()
	require.Equal(t, 1, n)
	require.Equal(t, 2, r)

	out2 := AppendRow(out, []float64{3, 4})
	n2, _ := out2.Dims()
	require.Equal(t, 2, n2)
	require.Equal(t, 3.0, out2.At(1, 0))
	require.Equal(t, 4.0, out2.At(1, 1))
}

func TestAppendRowPanicsOnLengthMismatch(t *testing.T) {
	V := mat.NewDense(1, 2, []float64{1, 2})
	require.Panics(t, func() { AppendRow(V, []float64{1}) })
}

func TestExtendAndRotateVFromNil(t *testing.T) {
	B := mat.NewDense(1, 1, []float64{1})
	out := ExtendAndRotateV(nil, B)
	n, r := out.Dims()
	require.Equal(t, 1, n)
	require.Equal(t, 1, r)
	require.Equal(t, 1.0, out.At(0, 0))
}

func TestScaleColumn(t *testing.T) {
	out := ScaleColumn([]float64{2, 4, 6}, 2)
	require.Equal(t, []float64{1, 2, 3}, out)
}

func TestScaleColumnPanicsOnNonPositiveNorm(t *testing.T) {
	require.Panics(t, func() { ScaleColumn([]float64{1, 2}, 0) })
}

func TestRotateLocalIdentity(t *testing.T) {
	U := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out := RotateLocal(U, Identity(2))
	require.True(t, mat.Equal(U, out))
}
