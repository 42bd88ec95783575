package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/qrv0/svmgen/internal/svm"
)

func TestDenseSV(t *testing.T) {
	svs := []svm.SparseVector{
		{{Index: 1, Value: 0.5}, {Index: 3, Value: -2}},
		{{Index: 0, Value: 99}, {Index: 2, Value: 7}},
	}
	d := InferDim(svs)
	require.Equal(t, 3, d)

	a := DenseSV(svs, d)
	r, c := a.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	assert.Equal(t, []float64{0.5, 0, -2}, mat.Col(nil, 0, a))
	assert.Equal(t, []float64{0, 7, 0}, mat.Col(nil, 1, a))
	for _, v := range a.RawMatrix().Data {
		assert.NotEqual(t, 99.0, v, "reserved index 0 must not be placed")
	}
}

func TestDenseSVDegenerate(t *testing.T) {
	assert.True(t, DenseSV(nil, 3).IsEmpty())
	assert.True(t, DenseSV([]svm.SparseVector{{}}, 0).IsEmpty())
	assert.Equal(t, 0, InferDim([]svm.SparseVector{{{Index: 0, Value: 1}}}))
}

func TestBlockLiteral(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{0.5, 0, -2, 1e-7, 3, 1.25})
	assert.Equal(t, "[0.5,0,-2;1e-07,3,1.25]", BlockLiteral(a, GeneralFormat))
	assert.Equal(t, "[0.500000,0.000000,-2.000000;0.000000,3.000000,1.250000]", BlockLiteral(a, FixedFormat))
	assert.Equal(t, "[]", BlockLiteral(&mat.Dense{}, GeneralFormat))

	col := mat.NewDense(3, 1, []float64{1, 2, 3})
	assert.Equal(t, "[1;2;3]", BlockLiteral(col, GeneralFormat))
}

func TestColumnLiteral(t *testing.T) {
	assert.Equal(t, "[1;-1]", ColumnLiteral([]float64{1, -1}, GeneralFormat))
	assert.Equal(t, "[0.1]", ColumnLiteral([]float64{0.1}, GeneralFormat))
	assert.Equal(t, "[]", ColumnLiteral(nil, GeneralFormat))
}

func TestStreamLiterals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixLiteral(&buf, mat.NewDense(2, 2, []float64{0, 0, 1, 1})))
	assert.Equal(t, "[0.000000 0.000000 ; 1.000000 1.000000 ; ];", buf.String())

	buf.Reset()
	require.NoError(t, WriteRowLiteral(&buf, []float64{1, -1.5, 1.0 / 3}))
	assert.Equal(t, "[1.000000 -1.500000 0.333333 ];", buf.String())

	buf.Reset()
	require.NoError(t, WriteRowLiteral(&buf, nil))
	require.NoError(t, WriteMatrixLiteral(&buf, &mat.Dense{}))
	assert.Equal(t, "[];[];", buf.String())
}

func TestFlatList(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{1, 2, 3, 4}, FlatMatrix(a))
	assert.Equal(t, "1, 2, 3, 4", FlatList(FlatMatrix(a), ExactFormat))
	assert.Equal(t, "0.10000000000000001", ExactFormat.Format(0.1))
}

func TestBlockLiteralRoundTrip(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{0.1, -2.5e-9, 1.0 / 3, 7, -0, 123456.789})
	rows, err := parseBlockLiteral(BlockLiteral(a, GeneralFormat))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, mat.Row(nil, i, a), row)
	}
}

func TestStreamLiteralRoundTrip(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{0.1234567, -2.5, 1.0 / 3, 7, 0, -123.4567894})
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixLiteral(&buf, a))
	rows, err := parseStreamLiteral(buf.String())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.InDeltaSlice(t, mat.Row(nil, i, a), row, 5e-7)
	}
}
