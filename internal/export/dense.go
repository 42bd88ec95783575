package export

import (
	"gonum.org/v1/gonum/mat"

	"github.com/qrv0/svmgen/internal/svm"
)

// DenseSV expands the sparse support vectors into a d x len(svs) matrix
// whose column i is support vector i. The reserved index 0 is never placed.
// Degenerate input (d == 0 or no support vectors) yields an empty matrix.
func DenseSV(svs []svm.SparseVector, d int) *mat.Dense {
	if d <= 0 || len(svs) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(d, len(svs), nil)
	for i, sv := range svs {
		for _, nd := range sv.Features() {
			if nd.Index > d {
				continue
			}
			out.Set(nd.Index-1, i, nd.Value)
		}
	}
	return out
}

// InferDim is the largest feature index over all support vectors.
func InferDim(svs []svm.SparseVector) int {
	d := 0
	for _, sv := range svs {
		if k := sv.MaxIndex(); k > d {
			d = k
		}
	}
	return d
}
