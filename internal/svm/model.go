package svm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// svm_type values, numbered as libsvm does.
const (
	CSVC = iota
	NuSVC
	OneClass
	EpsilonSVR
	NuSVR
)

// kernel_type values, numbered as libsvm does.
const (
	Linear = iota
	Poly
	RBF
	Sigmoid
	Precomputed
)

var svmTypeNames = []string{"c_svc", "nu_svc", "one_class", "epsilon_svr", "nu_svr"}

var kernelTypeNames = []string{"linear", "polynomial", "rbf", "sigmoid", "precomputed"}

// Node is one stored feature of a support vector. Index is 1-based; index 0
// is the slot libsvm reserves for precomputed kernels and carries no feature.
type Node struct {
	Index int
	Value float64
}

// SparseVector is an ordered mapping from feature index to value. Indices
// are strictly increasing.
type SparseVector []Node

// MaxIndex returns the largest feature index, or 0 for an empty vector.
func (v SparseVector) MaxIndex() int {
	n := 0
	for _, nd := range v {
		if nd.Index > n {
			n = nd.Index
		}
	}
	return n
}

// Features yields the nodes that describe real features, skipping the
// reserved index 0.
func (v SparseVector) Features() SparseVector {
	out := make(SparseVector, 0, len(v))
	for _, nd := range v {
		if nd.Index <= 0 {
			continue
		}
		out = append(out, nd)
	}
	return out
}

// Dense expands v into a slice of length d. Features beyond d are ignored.
func (v SparseVector) Dense(d int) []float64 {
	out := make([]float64, d)
	for _, nd := range v.Features() {
		if nd.Index > d {
			continue
		}
		out[nd.Index-1] = nd.Value
	}
	return out
}

// Model is a trained single-decision-function SVM (regression, one-class or
// binary classification) as produced by libsvm.
type Model struct {
	SvmType    int
	KernelType int
	Degree     int
	Gamma      float64
	Coef0      float64
	NrClass    int

	SV   []SparseVector
	Coef []float64 // dual coefficient per support vector
	Rho  float64

	Label []int
	NrSV  []int
	ProbA []float64
	ProbB []float64
}

// NSV is the number of support vectors.
func (m *Model) NSV() int { return len(m.SV) }

// MaxIndex is the inferred input dimensionality: the largest feature index
// stored in any support vector.
func (m *Model) MaxIndex() int {
	n := 0
	for _, sv := range m.SV {
		if k := sv.MaxIndex(); k > n {
			n = k
		}
	}
	return n
}

// SvmTypeName returns the libsvm keyword of the model type.
func (m *Model) SvmTypeName() string { return tableName(svmTypeNames, m.SvmType) }

// KernelTypeName returns the libsvm keyword of the kernel.
func (m *Model) KernelTypeName() string { return tableName(kernelTypeNames, m.KernelType) }

func tableName(t []string, i int) string {
	if i < 0 || i >= len(t) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return t[i]
}

// Validate checks the structural invariants of the model.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	if len(m.Coef) != len(m.SV) {
		return fmt.Errorf("%w: %d coefficients for %d support vectors", ErrInvalidModel, len(m.Coef), len(m.SV))
	}
	if !finite(m.Gamma) || !finite(m.Rho) {
		return fmt.Errorf("%w: gamma and rho must be finite", ErrInvalidModel)
	}
	for i, sv := range m.SV {
		prev := -1
		for _, nd := range sv {
			if nd.Index < 0 {
				return fmt.Errorf("%w: support vector %d has negative index %d", ErrInvalidModel, i, nd.Index)
			}
			if nd.Index <= prev {
				return fmt.Errorf("%w: support vector %d indices not increasing at %d", ErrInvalidModel, i, nd.Index)
			}
			if !finite(nd.Value) {
				return fmt.Errorf("%w: support vector %d feature %d is not finite", ErrInvalidModel, i, nd.Index)
			}
			prev = nd.Index
		}
		if !finite(m.Coef[i]) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidModel, i)
		}
	}
	return nil
}

// Predict evaluates the raw decision value for a dense, already normalized
// input: sum_i coef[i]*exp(-gamma*||sv_i - x||^2) - rho.
func (m *Model) Predict(x []float64) (float64, error) {
	if m.KernelType != RBF {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedKernel, m.KernelTypeName())
	}
	if k := m.MaxIndex(); k > len(x) {
		return 0, fmt.Errorf("%w: input has %d features, model uses %d", ErrInvalidModel, len(x), k)
	}
	diff := make([]float64, len(x))
	sum := 0.0
	for i, sv := range m.SV {
		floats.SubTo(diff, sv.Dense(len(x)), x)
		sum += m.Coef[i] * math.Exp(-m.Gamma*floats.Dot(diff, diff))
	}
	return sum - m.Rho, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
