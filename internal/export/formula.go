package export

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

// Formula is everything a target needs to reproduce the prediction:
//
//	x_scale = (x - x_data_bias) ./ x_data_scale
//	y       = sum_i svCoeff[i] * exp(-gamma * ||SV[:,i] - x_scale||^2) - rho
//	output  = y * y_data_scale + y_data_bias
//
// All targets are rendered from the same Formula.
type Formula struct {
	SV     *mat.Dense // D x nSV, column i is support vector i
	Coef   []float64
	Rho    float64
	Gamma  float64
	Input  scaler.Input
	Output scaler.Output
}

// NewFormula validates the model against the scalers and builds the dense
// representation. dim > 0 declares D explicitly (for models whose trailing
// features are zero in every support vector); dim == 0 infers it.
func NewFormula(m *svm.Model, in scaler.Input, out scaler.Output, dim int) (*Formula, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.KernelType != svm.RBF {
		return nil, fmt.Errorf("%w: %s (only rbf can be exported)", ErrUnsupportedKernel, m.KernelTypeName())
	}
	if m.NSV() == 0 {
		return nil, fmt.Errorf("%w: no support vectors", ErrEmptyModel)
	}
	inferred := InferDim(m.SV)
	d := inferred
	if dim > 0 {
		if inferred > dim {
			return nil, fmt.Errorf("%w: support vectors use feature %d, dimension declared as %d", ErrDimensionMismatch, inferred, dim)
		}
		d = dim
	}
	if d == 0 {
		return nil, fmt.Errorf("%w: support vectors carry no features", ErrEmptyModel)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if in.Dim() != d {
		return nil, fmt.Errorf("%w: model has %d features, input scaler %d", ErrDimensionMismatch, d, in.Dim())
	}
	return &Formula{
		SV:     DenseSV(m.SV, d),
		Coef:   append([]float64(nil), m.Coef...),
		Rho:    m.Rho,
		Gamma:  m.Gamma,
		Input:  in,
		Output: out,
	}, nil
}

// Dim is the input dimensionality D.
func (f *Formula) Dim() int {
	r, _ := f.SV.Dims()
	return r
}

// NSV is the number of support vectors.
func (f *Formula) NSV() int { return len(f.Coef) }

// Evaluate computes the de-normalized prediction for a raw input vector.
func (f *Formula) Evaluate(x []float64) (float64, error) {
	xs, err := f.Input.Normalize(x)
	if err != nil {
		return 0, err
	}
	d := f.Dim()
	if len(xs) != d {
		return 0, fmt.Errorf("%w: input has %d features, formula %d", ErrDimensionMismatch, len(xs), d)
	}
	col := make([]float64, d)
	y := 0.0
	for i, c := range f.Coef {
		mat.Col(col, i, f.SV)
		floats.Sub(col, xs)
		y += c * math.Exp(-floats.Dot(col, col)*f.Gamma)
	}
	y -= f.Rho
	return f.Output.Denormalize(y), nil
}
