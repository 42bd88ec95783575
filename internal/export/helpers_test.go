package export

import (
	"time"

	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

// workedModel has SV columns [0,0] and [1,1], coefficients [1,-1],
// rho 0.1 and gamma 0.5.
func workedModel() *svm.Model {
	return &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      0.5,
		NrClass:    2,
		SV: []svm.SparseVector{
			{},
			{{Index: 1, Value: 1}, {Index: 2, Value: 1}},
		},
		Coef: []float64{1, -1},
		Rho:  0.1,
	}
}

// richModel uses values with at most six decimals so the %f targets carry
// them exactly.
func richModel() (*svm.Model, scaler.Input, scaler.Output) {
	m := &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      0.25,
		NrClass:    2,
		SV: []svm.SparseVector{
			{{Index: 1, Value: 0.5}, {Index: 3, Value: -2}},
			{{Index: 0, Value: 42}, {Index: 2, Value: 1.25}},
			{{Index: 1, Value: -0.75}, {Index: 2, Value: 0.125}, {Index: 3, Value: 1}},
			{{Index: 3, Value: 0.333333}},
		},
		Coef: []float64{0.8, -1.5, 2.25, -0.4},
		Rho:  -0.3125,
	}
	in := scaler.Input{Bias: []float64{10, -5, 0.5}, Scale: []float64{2, 4, 0.25}}
	out := scaler.Output{Bias: 100, Scale: 12.5}
	return m, in, out
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 16, 9, 30, 0, 123456000, time.UTC)
}

const testTemplate = `model %%modelName%%
// generated %%time%% in %%path%%
input[%%noInput%%]
%%equations%%
// end %%modelName%%
`
