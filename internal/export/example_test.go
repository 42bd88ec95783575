package export_test

import (
	"fmt"
	"log"
	"os"

	"github.com/qrv0/svmgen/internal/export"
	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

func ExampleFormula_Evaluate() {
	m := &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      0.5,
		SV: []svm.SparseVector{
			{},
			{{Index: 1, Value: 1}, {Index: 2, Value: 1}},
		},
		Coef: []float64{1, -1},
		Rho:  0.1,
	}
	f, err := export.NewFormula(m, scaler.Identity(2), scaler.Output{Bias: 0, Scale: 1}, 0)
	if err != nil {
		log.Fatal(err)
	}
	y, err := f.Evaluate([]float64{0, 0})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.4f\n", y)
	// Output: 0.5321
}

func ExampleWriteMatrixLiteral() {
	m := &svm.Model{
		KernelType: svm.RBF,
		SV:         []svm.SparseVector{{{Index: 1, Value: 0.5}, {Index: 3, Value: -2}}},
		Coef:       []float64{1},
	}
	f, err := export.NewFormula(m, scaler.Identity(3), scaler.Output{Scale: 1}, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(export.BlockLiteral(f.SV, export.GeneralFormat))
	export.WriteMatrixLiteral(os.Stdout, f.SV.T())
	fmt.Println()
	// Output:
	// [0.5;0;-2]
	// [0.500000 0.000000 -2.000000 ; ];
}
