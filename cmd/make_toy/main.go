package main

import (
	"flag"
	"math"
	"os"

	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

// Writes a small epsilon-SVR RBF model and a matching scaler file.
func main() {
	modelOut := flag.String("model", "toy.model", "output libsvm model path")
	scalerOut := flag.String("scaler", "toy.safetensors", "output scaler path")
	nsv := flag.Int("nsv", 8, "support vectors")
	dim := flag.Int("dim", 3, "features")
	flag.Parse()
	if *nsv < 1 || *dim < 1 {
		println("make_toy: --nsv and --dim must be positive")
		os.Exit(1)
	}
	m, in, out := toy(*nsv, *dim)
	if err := svm.Save(*modelOut, m); err != nil {
		println("make_toy: write model error:", err.Error())
		os.Exit(1)
	}
	if err := scaler.Save(*scalerOut, in, out); err != nil {
		println("make_toy: write scaler error:", err.Error())
		os.Exit(1)
	}
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// toy builds deterministic values with at most six decimals, so every
// export target carries them exactly.
func toy(nsv, dim int) (*svm.Model, scaler.Input, scaler.Output) {
	m := &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      round6(1 / float64(dim+1)),
		NrClass:    2,
		Rho:        -0.125,
	}
	for i := 0; i < nsv; i++ {
		var sv svm.SparseVector
		for j := 1; j <= dim; j++ {
			v := round6(math.Sin(float64(i*dim+j)) * 0.9)
			if v == 0 || (i+j)%4 == 0 {
				continue
			}
			sv = append(sv, svm.Node{Index: j, Value: v})
		}
		m.SV = append(m.SV, sv)
		m.Coef = append(m.Coef, round6(math.Cos(float64(i))*0.5+0.01*float64(i%7)))
	}
	if m.MaxIndex() < dim {
		m.SV[0] = append(m.SV[0], svm.Node{Index: dim, Value: 0.5})
	}
	in := scaler.Identity(dim)
	for j := range in.Bias {
		in.Bias[j] = float64(j) * 1.5
		in.Scale[j] = 2 + float64(j%3)
	}
	return m, in, scaler.Output{Bias: 10, Scale: 2.5}
}
