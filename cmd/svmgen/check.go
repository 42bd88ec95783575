package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/qrv0/svmgen/internal/export"
	"github.com/qrv0/svmgen/internal/scaler"
)

func cmdCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	emxPath := fs.String("emx", "", "generated 20-sim submodel")
	mPath := fs.String("m", "", "generated MATLAB function")
	xs := fs.String("x", "", "comma separated input vector (default: random samples)")
	n := fs.Int("n", 100, "number of random samples")
	seed := fs.Uint64("seed", 1, "random seed")
	tol := fs.Float64("tol", 1e-5, "maximum allowed difference")
	fs.Parse(os.Args[2:])
	if *emxPath == "" || *mPath == "" {
		fmt.Println("usage: svmgen check --emx a.emx --m a.m [--x v1,v2,...] [--n 100] [--tol 1e-5]")
		os.Exit(1)
	}
	a, err := loadFormula(*emxPath, export.ParseEMX)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(1)
	}
	b, err := loadFormula(*mPath, export.ParseMFunction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(1)
	}
	var inputs [][]float64
	if *xs != "" {
		x, err := parseVector(*xs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
		inputs = [][]float64{x}
	} else {
		inputs = sampleInputs(a.Input, *n, *seed)
	}
	diff, err := maxDifference(a, b, inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(1)
	}
	if len(inputs) == 1 {
		y, _ := a.Evaluate(inputs[0])
		fmt.Printf("output: %g\n", y)
	}
	fmt.Printf("inputs: %d  max difference: %g  tolerance: %g\n", len(inputs), diff, *tol)
	if diff > *tol {
		fmt.Fprintln(os.Stderr, "check: FAILED")
		os.Exit(3)
	}
	fmt.Println("check: OK")
}

func loadFormula(path string, parse func(string) (*export.Formula, error)) (*export.Formula, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func parseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty input vector")
	}
	x := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("input vector element %d: %w", i, err)
		}
		x[i] = v
	}
	return x, nil
}

// sampleInputs draws n vectors uniformly from bias ± scale per feature, the
// range the input scaler maps onto [-1, 1].
func sampleInputs(in scaler.Input, n int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([][]float64, n)
	for i := range out {
		x := make([]float64, in.Dim())
		for j := range x {
			x[j] = in.Bias[j] + in.Scale[j]*(2*rng.Float64()-1)
		}
		out[i] = x
	}
	return out
}

func maxDifference(a, b *export.Formula, inputs [][]float64) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("%w: %d vs %d features", export.ErrDimensionMismatch, a.Dim(), b.Dim())
	}
	diff := 0.0
	for _, x := range inputs {
		ya, err := a.Evaluate(x)
		if err != nil {
			return 0, err
		}
		yb, err := b.Evaluate(x)
		if err != nil {
			return 0, err
		}
		if !finite(ya) || !finite(yb) {
			return math.Inf(1), fmt.Errorf("input %v: non-finite output (emx %g, m %g)", x, ya, yb)
		}
		diff = math.Max(diff, math.Abs(ya-yb))
	}
	return diff, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
