package scaler

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qrv0/svmgen/internal/safetensors"
)

// Tensor names looked up in a .safetensors scaler file.
const (
	TensorInput  = "x_scaler"
	TensorOutput = "y_scaler"
)

// Load reads both scalers from path. Files ending in .safetensors must hold
// x_scaler (2xD) and y_scaler (2). Any other file is read as whitespace
// separated text: x bias row, x scale row, then "y_bias y_scale".
func Load(path string) (Input, Output, error) {
	if filepath.Ext(path) == ".safetensors" {
		return loadSafetensors(path)
	}
	return loadText(path)
}

func loadSafetensors(path string) (Input, Output, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return Input{}, Output{}, err
	}
	xv, xs, err := f.Float64s(TensorInput)
	if err != nil {
		return Input{}, Output{}, err
	}
	if len(xs) != 2 || xs[0] != 2 {
		return Input{}, Output{}, fmt.Errorf("%w: %s has shape %v, want [2 D]", ErrInvalidScaler, TensorInput, xs)
	}
	yv, _, err := f.Float64s(TensorOutput)
	if err != nil {
		return Input{}, Output{}, err
	}
	if len(yv) != 2 {
		return Input{}, Output{}, fmt.Errorf("%w: %s has %d values, want 2", ErrInvalidScaler, TensorOutput, len(yv))
	}
	d := int(xs[1])
	in, err := FromRows([][]float64{xv[:d], xv[d:]})
	if err != nil {
		return Input{}, Output{}, err
	}
	out := Output{Bias: yv[0], Scale: yv[1]}
	return in, out, out.Validate()
}

func loadText(path string) (Input, Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, Output{}, err
	}
	defer f.Close()
	var rows [][]float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Input{}, Output{}, fmt.Errorf("%w: %s: %v", ErrInvalidScaler, path, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return Input{}, Output{}, err
	}
	if len(rows) != 3 || len(rows[2]) != 2 {
		return Input{}, Output{}, fmt.Errorf("%w: %s: want x bias, x scale and y rows", ErrInvalidScaler, path)
	}
	in, err := FromRows(rows[:2])
	if err != nil {
		return Input{}, Output{}, err
	}
	out := Output{Bias: rows[2][0], Scale: rows[2][1]}
	return in, out, out.Validate()
}

// Save writes both scalers as a .safetensors file.
func Save(path string, in Input, out Output) error {
	w := safetensors.NewWriter()
	flat := append(append([]float64(nil), in.Bias...), in.Scale...)
	if err := w.AddFloat64(TensorInput, []int64{2, int64(in.Dim())}, flat); err != nil {
		return err
	}
	if err := w.AddFloat64(TensorOutput, []int64{2}, []float64{out.Bias, out.Scale}); err != nil {
		return err
	}
	return w.Write(path)
}
