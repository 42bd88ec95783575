// Package scaler holds the affine normalization applied around the SVM:
// inputs are normalized as (x - bias) / scale before the kernel sum and the
// raw output is mapped back as y*scale + bias. Whether bias/scale came from
// mean/std or min/range is irrelevant here.
package scaler

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidScaler reports a malformed scaler: ragged rows, zero or
	// non-finite entries.
	ErrInvalidScaler = errors.New("scaler: invalid scaler")
)

// Input is the 2xD input scaler. Bias is row 0, Scale row 1.
type Input struct {
	Bias  []float64
	Scale []float64
}

// Output is the 2-element output scaler.
type Output struct {
	Bias  float64
	Scale float64
}

// FromRows builds an Input from its 2xD array form.
func FromRows(rows [][]float64) (Input, error) {
	if len(rows) != 2 {
		return Input{}, fmt.Errorf("%w: want 2 rows, got %d", ErrInvalidScaler, len(rows))
	}
	in := Input{
		Bias:  append([]float64(nil), rows[0]...),
		Scale: append([]float64(nil), rows[1]...),
	}
	return in, in.Validate()
}

// Identity returns an input scaler of dimension d that leaves x unchanged.
func Identity(d int) Input {
	in := Input{Bias: make([]float64, d), Scale: make([]float64, d)}
	for i := range in.Scale {
		in.Scale[i] = 1
	}
	return in
}

// Dim is the input dimensionality D.
func (in Input) Dim() int { return len(in.Bias) }

// Rows returns the 2xD array form.
func (in Input) Rows() [][]float64 { return [][]float64{in.Bias, in.Scale} }

func (in Input) Validate() error {
	if len(in.Bias) != len(in.Scale) {
		return fmt.Errorf("%w: bias has %d entries, scale has %d", ErrInvalidScaler, len(in.Bias), len(in.Scale))
	}
	for i := range in.Bias {
		if !finite(in.Bias[i]) || !finite(in.Scale[i]) {
			return fmt.Errorf("%w: feature %d is not finite", ErrInvalidScaler, i+1)
		}
		if in.Scale[i] == 0 {
			return fmt.Errorf("%w: feature %d has zero scale", ErrInvalidScaler, i+1)
		}
	}
	return nil
}

// Normalize returns (x - bias) ./ scale.
func (in Input) Normalize(x []float64) ([]float64, error) {
	if len(x) != in.Dim() {
		return nil, fmt.Errorf("%w: input has %d features, scaler %d", ErrInvalidScaler, len(x), in.Dim())
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = (x[i] - in.Bias[i]) / in.Scale[i]
	}
	return out, nil
}

func (out Output) Validate() error {
	if !finite(out.Bias) || !finite(out.Scale) {
		return fmt.Errorf("%w: output scaler is not finite", ErrInvalidScaler)
	}
	return nil
}

// Denormalize returns y*scale + bias.
func (out Output) Denormalize(y float64) float64 { return y*out.Scale + out.Bias }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
