package export

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/qrv0/svmgen/internal/scaler"
)

// ParseEMX reads the parameters section of a generated 20-sim submodel back
// into a Formula.
func ParseEMX(text string) (*Formula, error) {
	decl := map[string]string{}
	in := false
scan:
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "parameters":
			in = true
			continue
		case line == "variables" && in:
			break scan
		case !in:
			continue
		}
		lhs, rhs, ok := strings.Cut(strings.TrimSuffix(line, ";"), "=")
		if !ok {
			continue
		}
		fields := strings.Fields(lhs)
		if len(fields) == 0 {
			continue
		}
		name, _, _ := strings.Cut(fields[len(fields)-1], "[")
		decl[name] = strings.TrimSpace(rhs)
	}
	if !in {
		return nil, fmt.Errorf("%w: no parameters section", ErrParse)
	}
	p := &parser{decl: decl, block: parseBlockLiteral}
	sv := p.matrix("SV")
	return p.formula(sv)
}

// ParseMFunction reads the declarations of a generated MATLAB function back
// into a Formula.
func ParseMFunction(text string) (*Formula, error) {
	decl := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "function") || strings.HasPrefix(line, "%") {
			continue
		}
		lhs, rhs, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name := strings.TrimSpace(lhs)
		if name == "x_scale" {
			break
		}
		decl[name] = strings.TrimSpace(rhs)
	}
	p := &parser{decl: decl, block: parseStreamLiteral}
	rows := p.matrix("SV")
	// SV is stored nSV x D in the function file.
	var sv [][]float64
	if len(rows) > 0 {
		sv = make([][]float64, len(rows[0]))
		for j := range sv {
			sv[j] = make([]float64, len(rows))
			for i, r := range rows {
				if j < len(r) {
					sv[j][i] = r[j]
				}
			}
		}
	}
	return p.formula(sv)
}

type parser struct {
	decl  map[string]string
	block func(string) ([][]float64, error)
	err   error
}

func (p *parser) raw(name string) string {
	v, ok := p.decl[name]
	if !ok && p.err == nil {
		p.err = fmt.Errorf("%w: %s not declared", ErrParse, name)
	}
	return v
}

func (p *parser) scalar(name string) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(p.raw(name)), ";")
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	return v
}

func (p *parser) matrix(name string) [][]float64 {
	s := p.raw(name)
	if p.err != nil {
		return nil
	}
	rows, err := p.block(s)
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	return rows
}

// vector accepts a literal with one element per row or a single row.
func (p *parser) vector(name string) []float64 {
	rows := p.matrix(name)
	if len(rows) == 1 {
		return rows[0]
	}
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if len(r) != 1 && p.err == nil {
			p.err = fmt.Errorf("%w: %s is not a vector", ErrParse, name)
		}
		out = append(out, r...)
	}
	return out
}

// formula assembles the parsed declarations; sv is D x nSV.
func (p *parser) formula(sv [][]float64) (*Formula, error) {
	coef := p.vector("svCoeff")
	f := &Formula{
		Coef:   coef,
		Rho:    p.scalar("rho"),
		Gamma:  p.scalar("gamma"),
		Input:  scaler.Input{Bias: p.vector("x_data_bias"), Scale: p.vector("x_data_scale")},
		Output: scaler.Output{Bias: p.scalar("y_data_bias"), Scale: p.scalar("y_data_scale")},
	}
	if p.err != nil {
		return nil, p.err
	}
	d := len(sv)
	if d == 0 || len(coef) == 0 {
		return nil, fmt.Errorf("%w: empty support vector matrix", ErrParse)
	}
	data := make([]float64, 0, d*len(coef))
	for j, row := range sv {
		if len(row) != len(coef) {
			return nil, fmt.Errorf("%w: SV row %d has %d entries for %d coefficients", ErrParse, j+1, len(row), len(coef))
		}
		data = append(data, row...)
	}
	if f.Input.Dim() != d || len(f.Input.Scale) != d {
		return nil, fmt.Errorf("%w: scalers have %d/%d entries for %d features", ErrParse, len(f.Input.Bias), len(f.Input.Scale), d)
	}
	f.SV = mat.NewDense(d, len(coef), data)
	return f, nil
}

// parseBlockLiteral reads [a,b;c,d].
func parseBlockLiteral(s string) ([][]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a bracketed literal: %.20q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	var rows [][]float64
	for _, r := range strings.Split(inner, ";") {
		var row []float64
		for _, tok := range strings.Split(r, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseStreamLiteral reads [a b ; c d ; ]; and [a b ];.
func parseStreamLiteral(s string) ([][]float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a bracketed literal: %.20q", s)
	}
	var rows [][]float64
	for _, r := range strings.Split(s[1:len(s)-1], ";") {
		fields := strings.Fields(r)
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
