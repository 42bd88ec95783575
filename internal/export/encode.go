package export

import (
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// NumberFormat is the scoped formatting option handed to the renderers,
// in strconv.FormatFloat terms.
type NumberFormat struct {
	Verb byte
	Prec int
}

var (
	// GeneralFormat is the shortest representation that parses back to the
	// identical float64.
	GeneralFormat = NumberFormat{Verb: 'g', Prec: -1}
	// FixedFormat is printf's %f.
	FixedFormat = NumberFormat{Verb: 'f', Prec: 6}
	// ExactFormat is printf's %.17g.
	ExactFormat = NumberFormat{Verb: 'g', Prec: 17}
)

func (nf NumberFormat) Format(v float64) string {
	return strconv.FormatFloat(v, nf.Verb, nf.Prec, 64)
}

func (nf NumberFormat) append(b []byte, v float64) []byte {
	return strconv.AppendFloat(b, v, nf.Verb, nf.Prec, 64)
}

// BlockLiteral renders a as a 20-sim matrix literal: commas between the
// elements of a row, semicolons between rows, e.g. [1,2;3,4].
func BlockLiteral(a mat.Matrix, nf NumberFormat) string {
	r, c := a.Dims()
	b := make([]byte, 0, 2+r*c*8)
	b = append(b, '[')
	for i := 0; i < r; i++ {
		if i > 0 {
			b = append(b, ';')
		}
		for j := 0; j < c; j++ {
			if j > 0 {
				b = append(b, ',')
			}
			b = nf.append(b, a.At(i, j))
		}
	}
	return string(append(b, ']'))
}

// ColumnLiteral renders v as a 20-sim column vector, e.g. [1;2;3].
func ColumnLiteral(v []float64, nf NumberFormat) string {
	b := make([]byte, 0, 2+len(v)*8)
	b = append(b, '[')
	for i, x := range v {
		if i > 0 {
			b = append(b, ';')
		}
		b = nf.append(b, x)
	}
	return string(append(b, ']'))
}

// FlatList renders vals as a C initializer body: "1, 2, 3".
func FlatList(vals []float64, nf NumberFormat) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = nf.Format(v)
	}
	return strings.Join(parts, ", ")
}

// FlatMatrix lists the elements of a in row-major order.
func FlatMatrix(a mat.Matrix) []float64 {
	r, c := a.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, a.At(i, j))
		}
	}
	return out
}

// stream writes MATLAB literals element by element and keeps the first
// write error.
type stream struct {
	w   io.Writer
	nf  NumberFormat
	buf []byte
	err error
}

func newStream(w io.Writer) *stream { return &stream{w: w, nf: FixedFormat} }

func (s *stream) str(text string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, text)
}

func (s *stream) num(v float64) {
	if s.err != nil {
		return
	}
	s.buf = s.nf.append(s.buf[:0], v)
	s.buf = append(s.buf, ' ')
	_, s.err = s.w.Write(s.buf)
}

// row writes "[v1 v2 ];".
func (s *stream) row(v []float64) {
	s.str("[")
	for _, x := range v {
		s.num(x)
	}
	s.str("];")
}

// matrix writes "[a11 a12 ; a21 a22 ; ];".
func (s *stream) matrix(a mat.Matrix) {
	r, c := a.Dims()
	s.str("[")
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s.num(a.At(i, j))
		}
		s.str("; ")
	}
	s.str("];")
}

// WriteRowLiteral streams v to w as a MATLAB row vector literal.
func WriteRowLiteral(w io.Writer, v []float64) error {
	s := newStream(w)
	s.row(v)
	return s.err
}

// WriteMatrixLiteral streams a to w as a MATLAB matrix literal.
func WriteMatrixLiteral(w io.Writer, a mat.Matrix) error {
	s := newStream(w)
	s.matrix(a)
	return s.err
}
