package svm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxPrealloc caps the capacity reserved from the total_sv header.
const maxPrealloc = 1 << 16

// Load reads a model saved by libsvm's svm_save_model.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read parses the libsvm text model format. Only models with a single
// decision function (nr_class <= 2) are accepted.
func Read(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	m := &Model{NrClass: 2}
	total := -1
	line := 0
	header := true
	for header && sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		key, args := fields[0], fields[1:]
		var err error
		switch key {
		case "svm_type":
			m.SvmType, err = lookup(svmTypeNames, args)
		case "kernel_type":
			m.KernelType, err = lookup(kernelTypeNames, args)
		case "degree":
			m.Degree, err = oneInt(args)
		case "gamma":
			m.Gamma, err = oneFloat(args)
		case "coef0":
			m.Coef0, err = oneFloat(args)
		case "nr_class":
			m.NrClass, err = oneInt(args)
			if err == nil && m.NrClass > 2 {
				err = fmt.Errorf("nr_class %d: only single decision function models are supported", m.NrClass)
			}
		case "total_sv":
			total, err = oneInt(args)
		case "rho":
			m.Rho, err = oneFloat(args)
		case "label":
			m.Label, err = ints(args)
		case "nr_sv":
			m.NrSV, err = ints(args)
		case "probA":
			m.ProbA, err = floatsOf(args)
		case "probB":
			m.ProbB, err = floatsOf(args)
		case "SV":
			header = false
		default:
			err = fmt.Errorf("unknown keyword %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header {
		return nil, fmt.Errorf("%w: missing SV section", ErrMalformedFile)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: missing total_sv", ErrMalformedFile)
	}
	// total_sv only sizes the initial allocation; the count check below
	// rejects a header that disagrees with the SV lines.
	m.SV = make([]SparseVector, 0, min(total, maxPrealloc))
	m.Coef = make([]float64, 0, min(total, maxPrealloc))
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		coef, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: coefficient: %v", ErrMalformedFile, line, err)
		}
		sv := make(SparseVector, 0, len(fields)-1)
		for _, tok := range fields[1:] {
			idx, val, ok := strings.Cut(tok, ":")
			if !ok {
				return nil, fmt.Errorf("%w: line %d: bad node %q", ErrMalformedFile, line, tok)
			}
			n := Node{}
			if n.Index, err = strconv.Atoi(idx); err != nil {
				return nil, fmt.Errorf("%w: line %d: index: %v", ErrMalformedFile, line, err)
			}
			if n.Value, err = strconv.ParseFloat(val, 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: value: %v", ErrMalformedFile, line, err)
			}
			sv = append(sv, n)
		}
		m.SV = append(m.SV, sv)
		m.Coef = append(m.Coef, coef)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.SV) != total {
		return nil, fmt.Errorf("%w: total_sv %d but %d support vectors", ErrMalformedFile, total, len(m.SV))
	}
	return m, nil
}

// Save writes m in the libsvm text model format.
func Save(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes m in the libsvm text model format.
func (m *Model) Encode(w io.Writer) error {
	fb := bufio.NewWriter(w)
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	fmt.Fprintf(fb, "svm_type %s\n", m.SvmTypeName())
	fmt.Fprintf(fb, "kernel_type %s\n", m.KernelTypeName())
	if m.KernelType == Poly {
		fmt.Fprintf(fb, "degree %d\n", m.Degree)
	}
	if m.KernelType == Poly || m.KernelType == RBF || m.KernelType == Sigmoid {
		fmt.Fprintf(fb, "gamma %s\n", ftoa(m.Gamma))
	}
	if m.KernelType == Poly || m.KernelType == Sigmoid {
		fmt.Fprintf(fb, "coef0 %s\n", ftoa(m.Coef0))
	}
	nrClass := m.NrClass
	if nrClass == 0 {
		nrClass = 2
	}
	fmt.Fprintf(fb, "nr_class %d\n", nrClass)
	fmt.Fprintf(fb, "total_sv %d\n", len(m.SV))
	fmt.Fprintf(fb, "rho %s\n", ftoa(m.Rho))
	writeList(fb, "label", len(m.Label), func(i int) string { return strconv.Itoa(m.Label[i]) })
	writeList(fb, "probA", len(m.ProbA), func(i int) string { return ftoa(m.ProbA[i]) })
	writeList(fb, "probB", len(m.ProbB), func(i int) string { return ftoa(m.ProbB[i]) })
	writeList(fb, "nr_sv", len(m.NrSV), func(i int) string { return strconv.Itoa(m.NrSV[i]) })
	fb.WriteString("SV\n")
	for i, sv := range m.SV {
		fb.WriteString(ftoa(m.Coef[i]) + " ")
		for _, nd := range sv {
			fb.WriteString(strconv.Itoa(nd.Index) + ":" + ftoa(nd.Value) + " ")
		}
		fb.WriteString("\n")
	}
	return fb.Flush()
}

func writeList(fb *bufio.Writer, key string, n int, item func(int) string) {
	if n == 0 {
		return
	}
	fb.WriteString(key)
	for i := 0; i < n; i++ {
		fb.WriteString(" " + item(i))
	}
	fb.WriteString("\n")
}

func lookup(table []string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want 1 value, got %d", len(args))
	}
	for i, name := range table {
		if name == args[0] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", args[0])
}

func oneInt(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want 1 value, got %d", len(args))
	}
	return strconv.Atoi(args[0])
}

func oneFloat(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want 1 value, got %d", len(args))
	}
	return strconv.ParseFloat(args[0], 64)
}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func floatsOf(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
