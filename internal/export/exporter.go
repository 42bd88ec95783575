package export

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

// File extensions of the generated artifacts.
const (
	ExtEMX   = ".emx"
	ExtMFunc = ".m"
	ExtC     = ".c"
)

// TimeLayout formats the %%time%% placeholder.
const TimeLayout = "2006-01-02 15:04:05.000000"

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Exporter writes artifacts for a Formula. It holds no mutable state; one
// Exporter may be used from several goroutines as long as the artifact
// names differ.
type Exporter struct {
	cfg config
}

// New returns an Exporter configured by opts.
func New(opts ...Option) *Exporter {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Exporter{cfg: cfg}
}

// Formula builds the Formula for m using the exporter's dimension setting.
func (e *Exporter) Formula(m *svm.Model, in scaler.Input, out scaler.Output) (*Formula, error) {
	f, err := NewFormula(m, in, out, e.cfg.dim)
	if err != nil {
		return nil, e.fail("formula", err)
	}
	return f, nil
}

// EMX copies the 20-sim template to <outdir>/<name>.emx with its
// placeholders substituted and returns the written path. name becomes the
// submodel type name, so it must be an identifier. When the template
// is missing nothing is written.
func (e *Exporter) EMX(f *Formula, name string) (string, error) {
	if err := checkIdent(name); err != nil {
		return "", e.fail("emx", err)
	}
	tmpl, err := readTemplate(e.cfg.templatePath)
	if err != nil {
		return "", e.fail("emx", err)
	}
	if err := requireTokens(e.cfg.templatePath, tmpl, TokenPath, TokenTime, TokenModelName, TokenNoInput, TokenEquations); err != nil {
		return "", e.fail("emx", err)
	}
	dir, err := filepath.Abs(e.cfg.outDir)
	if err != nil {
		return "", e.fail("emx", err)
	}
	r := strings.NewReplacer(
		TokenPath, dir,
		TokenTime, e.cfg.now().Format(TimeLayout),
		TokenModelName, name,
		TokenNoInput, strconv.Itoa(f.Dim()),
		TokenEquations, f.EMXEquations(e.cfg.format),
	)
	dst := filepath.Join(e.cfg.outDir, name+ExtEMX)
	if err := os.WriteFile(dst, []byte(r.Replace(tmpl)), 0o644); err != nil {
		return "", e.fail("emx", err)
	}
	return dst, nil
}

// MFunction writes <outdir>/<name>.m and returns its path. A file left
// incomplete by a write error is removed.
func (e *Exporter) MFunction(f *Formula, name string) (string, error) {
	if err := checkIdent(name); err != nil {
		return "", e.fail("mfunc", err)
	}
	dst := filepath.Join(e.cfg.outDir, name+ExtMFunc)
	if err := writeStreamed(dst, func(w *bufio.Writer) error { return f.WriteMFunction(w, name) }); err != nil {
		return "", e.fail("mfunc", err)
	}
	return dst, nil
}

// CFunction renders the C template (embedded unless WithCTemplate is set)
// to <outdir>/<name>.c and returns its path.
func (e *Exporter) CFunction(f *Formula, name string) (string, error) {
	if err := checkIdent(name); err != nil {
		return "", e.fail("cfunc", err)
	}
	tmpl := DefaultCTemplate
	if e.cfg.cTemplate != "" {
		var err error
		if tmpl, err = readTemplate(e.cfg.cTemplate); err != nil {
			return "", e.fail("cfunc", err)
		}
		if err := requireTokens(e.cfg.cTemplate, tmpl, cTokens...); err != nil {
			return "", e.fail("cfunc", err)
		}
	}
	dst := filepath.Join(e.cfg.outDir, name+ExtC)
	if err := os.WriteFile(dst, []byte(f.CReplacer(name).Replace(tmpl)), 0o644); err != nil {
		return "", e.fail("cfunc", err)
	}
	return dst, nil
}

func (e *Exporter) fail(target string, err error) error {
	if e.cfg.logger != nil {
		e.cfg.logger.Printf("%s: %s: %v", target, Category(err), err)
	}
	return err
}

// Category names the error class of an export failure.
func Category(err error) string {
	var pe *fs.PathError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingTemplate):
		return "missing template"
	case errors.Is(err, ErrTemplatePlaceholder), errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrEmptyModel), errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrInvalidModel), errors.Is(err, ErrInvalidScaler):
		return "value error"
	case errors.Is(err, ErrUnsupportedKernel):
		return "type error"
	case errors.As(err, &pe):
		return "I/O error"
	default:
		return "unexpected error"
	}
}

func readTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMissingTemplate, path)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func requireTokens(path, tmpl string, tokens ...string) error {
	var missing []string
	for _, t := range tokens {
		if !strings.Contains(tmpl, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrTemplatePlaceholder, path, strings.Join(missing, ", "))
	}
	return nil
}

func writeStreamed(dst string, body func(*bufio.Writer) error) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	err = body(w)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q is not an identifier", ErrInvalidName, name)
	}
	return nil
}

// Make20SimModel writes <name>.emx for m and the scalers.
func Make20SimModel(m *svm.Model, in scaler.Input, out scaler.Output, name string, opts ...Option) (string, error) {
	e := New(opts...)
	f, err := e.Formula(m, in, out)
	if err != nil {
		return "", err
	}
	return e.EMX(f, name)
}

// MakeMFunction writes <name>.m for m and the scalers.
func MakeMFunction(m *svm.Model, in scaler.Input, out scaler.Output, name string, opts ...Option) (string, error) {
	e := New(opts...)
	f, err := e.Formula(m, in, out)
	if err != nil {
		return "", err
	}
	return e.MFunction(f, name)
}

// MakeCFunction writes <name>.c for m and the scalers.
func MakeCFunction(m *svm.Model, in scaler.Input, out scaler.Output, name string, opts ...Option) (string, error) {
	e := New(opts...)
	f, err := e.Formula(m, in, out)
	if err != nil {
		return "", err
	}
	return e.CFunction(f, name)
}
