package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qrv0/svmgen/internal/bundle"
	"github.com/qrv0/svmgen/internal/export"
	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

type targetFlags struct {
	model     *string
	scaler    *string
	name      *string
	out       *string
	template  *string
	cTemplate *string
	format    *string
	dim       *int
}

func addTargetFlags(fs *flag.FlagSet) *targetFlags {
	return &targetFlags{
		model:     fs.String("model", "", "libsvm model file"),
		scaler:    fs.String("scaler", "", "scaler file (.safetensors or text); identity when empty"),
		name:      fs.String("name", "", "artifact name (default: model file name)"),
		out:       fs.String("out", ".", "output directory"),
		template:  fs.String("template", export.DefaultTemplateName, "20-sim template"),
		cTemplate: fs.String("ctemplate", "", "C template (default: embedded)"),
		format:    fs.String("format", "g", "20-sim number format: g, f or exact"),
		dim:       fs.Int("dim", 0, "input dimensionality (default: inferred from the model)"),
	}
}

// setup loads the model and scalers and builds the exporter and formula.
func (tf *targetFlags) setup() (*export.Exporter, *export.Formula, string, error) {
	if *tf.model == "" {
		return nil, nil, "", fmt.Errorf("--model is required")
	}
	nf, err := parseFormat(*tf.format)
	if err != nil {
		return nil, nil, "", err
	}
	m, err := svm.Load(*tf.model)
	if err != nil {
		return nil, nil, "", err
	}
	in, out, err := loadScaler(*tf.scaler, m, *tf.dim)
	if err != nil {
		return nil, nil, "", err
	}
	name := *tf.name
	if name == "" {
		name = defaultName(*tf.model)
	}
	if err := os.MkdirAll(*tf.out, 0o755); err != nil {
		return nil, nil, "", err
	}
	e := export.New(
		export.WithOutputDir(*tf.out),
		export.WithTemplate(*tf.template),
		export.WithCTemplate(*tf.cTemplate),
		export.WithDimension(*tf.dim),
		export.WithNumberFormat(nf),
		export.WithLogger(log.New(os.Stderr, "svmgen: ", 0)),
	)
	f, err := e.Formula(m, in, out)
	if err != nil {
		return nil, nil, "", err
	}
	return e, f, name, nil
}

// loadScaler reads the scaler file, or returns identity scalers sized to
// the model when path is empty.
func loadScaler(path string, m *svm.Model, dim int) (scaler.Input, scaler.Output, error) {
	if path != "" {
		return scaler.Load(path)
	}
	if dim <= 0 {
		dim = export.InferDim(m.SV)
	}
	return scaler.Identity(dim), scaler.Output{Bias: 0, Scale: 1}, nil
}

func parseFormat(s string) (export.NumberFormat, error) {
	switch s {
	case "g", "":
		return export.GeneralFormat, nil
	case "f":
		return export.FixedFormat, nil
	case "exact":
		return export.ExactFormat, nil
	default:
		return export.NumberFormat{}, fmt.Errorf("unknown number format %q (want g, f or exact)", s)
	}
}

// defaultName turns a model path into an identifier usable by every target.
func defaultName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for i, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == '_':
			if i == 0 {
				b.WriteByte('m')
			}
			b.WriteRune(r)
		default:
			if i == 0 {
				b.WriteByte('m')
			}
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "model"
	}
	return b.String()
}

func writeTarget(e *export.Exporter, f *export.Formula, target, name string) (string, error) {
	switch target {
	case "emx":
		return e.EMX(f, name)
	case "mfunc":
		return e.MFunction(f, name)
	case "cfunc":
		return e.CFunction(f, name)
	default:
		return "", fmt.Errorf("unknown target %q", target)
	}
}

func cmdTarget(target string) {
	fs := flag.NewFlagSet(target, flag.ExitOnError)
	tf := addTargetFlags(fs)
	fs.Parse(os.Args[2:])
	e, f, name, err := tf.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", target, err)
		os.Exit(1)
	}
	path, err := writeTarget(e, f, target, name)
	if err != nil {
		os.Exit(2)
	}
	fmt.Println("Wrote:", path)
}

func cmdExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	tf := addTargetFlags(fs)
	bundlePath := fs.String("bundle", "", "also pack the artifacts into this bundle")
	comp := fs.String("comp", "zstd", "bundle section compression: zstd, lz4 or none")
	fs.Parse(os.Args[2:])
	flags, err := bundle.ParseCompression(*comp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	e, f, name, err := tf.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	paths, err := exportAll(e, f, name)
	for _, p := range paths {
		fmt.Println("Wrote:", p)
	}
	if err != nil {
		os.Exit(2)
	}
	if *bundlePath == "" {
		return
	}
	man := bundle.Manifest{Name: name, NSV: f.NSV(), Dim: f.Dim(), Created: time.Now().UTC()}
	if err := packArtifacts(*bundlePath, man, paths, flags); err != nil {
		fmt.Fprintf(os.Stderr, "export: bundle: %v\n", err)
		os.Exit(3)
	}
	fmt.Println("Bundled:", *bundlePath)
}

var allTargets = []string{"emx", "mfunc", "cfunc"}

// exportAll writes every target, stopping at the first failure. The paths
// written so far are returned either way.
func exportAll(e *export.Exporter, f *export.Formula, name string) ([]string, error) {
	var paths []string
	for _, t := range allTargets {
		p, err := writeTarget(e, f, t, name)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func sectionFor(path string) (uint32, error) {
	switch filepath.Ext(path) {
	case export.ExtEMX:
		return bundle.TypeEMX, nil
	case export.ExtMFunc:
		return bundle.TypeMFunc, nil
	case export.ExtC:
		return bundle.TypeCSource, nil
	default:
		return 0, fmt.Errorf("no bundle section for %s", path)
	}
}

func packArtifacts(dst string, man bundle.Manifest, paths []string, flags uint32) error {
	arts := make([]bundle.Artifact, 0, len(paths))
	for _, p := range paths {
		t, err := sectionFor(p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		arts = append(arts, bundle.Artifact{Type: t, Name: filepath.Base(p), Data: data})
	}
	return bundle.Pack(dst, man, arts, flags)
}
