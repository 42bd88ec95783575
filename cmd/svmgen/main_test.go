package main

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrv0/svmgen/internal/bundle"
	"github.com/qrv0/svmgen/internal/export"
	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

func toyModel() *svm.Model {
	return &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      0.25,
		NrClass:    2,
		SV: []svm.SparseVector{
			{{Index: 1, Value: 0.5}, {Index: 3, Value: -2}},
			{{Index: 2, Value: 1.25}},
			{{Index: 1, Value: -0.75}, {Index: 2, Value: 0.125}, {Index: 3, Value: 1}},
		},
		Coef: []float64{0.8, -1.5, 2.25},
		Rho:  -0.3125,
	}
}

func TestParseVector(t *testing.T) {
	x, err := parseVector("0.5, -1 2e-3\t4")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1, 0.002, 4}, x)

	_, err = parseVector(" , ")
	assert.Error(t, err)
	_, err = parseVector("1,abc")
	assert.ErrorContains(t, err, "element 1")
}

func TestParseFormat(t *testing.T) {
	nf, err := parseFormat("f")
	require.NoError(t, err)
	assert.Equal(t, export.FixedFormat, nf)
	nf, err = parseFormat("exact")
	require.NoError(t, err)
	assert.Equal(t, export.ExactFormat, nf)
	_, err = parseFormat("e")
	assert.Error(t, err)
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "toy_model", defaultName("/tmp/toy-model.model"))
	assert.Equal(t, "m2d", defaultName("2d.model"))
	assert.Equal(t, "model", defaultName(".model"))
	assert.Equal(t, "heat_sim", defaultName("heat_sim"))
}

func TestWriteDefaultTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), export.DefaultTemplateName)
	wrote, err := writeDefaultTemplate(path)
	require.NoError(t, err)
	assert.True(t, wrote)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, export.DefaultEMXTemplate, string(b))

	require.NoError(t, os.WriteFile(path, []byte("custom"), 0o644))
	wrote, err = writeDefaultTemplate(path)
	require.NoError(t, err)
	assert.False(t, wrote)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(b))
}

func TestSampleInputs(t *testing.T) {
	in := scaler.Input{Bias: []float64{10, -5}, Scale: []float64{2, 0.5}}
	xs := sampleInputs(in, 50, 7)
	require.Len(t, xs, 50)
	for _, x := range xs {
		require.Len(t, x, 2)
		assert.InDelta(t, 10, x[0], 2)
		assert.InDelta(t, -5, x[1], 0.5)
	}
	assert.Equal(t, xs, sampleInputs(in, 50, 7))
}

func TestLoadScalerIdentity(t *testing.T) {
	in, out, err := loadScaler("", toyModel(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, in.Dim())
	assert.Equal(t, 1.0, out.Scale)

	in, _, err = loadScaler("", toyModel(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, in.Dim())
}

// TestExportBundleRoundTrip drives the export, pack, unpack and check path
// the CLI commands share.
func TestExportBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "toy.model")
	scalerPath := filepath.Join(dir, "toy.safetensors")
	tmplPath := filepath.Join(dir, export.DefaultTemplateName)
	require.NoError(t, svm.Save(modelPath, toyModel()))
	in := scaler.Input{Bias: []float64{10, -5, 0.5}, Scale: []float64{2, 4, 0.25}}
	require.NoError(t, scaler.Save(scalerPath, in, scaler.Output{Bias: 100, Scale: 12.5}))
	_, err := writeDefaultTemplate(tmplPath)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	tf := addTargetFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--model", modelPath, "--scaler", scalerPath, "--template", tmplPath, "--out", outDir,
	}))
	e, f, name, err := tf.setup()
	require.NoError(t, err)
	assert.Equal(t, "toy", name)
	assert.Equal(t, 3, f.Dim())

	paths, err := exportAll(e, f, name)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(outDir, "toy.emx"), paths[0])

	bpath := filepath.Join(dir, "toy"+bundle.Ext)
	man := bundle.Manifest{Name: name, NSV: f.NSV(), Dim: f.Dim(), Created: time.Now().UTC()}
	require.NoError(t, packArtifacts(bpath, man, paths, bundle.FlagCompZSTD))

	r, err := bundle.Open(bpath)
	require.NoError(t, err)
	bad, err := bundle.Verify(r)
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.NoError(t, r.Close())
	require.NoError(t, inspectBundle(bpath))

	unpacked, err := unpack(bpath, filepath.Join(dir, "unpacked"))
	require.NoError(t, err)
	require.Len(t, unpacked, 3)
	for i, p := range unpacked {
		want, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, want, got, filepath.Base(p))
	}

	a, err := loadFormula(unpacked[0], export.ParseEMX)
	require.NoError(t, err)
	b, err := loadFormula(unpacked[1], export.ParseMFunction)
	require.NoError(t, err)
	diff, err := maxDifference(a, b, sampleInputs(a.Input, 100, 1))
	require.NoError(t, err)
	assert.Less(t, diff, 1e-5)
}

func TestSetupRequiresModel(t *testing.T) {
	fs := flag.NewFlagSet("emx", flag.ContinueOnError)
	tf := addTargetFlags(fs)
	require.NoError(t, fs.Parse(nil))
	_, _, _, err := tf.setup()
	assert.Error(t, err)
}

func TestSectionFor(t *testing.T) {
	typ, err := sectionFor("a/b/model.m")
	require.NoError(t, err)
	assert.EqualValues(t, bundle.TypeMFunc, typ)
	_, err = sectionFor("model.txt")
	assert.Error(t, err)
}

func TestMaxDifferenceRejectsNonFinite(t *testing.T) {
	m := &svm.Model{
		SvmType:    svm.EpsilonSVR,
		KernelType: svm.RBF,
		Gamma:      0.5,
		NrClass:    2,
		SV:         []svm.SparseVector{{{Index: 1, Value: 1}}},
		Coef:       []float64{1},
		Rho:        0.1,
	}
	in := scaler.Input{Bias: []float64{0}, Scale: []float64{1e-7}}
	a, err := export.NewFormula(m, in, scaler.Output{Scale: 1}, 0)
	require.NoError(t, err)
	// %f renders a scale of 1e-7 as 0.000000; x at the bias then gives 0/0.
	b := *a
	b.Input = scaler.Input{Bias: []float64{0}, Scale: []float64{0}}

	diff, err := maxDifference(a, &b, [][]float64{{0}})
	require.Error(t, err)
	assert.True(t, math.IsInf(diff, 1))

	diff, err = maxDifference(a, a, [][]float64{{0}})
	require.NoError(t, err)
	assert.Zero(t, diff)
}

func TestMaxDifferenceDimensionMismatch(t *testing.T) {
	m := toyModel()
	a, err := export.NewFormula(m, scaler.Identity(3), scaler.Output{Scale: 1}, 0)
	require.NoError(t, err)
	b, err := export.NewFormula(m, scaler.Identity(4), scaler.Output{Scale: 1}, 4)
	require.NoError(t, err)
	_, err = maxDifference(a, b, nil)
	assert.ErrorIs(t, err, export.ErrDimensionMismatch)
}
