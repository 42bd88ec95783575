package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.safetensors")
	w := NewWriter()
	require.NoError(t, w.AddFloat64("x_scaler", []int64{2, 3}, []float64{1, 2, 3, 0.5, 0.25, 4}))
	require.NoError(t, w.AddFloat64("y_scaler", []int64{2}, []float64{10, 2}))
	require.Error(t, w.AddFloat64("bad", []int64{2, 2}, []float64{1}))
	require.NoError(t, w.Write(path))

	f, err := Open(path)
	require.NoError(t, err)
	vals, shape, err := f.Float64s("x_scaler")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, shape)
	assert.Equal(t, []float64{1, 2, 3, 0.5, 0.25, 4}, vals)

	_, _, err = f.Float64s("missing")
	require.Error(t, err)
}

func TestReadF32WithMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f32.safetensors")
	header := map[string]any{
		"__metadata__": map[string]string{"source": "numpy"},
		"y_scaler": map[string]any{
			"dtype":        "F32",
			"shape":        []int{2},
			"data_offsets": []int{0, 8},
		},
	}
	hb, err := json.Marshal(header)
	require.NoError(t, err)
	buf := make([]byte, 8, 8+len(hb)+8)
	binary.LittleEndian.PutUint64(buf, uint64(len(hb)))
	buf = append(buf, hb...)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(1.5))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(-2))
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, f.Tensors, 1)
	vals, _, err := f.Float64s("y_scaler")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, vals)
}
