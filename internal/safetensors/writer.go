package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Writer collects F64 tensors and writes them as one .safetensors file.
type Writer struct {
	names  []string
	shapes map[string][]int64
	data   map[string][]float64
}

func NewWriter() *Writer {
	return &Writer{shapes: map[string][]int64{}, data: map[string][]float64{}}
}

// AddFloat64 adds a row-major tensor. The product of shape must equal len(vals).
func (w *Writer) AddFloat64(name string, shape []int64, vals []float64) error {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	if n != int64(len(vals)) {
		return fmt.Errorf("safetensors: tensor %s: shape %v holds %d values, got %d", name, shape, n, len(vals))
	}
	if _, dup := w.data[name]; !dup {
		w.names = append(w.names, name)
	}
	w.shapes[name] = shape
	w.data[name] = vals
	return nil
}

func (w *Writer) Write(path string) error {
	names := append([]string(nil), w.names...)
	sort.Strings(names)
	header := map[string]TensorMeta{}
	off := int64(0)
	for _, name := range names {
		size := int64(8 * len(w.data[name]))
		header[name] = TensorMeta{Dtype: "F64", Shape: w.shapes[name], Data: []int64{off, off + size}}
		off += size
	}
	hb, err := json.Marshal(header)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], uint64(len(hb)))
	bw.Write(b8[:])
	bw.Write(hb)
	for _, name := range names {
		for _, v := range w.data[name] {
			binary.LittleEndian.PutUint64(b8[:], math.Float64bits(v))
			bw.Write(b8[:])
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
