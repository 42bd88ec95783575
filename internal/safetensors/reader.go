package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Minimal safetensors reader for a single file.
// File layout: [header_len:u64][header_json][tensor_data...]

type Header map[string]TensorMeta

type TensorMeta struct {
	Dtype string  `json:"dtype"`
	Shape []int64 `json:"shape"`
	Data  []int64 `json:"data_offsets"`
}

type Tensor struct {
	Meta TensorMeta
	Data []byte
}

type File struct {
	Header  Header
	Tensors map[string]Tensor
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var hdrLen uint64
	if err := binary.Read(f, binary.LittleEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("safetensors: header length: %w", err)
	}
	if hdrLen > 100<<20 {
		return nil, fmt.Errorf("safetensors: header too large (%d bytes)", hdrLen)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(f, hdrBytes); err != nil {
		return nil, fmt.Errorf("safetensors: header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(hdrBytes, &raw); err != nil {
		return nil, fmt.Errorf("safetensors: invalid header: %w", err)
	}
	header := make(Header)
	for name, msg := range raw {
		// __metadata__ and similar records have no data_offsets
		var meta TensorMeta
		if err := json.Unmarshal(msg, &meta); err != nil || len(meta.Data) < 2 {
			continue
		}
		header[name] = meta
	}
	pos := int64(8 + hdrLen)
	res := make(map[string]Tensor, len(header))
	for name, meta := range header {
		start, end := meta.Data[0], meta.Data[1]
		size := end - start
		if size < 0 {
			return nil, fmt.Errorf("safetensors: tensor %s: bad offsets %v", name, meta.Data)
		}
		buf := make([]byte, size)
		if _, err := f.ReadAt(buf, pos+start); err != nil {
			return nil, fmt.Errorf("safetensors: tensor %s: %w", name, err)
		}
		res[name] = Tensor{Meta: meta, Data: buf}
	}
	return &File{Header: header, Tensors: res}, nil
}

// Float64s decodes a F64 or F32 tensor into row-major float64 values and
// returns them with the tensor shape.
func (f *File) Float64s(name string) ([]float64, []int64, error) {
	t, ok := f.Tensors[name]
	if !ok {
		return nil, nil, fmt.Errorf("safetensors: tensor %s not found", name)
	}
	n := int64(1)
	for _, d := range t.Meta.Shape {
		n *= d
	}
	var out []float64
	switch t.Meta.Dtype {
	case "F64":
		if int64(len(t.Data)) != 8*n {
			return nil, nil, fmt.Errorf("safetensors: tensor %s: %d bytes for %d F64 values", name, len(t.Data), n)
		}
		out = make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(t.Data[8*i:]))
		}
	case "F32":
		if int64(len(t.Data)) != 4*n {
			return nil, nil, fmt.Errorf("safetensors: tensor %s: %d bytes for %d F32 values", name, len(t.Data), n)
		}
		out = make([]float64, n)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(t.Data[4*i:])))
		}
	default:
		return nil, nil, fmt.Errorf("safetensors: tensor %s: unsupported dtype %s", name, t.Meta.Dtype)
	}
	return out, t.Meta.Shape, nil
}
