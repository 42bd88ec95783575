package bundle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
)

// Per-section compression flags.
const (
	FlagCompZSTD uint32 = 1 << 0
	FlagCompLZ4  uint32 = 1 << 1
)

// ParseCompression maps a CLI name to section flags.
func ParseCompression(name string) (uint32, error) {
	switch name {
	case "", "none":
		return 0, nil
	case "zstd":
		return FlagCompZSTD, nil
	case "lz4":
		return FlagCompLZ4, nil
	default:
		return 0, fmt.Errorf("bundle: unknown compression %q (want none, zstd or lz4)", name)
	}
}

// CompressionName is the inverse of ParseCompression.
func CompressionName(flags uint32) string {
	switch {
	case flags&FlagCompZSTD != 0:
		return "zstd"
	case flags&FlagCompLZ4 != 0:
		return "lz4"
	default:
		return "none"
	}
}

func zstdEncode(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, make([]byte, 0, len(b))), nil
}

func zstdDecode(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}

func lz4Encode(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Decode(b []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(b))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(flags uint32, data []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		return zstdEncode(data)
	case flags&FlagCompLZ4 != 0:
		return lz4Encode(data)
	default:
		return data, nil
	}
}

func decode(flags uint32, data []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		return zstdDecode(data)
	case flags&FlagCompLZ4 != 0:
		return lz4Decode(data)
	default:
		return data, nil
	}
}
