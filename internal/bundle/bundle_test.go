package bundle

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderWithCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.svmb")
	meta := []byte(`{"hello":"world"}`)
	raw := bytes.Repeat([]byte{1, 2, 3, 4}, 1024)
	zst := bytes.Repeat([]byte{5, 6, 7, 8}, 2048)

	w := NewWriter()
	w.AddSection(TypeManifest, meta, 0)
	w.AddSection(TypeEMX, raw, FlagCompLZ4)
	w.AddSection(TypeMFunc, zst, FlagCompZSTD)
	require.NoError(t, w.Write(path))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	head := make([]byte, 8)
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, magic[:], head)
	var hdr header
	require.NoError(t, binary.Read(f, binary.LittleEndian, &hdr))
	assert.EqualValues(t, 3, hdr.Num)

	for _, e := range r.TOC {
		assert.Zero(t, e.Offset%4096, "section %s not aligned", SectionName(e.TypeID))
	}

	got, err := r.SectionUncompressed(TypeManifest)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
	got, err = r.SectionUncompressed(TypeEMX)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	got, err = r.SectionUncompressed(TypeMFunc)
	require.NoError(t, err)
	assert.Equal(t, zst, got)

	stored, err := r.Section(TypeMFunc)
	require.NoError(t, err)
	assert.Less(t, len(stored), len(zst))

	_, err = r.Section(TypeCSource)
	assert.Error(t, err)
	assert.False(t, r.Has(TypeCSource))
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.emx")
	require.NoError(t, os.WriteFile(path, []byte("<?xml version=\"1.0\"?>"), 0o644))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNotBundle)

	short := filepath.Join(t.TempDir(), "short")
	require.NoError(t, os.WriteFile(short, []byte("SV"), 0o644))
	_, err = Open(short)
	assert.ErrorIs(t, err, ErrNotBundle)
}

func TestWriteWithoutSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.svmb")
	require.Error(t, NewWriter().Write(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]uint32{"": 0, "none": 0, "zstd": FlagCompZSTD, "lz4": FlagCompLZ4} {
		got, err := ParseCompression(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, "lz4", CompressionName(FlagCompLZ4))
	assert.Equal(t, "none", CompressionName(0))
}

func testArtifacts() []Artifact {
	return []Artifact{
		{Type: TypeEMX, Name: "model.emx", Data: bytes.Repeat([]byte("<emx/>\n"), 700)},
		{Type: TypeMFunc, Name: "model.m", Data: []byte("function y = model(x)\ny = 0;")},
		{Type: TypeCSource, Name: "model.c", Data: bytes.Repeat([]byte("double v = 0.5;\n"), 300)},
	}
}

func TestPackVerify(t *testing.T) {
	created := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	for _, comp := range []string{"none", "zstd", "lz4"} {
		t.Run(comp, func(t *testing.T) {
			flags, err := ParseCompression(comp)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "model.svmb")
			man := Manifest{Name: "model", NSV: 4, Dim: 3, Created: created}
			require.NoError(t, Pack(path, man, testArtifacts(), flags))

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			got, err := r.Manifest()
			require.NoError(t, err)
			assert.Equal(t, "model", got.Name)
			assert.Equal(t, 4, got.NSV)
			assert.Equal(t, 3, got.Dim)
			assert.True(t, created.Equal(got.Created))
			assert.Equal(t, comp, got.Compression)
			assert.Equal(t, "model.m", got.Files["3"])
			require.Contains(t, got.ChecksumIndex, "2")
			assert.Equal(t, 5, got.ChecksumIndex["2"].Count) // 4900 bytes in 1 KiB chunks

			bad, err := Verify(r)
			require.NoError(t, err)
			assert.Empty(t, bad)

			for _, a := range testArtifacts() {
				data, err := r.SectionUncompressed(a.Type)
				require.NoError(t, err)
				assert.Equal(t, a.Data, data)
			}
		})
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.svmb")
	require.NoError(t, Pack(path, Manifest{Name: "model"}, testArtifacts(), 0))

	r, err := Open(path)
	require.NoError(t, err)
	var off uint64
	for _, e := range r.TOC {
		if e.TypeID == TypeEMX {
			off = e.Offset
		}
	}
	require.NoError(t, r.Close())
	require.NotZero(t, off)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{'#'}, int64(off)+2048+3)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()
	bad, err := Verify(r)
	require.NoError(t, err)
	require.Len(t, bad, 1)
	assert.Equal(t, uint32(TypeEMX), bad[0].Section)
	assert.Equal(t, 2, bad[0].Chunk)
	assert.Equal(t, "section emx: chunk 2 mismatch", bad[0].String())
}

func TestPackRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.svmb")
	arts := []Artifact{{Type: TypeEMX, Name: "a.emx"}, {Type: TypeEMX, Name: "b.emx"}}
	assert.Error(t, Pack(path, Manifest{}, arts, 0))
	assert.Error(t, Pack(path, Manifest{}, []Artifact{{Type: TypeManifest}}, 0))
}

func TestRoll(t *testing.T) {
	assert.Empty(t, Roll(nil, 16))
	assert.Len(t, Roll(make([]byte, 33), 16), 3)
	c := NewChecksum([]byte("abc"), 0)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize)
	require.Len(t, c.HashesHex, 1)
	assert.Len(t, c.HashesHex[0], 16)
	h, err := c.hashes()
	require.NoError(t, err)
	assert.Equal(t, Roll([]byte("abc"), 0), h)
}
