package bundle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	xxh3 "github.com/zeebo/xxh3"
)

// DefaultChunkSize is the rolling checksum chunk size in bytes.
const DefaultChunkSize = 1024

// ChecksumAlgo names the only supported checksum algorithm.
const ChecksumAlgo = "xxh3-64"

// Checksum is one section's rolling checksum entry. Hashes are kept as hex
// strings so JSON number precision never truncates them.
type Checksum struct {
	Algo      string   `json:"algo"`
	ChunkSize int      `json:"chunk_size"`
	Count     int      `json:"count"`
	HashesHex []string `json:"hashes_hex"`
}

// Manifest describes a bundle. Checksums and Files are keyed by the decimal
// section type id.
type Manifest struct {
	Name          string              `json:"name"`
	NSV           int                 `json:"n_sv"`
	Dim           int                 `json:"dim"`
	Created       time.Time           `json:"created"`
	Compression   string              `json:"compression"`
	Files         map[string]string   `json:"files"`
	ChecksumIndex map[string]Checksum `json:"checksum_index"`
}

// Artifact is one generated file destined for a section.
type Artifact struct {
	Type uint32
	Name string
	Data []byte
}

func key(t uint32) string { return strconv.FormatUint(uint64(t), 10) }

// Roll computes the xxh3 hash of every chunk of data.
func Roll(data []byte, chunk int) []uint64 {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	hashes := make([]uint64, 0, (len(data)+chunk-1)/chunk)
	for i := 0; i < len(data); i += chunk {
		end := min(i+chunk, len(data))
		hashes = append(hashes, xxh3.Hash(data[i:end]))
	}
	return hashes
}

// NewChecksum builds the checksum entry for data.
func NewChecksum(data []byte, chunk int) Checksum {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	hashes := Roll(data, chunk)
	hx := make([]string, len(hashes))
	for i, h := range hashes {
		hx[i] = fmt.Sprintf("%016x", h)
	}
	return Checksum{Algo: ChecksumAlgo, ChunkSize: chunk, Count: len(hashes), HashesHex: hx}
}

func (c Checksum) hashes() ([]uint64, error) {
	out := make([]uint64, len(c.HashesHex))
	for i, s := range c.HashesHex {
		x, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("bundle: bad hash %q: %w", s, err)
		}
		out[i] = x
	}
	return out, nil
}

// Pack writes the artifacts and a manifest section to path. The manifest's
// Files, ChecksumIndex and Compression fields are filled in from arts.
func Pack(path string, man Manifest, arts []Artifact, flags uint32) error {
	man.Compression = CompressionName(flags)
	man.Files = make(map[string]string, len(arts))
	man.ChecksumIndex = make(map[string]Checksum, len(arts))
	w := NewWriter()
	for _, a := range arts {
		if a.Type == TypeManifest {
			return fmt.Errorf("bundle: artifact %q uses the manifest section type", a.Name)
		}
		k := key(a.Type)
		if _, dup := man.Files[k]; dup {
			return fmt.Errorf("bundle: duplicate %s section", SectionName(a.Type))
		}
		man.Files[k] = a.Name
		man.ChecksumIndex[k] = NewChecksum(a.Data, DefaultChunkSize)
	}
	meta, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("bundle: manifest: %w", err)
	}
	w.AddSection(TypeManifest, meta, 0)
	for _, a := range arts {
		w.AddSection(a.Type, a.Data, flags)
	}
	return w.Write(path)
}

// Manifest decodes the manifest section.
func (r *Reader) Manifest() (*Manifest, error) {
	b, err := r.SectionUncompressed(TypeManifest)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("bundle: manifest: %w", err)
	}
	return &m, nil
}

// Mismatch describes one failed checksum comparison.
type Mismatch struct {
	Section uint32
	Chunk   int // -1 when the whole section is missing or the chunk count differs
	Reason  string
}

func (m Mismatch) String() string {
	if m.Chunk < 0 {
		return fmt.Sprintf("section %s: %s", SectionName(m.Section), m.Reason)
	}
	return fmt.Sprintf("section %s: chunk %d %s", SectionName(m.Section), m.Chunk, m.Reason)
}

// Verify recomputes every checksum recorded in the manifest against the
// decompressed section data. A nil slice with a nil error means the bundle is
// intact.
func Verify(r *Reader) ([]Mismatch, error) {
	man, err := r.Manifest()
	if err != nil {
		return nil, err
	}
	var bad []Mismatch
	for _, e := range r.TOC {
		if e.TypeID == TypeManifest {
			continue
		}
		if _, ok := man.ChecksumIndex[key(e.TypeID)]; !ok {
			bad = append(bad, Mismatch{Section: e.TypeID, Chunk: -1, Reason: "missing checksum"})
		}
	}
	for k, c := range man.ChecksumIndex {
		t64, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bundle: bad checksum key %q", k)
		}
		t := uint32(t64)
		if c.Algo != ChecksumAlgo {
			return nil, fmt.Errorf("bundle: section %s: unsupported checksum %q", SectionName(t), c.Algo)
		}
		want, err := c.hashes()
		if err != nil {
			return nil, err
		}
		if !r.Has(t) {
			bad = append(bad, Mismatch{Section: t, Chunk: -1, Reason: "section missing"})
			continue
		}
		data, err := r.SectionUncompressed(t)
		if err != nil {
			bad = append(bad, Mismatch{Section: t, Chunk: -1, Reason: err.Error()})
			continue
		}
		have := Roll(data, c.ChunkSize)
		if len(have) != len(want) {
			bad = append(bad, Mismatch{Section: t, Chunk: -1,
				Reason: fmt.Sprintf("chunk count mismatch have %d want %d", len(have), len(want))})
			continue
		}
		for i := range have {
			if have[i] != want[i] {
				bad = append(bad, Mismatch{Section: t, Chunk: i, Reason: "mismatch"})
			}
		}
	}
	sort.Slice(bad, func(i, j int) bool {
		if bad[i].Section != bad[j].Section {
			return bad[i].Section < bad[j].Section
		}
		return bad[i].Chunk < bad[j].Chunk
	})
	return bad, nil
}
