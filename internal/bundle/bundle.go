// Package bundle stores generated artifacts in one sectioned file: a header,
// a table of contents and 4096-aligned, optionally compressed sections. A
// JSON manifest section records what was exported and an xxh3 checksum
// index over every artifact section.
package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Ext is the conventional bundle file extension.
const Ext = ".svmb"

var magic = [8]byte{'S', 'V', 'M', 'G', 'E', 'N', 0, 0}

// Section type ids.
const (
	TypeManifest = 1
	TypeEMX      = 2
	TypeMFunc    = 3
	TypeCSource  = 4
)

// ErrNotBundle is returned by Open for files without the bundle magic.
var ErrNotBundle = errors.New("bundle: not a bundle file")

// SectionName names a section type for listings.
func SectionName(t uint32) string {
	switch t {
	case TypeManifest:
		return "manifest"
	case TypeEMX:
		return "emx"
	case TypeMFunc:
		return "mfunc"
	case TypeCSource:
		return "csource"
	default:
		return fmt.Sprintf("type%d", t)
	}
}

type section struct {
	TypeID uint32
	Data   []byte
	Flags  uint32
}

// Writer collects sections in memory until Write.
type Writer struct {
	sections []section
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// AddSection queues data as a section of type t, compressed per flags.
func (w *Writer) AddSection(t uint32, data []byte, flags uint32) {
	w.sections = append(w.sections, section{TypeID: t, Data: data, Flags: flags})
}

func alignUp(x, a int64) int64 {
	r := x % a
	if r == 0 {
		return x
	}
	return x + (a - r)
}

type header struct{ Ver, Num, Res uint32 }

// Entry is one table-of-contents record. Size is the stored (compressed) size.
type Entry struct {
	TypeID uint32
	Offset uint64
	Size   uint64
	Flags  uint32
}

const tocEntrySize = 24

// Write creates path with every queued section. A failed write removes it.
func (w *Writer) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.writeTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (w *Writer) writeTo(f io.WriteSeeker) error {
	if len(w.sections) == 0 {
		return errors.New("bundle: no sections")
	}
	payloads := make([][]byte, len(w.sections))
	for i, s := range w.sections {
		data, err := encode(s.Flags, s.Data)
		if err != nil {
			return fmt.Errorf("bundle: compress %s: %w", SectionName(s.TypeID), err)
		}
		payloads[i] = data
	}
	if _, err := f.Write(magic[:]); err != nil {
		return err
	}
	hdr := header{Ver: 1, Num: uint32(len(w.sections))}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	recs := make([]Entry, len(w.sections))
	base := int64(len(magic) + 12 + tocEntrySize*len(w.sections))
	offset := alignUp(base, 4096)
	for i, s := range w.sections {
		recs[i] = Entry{TypeID: s.TypeID, Offset: uint64(offset), Size: uint64(len(payloads[i])), Flags: s.Flags}
		offset = alignUp(offset+int64(len(payloads[i])), 4096)
	}
	for i := range recs {
		if err := binary.Write(f, binary.LittleEndian, &recs[i]); err != nil {
			return err
		}
	}
	if pad := int64(recs[0].Offset) - base; pad > 0 {
		if _, err := f.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	for i := range w.sections {
		if _, err := f.Seek(int64(recs[i].Offset), io.SeekStart); err != nil {
			return err
		}
		if _, err := f.Write(payloads[i]); err != nil {
			return err
		}
	}
	return nil
}

// Reader reads sections of an open bundle file.
type Reader struct {
	f   *os.File
	TOC []Entry
}

// Open reads the header and table of contents of the bundle at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotBundle, err)
	}
	if !bytes.Equal(head, magic[:]) {
		f.Close()
		return nil, ErrNotBundle
	}
	var hdr header
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, err
	}
	if hdr.Num > 1<<16 {
		f.Close()
		return nil, fmt.Errorf("%w: %d sections", ErrNotBundle, hdr.Num)
	}
	toc := make([]Entry, hdr.Num)
	for i := range toc {
		if err := binary.Read(f, binary.LittleEndian, &toc[i]); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &Reader{f: f, TOC: toc}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// Has reports whether a section of type t is present.
func (r *Reader) Has(t uint32) bool {
	for _, e := range r.TOC {
		if e.TypeID == t {
			return true
		}
	}
	return false
}

// Section returns the stored (possibly compressed) payload.
func (r *Reader) Section(t uint32) ([]byte, error) {
	for _, e := range r.TOC {
		if e.TypeID != t {
			continue
		}
		buf := make([]byte, e.Size)
		if _, err := r.f.ReadAt(buf, int64(e.Offset)); err != nil {
			return nil, err
		}
		return buf, nil
	}
	return nil, fmt.Errorf("bundle: section %s not found", SectionName(t))
}

// SectionUncompressed returns the payload decompressed according to its flags.
func (r *Reader) SectionUncompressed(t uint32) ([]byte, error) {
	for _, e := range r.TOC {
		if e.TypeID != t {
			continue
		}
		buf, err := r.Section(t)
		if err != nil {
			return nil, err
		}
		out, err := decode(e.Flags, buf)
		if err != nil {
			return nil, fmt.Errorf("bundle: decompress %s: %w", SectionName(t), err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("bundle: section %s not found", SectionName(t))
}
