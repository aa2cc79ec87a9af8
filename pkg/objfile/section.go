// Package objfile builds the relocatable ELF64 object file from a finished
// assembly unit: the streaming section byte-builders and the two-phase
// ELF layout/emit writer.
package objfile

import (
	"encoding/binary"
	"strings"
)

// ByteSection is a growable little-endian byte builder, used for .data,
// .strtab and .shstrtab — every section whose bytes live on disk.
type ByteSection struct {
	buf []byte
}

// NewByteSection returns an empty builder.
func NewByteSection() *ByteSection { return &ByteSection{} }

// Append writes raw bytes verbatim.
func (s *ByteSection) Append(b []byte) { s.buf = append(s.buf, b...) }

// Write implements io.Writer so a ByteSection can be the target of
// encoding/binary.Write when serializing fixed-size structs.
func (s *ByteSection) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *ByteSection) AppendUint8(v uint8) { s.buf = append(s.buf, v) }

func (s *ByteSection) AppendUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *ByteSection) AppendUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *ByteSection) AppendUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// AppendString writes a NUL-terminated string and returns the offset its
// first byte landed at within this section.
func (s *ByteSection) AppendString(str string) uint32 {
	offset := uint32(len(s.buf))
	s.buf = append(s.buf, str...)
	s.buf = append(s.buf, 0)
	return offset
}

// AlignTo pads with zero bytes so the current length becomes a multiple of
// n, a power of two.
func (s *ByteSection) AlignTo(n int) {
	for len(s.buf)%n != 0 {
		s.buf = append(s.buf, 0)
	}
}

func (s *ByteSection) Len() int      { return len(s.buf) }
func (s *ByteSection) Bytes() []byte { return s.buf }

// FindOffset linearly scans for str as a NUL-terminated run and returns the
// offset it starts at. Strings are never de-duplicated on insert — this is
// purely a post-hoc lookup, matching the string-table contract.
func (s *ByteSection) FindOffset(str string) (uint32, bool) {
	needle := str + "\x00"
	data := string(s.buf)
	start := 0
	for {
		idx := strings.Index(data[start:], needle)
		if idx < 0 {
			return 0, false
		}
		abs := start + idx
		if abs == 0 || data[abs-1] == 0 {
			return uint32(abs), true
		}
		start = abs + 1
	}
}

// BssSection tracks .bss's logical size without holding any bytes: it's
// SHT_NOBITS, so it contributes zero bytes to the file itself.
type BssSection struct {
	size uint64
}

// Reserve grows .bss's logical size by n bytes.
func (b *BssSection) Reserve(n uint64) { b.size += n }

// AlignTo pads the logical size counter up to a multiple of n.
func (b *BssSection) AlignTo(n uint64) {
	if rem := b.size % n; rem != 0 {
		b.size += n - rem
	}
}

func (b *BssSection) Size() uint64 { return b.size }
