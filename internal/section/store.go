package section

import (
	"errors"
	"fmt"
	"io"
)

// ReaderAtStore addresses an external byte source (the binary file under
// inspection) by absolute offset through a narrow io.ReaderAt, the same
// shape an HDF5 B-tree node reader uses to pull fixed-size records out of a
// much larger backing file without loading it whole. Writes are rejected
// unless allowWrites is set, independent of the Manager-level Main gate so
// a read-only *os.File still fails cleanly if that gate is ever flipped.
type ReaderAtStore struct {
	r            io.ReaderAt
	size         uint64
	allowWrites  bool
	writeBackBuf map[uint64][]byte // sparse overlay for in-place edits
}

func NewReaderAtStore(r io.ReaderAt, size uint64, allowWrites bool) *ReaderAtStore {
	return &ReaderAtStore{r: r, size: size, allowWrites: allowWrites, writeBackBuf: map[uint64][]byte{}}
}

func (s *ReaderAtStore) Size() (uint64, error) { return s.size, nil }

func (s *ReaderAtStore) ReadAt(byteOffset uint64, n uint64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if byteOffset+n > s.size {
		return nil, fmt.Errorf("read [%d,%d) exceeds section size %d", byteOffset, byteOffset+n, s.size)
	}
	buf := make([]byte, n)
	_, err := s.r.ReadAt(buf, int64(byteOffset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, byteOffset, err)
	}
	// An edit applied earlier in this run overlays the underlying bytes;
	// overlays are applied whole-byte since WriteAt only ever receives
	// byte-aligned data (sub-byte merges already happen in section.go).
	for off, ov := range s.writeBackBuf {
		if off >= byteOffset && off < byteOffset+n {
			copy(buf[off-byteOffset:], ov)
		}
	}
	return buf, nil
}

func (s *ReaderAtStore) WriteAt(byteOffset uint64, data []byte) error {
	if !s.allowWrites {
		return errors.New("section is read-only")
	}
	if byteOffset+uint64(len(data)) > s.size {
		return fmt.Errorf("write [%d,%d) exceeds section size %d", byteOffset, byteOffset+uint64(len(data)), s.size)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.writeBackBuf[byteOffset] = cp
	return nil
}

// MemoryStore is a growable in-memory section (heap, pattern-local scratch,
// user sections opened through Manager.OpenSection).
type MemoryStore struct {
	buf []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Size() (uint64, error) { return uint64(len(s.buf)), nil }

func (s *MemoryStore) ReadAt(byteOffset uint64, n uint64) ([]byte, error) {
	end := byteOffset + n
	if end > uint64(len(s.buf)) {
		return nil, fmt.Errorf("read [%d,%d) exceeds section size %d", byteOffset, end, len(s.buf))
	}
	out := make([]byte, n)
	copy(out, s.buf[byteOffset:end])
	return out, nil
}

func (s *MemoryStore) WriteAt(byteOffset uint64, data []byte) error {
	end := byteOffset + uint64(len(data))
	if end > uint64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[byteOffset:end], data)
	return nil
}

// Bytes returns a copy of the full current contents.
func (s *MemoryStore) Bytes() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// SparseStore is a byte-addressed section backed by a map rather than a
// contiguous buffer, for address spaces too wide to allocate densely.
// PATTERN_LOCAL addresses its scratch space by packing a 32-bit pattern id
// into the upper half of the offset (§3.2), so a MemoryStore sized to the
// highest id ever seen would allocate gigabytes for no reason.
type SparseStore struct {
	bytes map[uint64]byte
}

func NewSparseStore() *SparseStore { return &SparseStore{bytes: map[uint64]byte{}} }

func (s *SparseStore) Size() (uint64, error) {
	var max uint64
	for off := range s.bytes {
		if off+1 > max {
			max = off + 1
		}
	}
	return max, nil
}

func (s *SparseStore) ReadAt(byteOffset uint64, n uint64) ([]byte, error) {
	out := make([]byte, n)
	for i := uint64(0); i < n; i++ {
		out[i] = s.bytes[byteOffset+i]
	}
	return out, nil
}

func (s *SparseStore) WriteAt(byteOffset uint64, data []byte) error {
	for i, b := range data {
		s.bytes[byteOffset+uint64(i)] = b
	}
	return nil
}
