package section_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/werwolv/patternlang/internal/section"
)

func newPNGMain(t *testing.T) *section.Manager {
	t.Helper()
	// PNG signature followed by the IHDR chunk length (0x0000000D) used by
	// spec §8's big-endian u32 read scenario.
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	m := section.NewManager()
	m.Open(section.Main, section.NewReaderAtStore(bytes.NewReader(data), uint64(len(data)), false))
	return m
}

func TestReadBitsBigEndianByteAligned(t *testing.T) {
	m := newPNGMain(t)
	c := &section.Cursor{Section: section.Main, Byte: 8}
	v, err := m.ReadBits(section.Main, c, 32, section.BigEndian, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(13)) != 0 {
		t.Fatalf("got %v, want 13", v)
	}
	if c.Byte != 12 || c.Bit != 0 {
		t.Fatalf("cursor after read = %d.%d, want 12.0", c.Byte, c.Bit)
	}
}

func TestReadBitsLittleEndian(t *testing.T) {
	m := section.NewManager()
	m.Open(section.Main, section.NewReaderAtStore(bytes.NewReader([]byte{0x34, 0x12}), 2, false))
	c := &section.Cursor{Section: section.Main}
	v, err := m.ReadBits(section.Main, c, 16, section.LittleEndian, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(0x1234)) != 0 {
		t.Fatalf("got %v, want 0x1234", v)
	}
}

func TestReadBitsSignedSignExtends(t *testing.T) {
	m := section.NewManager()
	m.Open(section.Main, section.NewReaderAtStore(bytes.NewReader([]byte{0xff}), 1, false))
	c := &section.Cursor{Section: section.Main}
	v, err := m.ReadBits(section.Main, c, 8, section.BigEndian, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("got %v, want -1", v)
	}
}

func TestReadBitsSubByteAligned(t *testing.T) {
	// 0b1010_0000 — a 3-bit field of value 5 (0b101) starting at bit 0,
	// the nested-bitfield scenario from spec §8.
	m := section.NewManager()
	m.Open(section.Main, section.NewReaderAtStore(bytes.NewReader([]byte{0b1010_0000}), 1, false))
	c := &section.Cursor{Section: section.Main}
	v, err := m.ReadBits(section.Main, c, 3, section.BigEndian, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("got %v, want 5", v)
	}
	if c.Bit != 3 {
		t.Fatalf("cursor bit = %d, want 3", c.Bit)
	}
}

func TestWriteToMainRejectedWithoutGate(t *testing.T) {
	m := newPNGMain(t)
	c := &section.Cursor{Section: section.Main}
	if err := m.WriteBits(section.Main, c, 8, section.BigEndian, big.NewInt(1)); err == nil {
		t.Fatalf("expected write to main to be rejected")
	}
}

func TestMemoryStoreGrowsOnWrite(t *testing.T) {
	m := section.NewManager()
	m.Open(section.Heap, section.NewMemoryStore())
	c := &section.Cursor{Section: section.Heap}
	if err := m.WriteBits(section.Heap, c, 16, section.BigEndian, big.NewInt(0xBEEF)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := m.ReadBytes(section.Heap, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0xBE, 0xEF}) {
		t.Fatalf("got %x, want beef", got)
	}
}

func TestReservedSectionIDs(t *testing.T) {
	if !section.Main.Reserved() || !section.Heap.Reserved() || !section.PatternLocal.Reserved() {
		t.Fatalf("expected Main, Heap, and PatternLocal to report Reserved() == true")
	}
	if section.ID(1).Reserved() {
		t.Fatalf("expected a user section id to report Reserved() == false")
	}
}
