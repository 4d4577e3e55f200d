package pattern_test

import (
	"testing"

	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
)

func fixedReader(b []byte) func() ([]byte, error) {
	return func() ([]byte, error) { return b, nil }
}

func TestEnumEntryNameFirstMatch(t *testing.T) {
	entries := []pattern.EnumEntry{
		{Name: "Red", Min: literal.U64(0), Max: literal.U64(0)},
		{Name: "Green", Min: literal.U64(1), Max: literal.U64(1)},
		{Name: "AnyLow", Min: literal.U64(0), Max: literal.U64(10)},
	}
	e := pattern.NewEnum(fixedReader([]byte{0}), entries, false)
	e.SetValue(literal.U64(1))
	name, ok := e.EntryName()
	if !ok || name != "Green" {
		t.Fatalf("EntryName() = %q, %v; want Green, true (first range match)", name, ok)
	}
}

func TestEnumUnknownValue(t *testing.T) {
	entries := []pattern.EnumEntry{{Name: "Red", Min: literal.U64(0), Max: literal.U64(0)}}
	e := pattern.NewEnum(fixedReader([]byte{0}), entries, false)
	e.SetTypeName("Color")
	e.SetSize(1)
	e.SetValue(literal.U64(99))
	got := e.FormattedValue()
	want := "Color::??? (0x63)"
	if got != want {
		t.Fatalf("FormattedValue() = %q, want %q", got, want)
	}
}

func TestEnumFormattedValueIncludesHex(t *testing.T) {
	entries := []pattern.EnumEntry{
		{Name: "A", Min: literal.U64(0), Max: literal.U64(0)},
		{Name: "C", Min: literal.U64(0x0D), Max: literal.U64(0x0D)},
	}
	e := pattern.NewEnum(fixedReader([]byte{0, 0, 0, 0x0D}), entries, false)
	e.SetTypeName("E")
	e.SetSize(4)
	e.SetValue(literal.U64(0x0D))
	got := e.FormattedValue()
	want := "E::C (0x0000000D)"
	if got != want {
		t.Fatalf("FormattedValue() = %q, want %q", got, want)
	}
}

func TestStaticArrayCloneIsIndependent(t *testing.T) {
	a := pattern.NewUnsigned(fixedReader([]byte{1}))
	a.SetValue(literal.U64(1))
	arr := pattern.NewStaticArray([]pattern.Pattern{a}, "u8")
	arr.ApplyFixedSize(3)

	if arr.EntryCount() != 3 {
		t.Fatalf("EntryCount() = %d, want 3", arr.EntryCount())
	}
	clone := arr.Entry(1)
	clone.SetValue(literal.U64(42))
	if arr.Entry(0).Value().Equal(literal.U64(42)) {
		t.Fatalf("mutating entry 1 affected entry 0 — clones aren't independent")
	}
}

func TestPointerSortsByPointee(t *testing.T) {
	pointee := pattern.NewUnsigned(fixedReader([]byte{0}))
	pointee.SetOffset(100)
	pointee.SetSize(4)

	ptr := pattern.NewPointer(fixedReader([]byte{0, 0, 0, 0}))
	ptr.SetOffset(0)
	ptr.SetSize(4)
	ptr.SetPointee(pointee)

	if ptr.OffsetForSorting() != 100 {
		t.Fatalf("OffsetForSorting() = %d, want 100 (the pointee's offset)", ptr.OffsetForSorting())
	}
}

func TestStructEqualsComparesMembers(t *testing.T) {
	mkMember := func(v uint64) pattern.Pattern {
		u := pattern.NewUnsigned(fixedReader(nil))
		u.SetValue(literal.U64(v))
		u.SetTypeName("u32")
		return u
	}

	a := pattern.NewStruct([]pattern.Pattern{mkMember(1), mkMember(2)})
	b := pattern.NewStruct([]pattern.Pattern{mkMember(1), mkMember(2)})
	c := pattern.NewStruct([]pattern.Pattern{mkMember(1), mkMember(3)})

	if !a.Equal(b) {
		t.Fatalf("expected structurally identical structs to be Equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected structs differing in a member to not be Equal")
	}
}

func TestPaddingReadsZeroedSpan(t *testing.T) {
	p := pattern.NewPadding()
	p.SetSize(4)
	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 4 {
		t.Fatalf("Bytes() length = %d, want 4", len(b))
	}
}
