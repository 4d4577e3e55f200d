package runtime_test

import (
	"bytes"
	"testing"

	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/runtime"
)

// pngHeader is the fixture spec §8 example 1 places a little-endian u32
// over: PNG signature followed by the IHDR chunk length.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func TestExecuteStringPlacesOutVariable(t *testing.T) {
	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(pngHeader)), bytes.NewReader(pngHeader), nil)

	ok := rt.ExecuteString("out u32 x @ 0x0;", nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}

	out := rt.GetOutVariables()
	x, found := out["x"]
	if !found {
		t.Fatalf("out variable %q not found in %v", "x", out)
	}
	u, err := x.ToUnsigned(32)
	if err != nil {
		t.Fatalf("ToUnsigned: %v", err)
	}
	if u.Uint64() != 0x474E5089 {
		t.Fatalf("x = 0x%x, want 0x474e5089", u.Uint64())
	}
}

func TestExecuteStringNamespacedBuiltinCall(t *testing.T) {
	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(pngHeader)), bytes.NewReader(pngHeader), nil)

	// Exercises the `::`-chained builtin call grammar (std::mem::...) end
	// to end: lexer SCOPE token, parser identifier folding, and evaluator
	// dispatch through the registered std::mem namespace.
	ok := rt.ExecuteString("out u32 x = std::mem::read_unsigned(0, 32);", nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}
	u, err := rt.GetOutVariables()["x"].ToUnsigned(32)
	if err != nil {
		t.Fatalf("ToUnsigned: %v", err)
	}
	if u.Uint64() != 0x474E5089 {
		t.Fatalf("x = 0x%x, want 0x474e5089", u.Uint64())
	}
}

func TestSetDataSourceBaseAddressTranslation(t *testing.T) {
	rt := runtime.New()
	// Program addresses offset 0x10 as if the data source started there;
	// the backing reader itself only has 12 bytes starting at its own 0.
	rt.SetDataSource(0x10, uint64(len(pngHeader)), bytes.NewReader(pngHeader), nil)

	ok := rt.ExecuteString("out u32 x @ 0x10;", nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}
	u, err := rt.GetOutVariables()["x"].ToUnsigned(32)
	if err != nil {
		t.Fatalf("ToUnsigned: %v", err)
	}
	if u.Uint64() != 0x474E5089 {
		t.Fatalf("x = 0x%x, want 0x474e5089", u.Uint64())
	}
}

func TestExecuteFileMissingSourceReportsError(t *testing.T) {
	rt := runtime.New()
	if rt.ExecuteFile("/nonexistent/path.pat", nil, nil) {
		t.Fatalf("expected ExecuteFile to fail for a missing file")
	}
	if rt.GetError() == nil {
		t.Fatalf("expected GetError() to be non-nil after a failed ExecuteFile")
	}
}

// TestExecuteStringBigEndianEnumFormatting is §8 scenario 2: a big-endian
// enum read over pngHeader's trailing IHDR length bytes (0x08..0x0C is
// already 00 00 00 0D), checking both the looked-up value and the
// canonical "Type::Name (0xHEX)" formatting.
func TestExecuteStringBigEndianEnumFormatting(t *testing.T) {
	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(pngHeader)), bytes.NewReader(pngHeader), nil)

	src := `
		enum E : u32 {
			A,
			B = 0x0C,
			C,
			D,
			E = 0xAA ... 0xBB
		};

		be E v @ 0x8;
	`
	ok := rt.ExecuteString(src, nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}

	patterns := rt.GetPatterns()
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	enum, ok := patterns[0].(*pattern.Enum)
	if !ok {
		t.Fatalf("expected *pattern.Enum, got %T", patterns[0])
	}
	u, err := enum.Value().ToUnsigned(32)
	if err != nil {
		t.Fatalf("ToUnsigned: %v", err)
	}
	if u.Uint64() != 0x0D {
		t.Fatalf("v.value() = 0x%x, want 0xd", u.Uint64())
	}
	if got, want := enum.FormattedValue(), "E::C (0x0000000D)"; got != want {
		t.Fatalf("v.formatted_value() = %q, want %q", got, want)
	}
}

// testBitfieldFixture is §8 scenario 3's fixture bytes at 0x25..0x29,
// hand-derived from the original's TestPatternBitfields field values: a
// 40-bit big-endian stream of a(2) b(3) c.nestedA(4) c.nestedB(4) d(4)
// e(4) f[0].nestedA(4) f[0].nestedB(4) f[1].nestedA(4) f[1].nestedB(4),
// then 3 padding bits.
var testBitfieldFixture = []byte{0x49, 0x44, 0x41, 0x54, 0x78}

// TestExecuteStringNestedBigEndianBitfield is §8 scenario 3: a bitfield
// container nesting another bitfield type both as a plain member and as an
// array member, verified end to end through the source's own std::assert
// calls (the original's TestPatternBitfields assertions).
func TestExecuteStringNestedBigEndianBitfield(t *testing.T) {
	data := make([]byte, 0x2A)
	copy(data[0x25:], testBitfieldFixture)

	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(data)), bytes.NewReader(data), nil)

	src := `
		bitfield NestedBitfield {
			nestedA : 4;
			nestedB : 4;
		};

		bitfield TestBitfield {
			unsigned a : 2;
			b : 3;
			NestedBitfield c;
			d : 4;
			signed e : 4;
			NestedBitfield f[c.nestedA];
		};

		be TestBitfield testBitfield @ 0x25;

		std::assert(testBitfield.a == 0x01, "Field A invalid");
		std::assert(testBitfield.b == 0x01, "Field B invalid");
		std::assert(testBitfield.c.nestedA == 0x02, "Nested field A invalid");
		std::assert(testBitfield.c.nestedB == 0x08, "Nested field B invalid");
		std::assert(testBitfield.d == 0x08, "Field D invalid");
		std::assert(testBitfield.e == -8, "Field E invalid");
		std::assert(testBitfield.f[0].nestedA == 0x02, "Nested array[0] field A invalid");
		std::assert(testBitfield.f[0].nestedB == 0x0A, "Nested array[0] field B invalid");
		std::assert(testBitfield.f[1].nestedA == 0x08, "Nested array[1] field A invalid");
		std::assert(testBitfield.f[1].nestedB == 0x0F, "Nested array[1] field B invalid");
	`
	ok := rt.ExecuteString(src, nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v, console: %v", rt.GetError(), rt.GetConsoleLog())
	}
}

// TestExecuteStringPointerBaseReplacesRawValue is §8 scenario 4: a
// pointer's [[pointer_base("fn")]] attribute replaces the raw read
// address outright (§4.4's attribute table), so the pointee lands at
// Rel's constant 0x1D regardless of the raw signed-8 value read from the
// data source.
func TestExecuteStringPointerBaseReplacesRawValue(t *testing.T) {
	data := make([]byte, 0x30)
	data[0x1D] = 0xE6 // -26 as a signed 8-bit raw pointer value

	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(data)), bytes.NewReader(data), nil)

	src := `
		fn Rel(raw) { return 0x1D; };
		u32 *p : s8 @ 0x1D [[pointer_base("Rel")]];
	`
	ok := rt.ExecuteString(src, nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}

	patterns := rt.GetPatterns()
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	ptr, ok := patterns[0].(*pattern.Pointer)
	if !ok {
		t.Fatalf("expected *pattern.Pointer, got %T", patterns[0])
	}
	pointee := ptr.Pointee()
	if pointee == nil {
		t.Fatalf("expected a materialized pointee")
	}
	if pointee.Offset() != 0x1D {
		t.Fatalf("pointee offset = 0x%x, want 0x1d", pointee.Offset())
	}
}

// TestExecuteStringFixedSizeAdvancesCursor is §8 scenario 5: `[[fixed_size]]`
// pads a struct's reported size and leaves the read cursor at
// offset+fixed_size, so an immediately following unplaced sibling starts
// there rather than overlapping the padding.
func TestExecuteStringFixedSizeAdvancesCursor(t *testing.T) {
	data := make([]byte, 0x60)
	data[0x54] = 0x7A

	rt := runtime.New()
	rt.SetDataSource(0, uint64(len(data)), bytes.NewReader(data), nil)

	src := `
		struct S {
			u8 x;
		} [[fixed_size(4)]];

		S s @ 0x50;
		u8 y;
	`
	ok := rt.ExecuteString(src, nil, nil, false)
	if !ok {
		t.Fatalf("ExecuteString failed: %v", rt.GetError())
	}

	patterns := rt.GetPatterns()
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	s := patterns[0]
	if s.Size() != 4 {
		t.Fatalf("sizeof(s) = %d, want 4", s.Size())
	}
	y := patterns[1]
	if y.Offset() != 0x54 {
		t.Fatalf("y.offset = 0x%x, want 0x54", y.Offset())
	}
	u, err := y.Value().ToUnsigned(8)
	if err != nil {
		t.Fatalf("ToUnsigned: %v", err)
	}
	if u.Uint64() != 0x7A {
		t.Fatalf("y.value() = 0x%x, want 0x7a", u.Uint64())
	}
}

// TestExecuteStringFailingAssertSurfacesMessage is §8 scenario 6: a failing
// std::assert aborts evaluation with a fatal error and mirrors its literal
// message into the console log.
func TestExecuteStringFailingAssertSurfacesMessage(t *testing.T) {
	rt := runtime.New()
	rt.SetDataSource(0, 0, bytes.NewReader(nil), nil)

	ok := rt.ExecuteString(`std::assert(false, "Error");`, nil, nil, true)
	if ok {
		t.Fatalf("expected ExecuteString to fail")
	}
	if rt.GetError() == nil {
		t.Fatalf("expected GetError() to be non-nil")
	}

	found := false
	for _, entry := range rt.GetConsoleLog() {
		if entry.Message == "Error" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected console log to contain the literal message %q, got %v", "Error", rt.GetConsoleLog())
	}
}
