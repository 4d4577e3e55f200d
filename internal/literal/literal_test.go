package literal_test

import (
	"math/big"
	"testing"

	"github.com/werwolv/patternlang/internal/literal"
)

func TestValueType(t *testing.T) {
	testCases := []struct {
		name string
		lit  literal.Literal
		want string
	}{
		{"u8", literal.U64(0xff), "u8"},
		{"u16", literal.U64(0x1234), "u16"},
		{"u32", literal.U64(0xdeadbeef), "u32"},
		{"s8_negative", literal.I64(-1), "s8"},
		{"s16_negative", literal.I64(-1000), "s16"},
		{"double", literal.Double(1.5), "double"},
		{"bool", literal.Bool(true), "bool"},
		{"char", literal.Char('A'), "char"},
		{"string", literal.String("hi"), "string"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lit.ValueType(); got != tc.want {
				t.Fatalf("ValueType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToUnsignedMasksToWidth(t *testing.T) {
	v := literal.I64(-1)
	got, err := v.ToUnsigned(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(0xff)) != 0 {
		t.Fatalf("ToUnsigned(8) = %v, want 255", got)
	}
}

func TestToSignedRoundTrip(t *testing.T) {
	v := literal.U64(0xff)
	got, err := v.ToSigned(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("ToSigned(8) of 0xff = %v, want -1", got)
	}
}

func TestToBoolNonZero(t *testing.T) {
	testCases := []struct {
		name string
		lit  literal.Literal
		want bool
	}{
		{"zero_int", literal.U64(0), false},
		{"nonzero_int", literal.U64(1), true},
		{"zero_double", literal.Double(0), false},
		{"nonzero_double", literal.Double(0.5), true},
		{"empty_string", literal.String(""), false},
		{"nonempty_string", literal.String("x"), true},
		{"nul_char", literal.Char(0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lit.ToBool(); got != tc.want {
				t.Fatalf("ToBool() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompareCrossTypeNumeric(t *testing.T) {
	a := literal.U64(5)
	b := literal.Double(5.5)
	if a.Compare(b) >= 0 {
		t.Fatalf("expected 5 < 5.5")
	}
	if b.Compare(a) <= 0 {
		t.Fatalf("expected 5.5 > 5")
	}
}

func TestCompareSameTypeIntegers(t *testing.T) {
	a := literal.I64(-10)
	b := literal.I64(10)
	if a.Compare(b) >= 0 {
		t.Fatalf("expected -10 < 10")
	}
	if !a.Equal(literal.I64(-10)) {
		t.Fatalf("expected -10 == -10")
	}
}

func TestToBytesLittleEndian(t *testing.T) {
	v := literal.U64(0x1234)
	got := v.ToBytes()
	want := []byte{0x34, 0x12}
	if len(got) != len(want) {
		t.Fatalf("ToBytes() = %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToBytes() = %x, want %x", got, want)
		}
	}
}
