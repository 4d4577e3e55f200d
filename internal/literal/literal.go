// Package literal implements the tagged value type described in spec §3.1:
// the evaluator's runtime value, distinct from a lexer token. Grounded on
// the teacher's literal-node family in internal/ast/ast.go (one variant per
// primitive kind) and its use of math/big for values wider than 64 bits —
// the pattern language needs signed/unsigned 128-bit integers, which Go has
// no native type for, so this package follows the teacher's own choice of
// math/big rather than reaching for a third-party bignum package (none
// appears anywhere in the retrieval pack).
package literal

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Kind tags the variant held by a Literal.
type Kind uint8

const (
	KindU128 Kind = iota
	KindI128
	KindDouble
	KindBool
	KindChar
	KindString
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindU128:
		return "unsigned"
	case KindI128:
		return "signed"
	case KindDouble:
		return "floating point"
	case KindBool:
		return "boolean"
	case KindChar:
		return "character"
	case KindString:
		return "string"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// PatternHandle is the minimal surface literal.Literal needs from a pattern
// so this package doesn't import internal/pattern (which itself needs to
// produce Literal values -- the dependency would cycle). internal/pattern
// implements this interface on its Pattern type.
type PatternHandle interface {
	Value() Literal
	TypeName() string
	DisplayName() string
}

// Literal is the tagged value every expression in the pattern language
// evaluates to (spec §3.1).
type Literal struct {
	kind    Kind
	intVal  *big.Int // KindU128 / KindI128
	dblVal  float64  // KindDouble
	boolVal bool     // KindBool
	charVal rune     // KindChar
	strVal  string   // KindString
	ptrnVal PatternHandle
}

func U128(v *big.Int) Literal { return Literal{kind: KindU128, intVal: new(big.Int).Set(v)} }
func I128(v *big.Int) Literal { return Literal{kind: KindI128, intVal: new(big.Int).Set(v)} }
func U64(v uint64) Literal    { return U128(new(big.Int).SetUint64(v)) }
func I64(v int64) Literal     { return I128(big.NewInt(v)) }
func Double(v float64) Literal { return Literal{kind: KindDouble, dblVal: v} }
func Bool(v bool) Literal      { return Literal{kind: KindBool, boolVal: v} }
func Char(v rune) Literal      { return Literal{kind: KindChar, charVal: v} }
func String(v string) Literal  { return Literal{kind: KindString, strVal: v} }
func Pattern(p PatternHandle) Literal { return Literal{kind: KindPattern, ptrnVal: p} }

func (l Literal) Kind() Kind { return l.kind }

func (l Literal) IsInteger() bool { return l.kind == KindU128 || l.kind == KindI128 }
func (l Literal) IsNumeric() bool { return l.IsInteger() || l.kind == KindDouble }

// Int returns the integer payload; valid only when IsInteger() is true.
func (l Literal) Int() *big.Int {
	if l.intVal == nil {
		return new(big.Int)
	}
	return l.intVal
}

func (l Literal) Double() float64 { return l.dblVal }
func (l Literal) Bool() bool      { return l.boolVal }
func (l Literal) Char() rune      { return l.charVal }
func (l Literal) Str() string     { return l.strVal }
func (l Literal) PatternHandle() PatternHandle { return l.ptrnVal }

// --- §3.1 type inference -----------------------------------------------

// ValueType is the synthetic type a Literal infers to: an integer width
// ("u32", "s8", ...), "double", "float", "char", "bool", "string", or the
// pattern's own type name for KindPattern.
func (l Literal) ValueType() string {
	switch l.kind {
	case KindU128:
		return fmt.Sprintf("u%d", minimalUnsignedWidth(l.intVal))
	case KindI128:
		return fmt.Sprintf("s%d", minimalSignedWidth(l.intVal))
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindPattern:
		if l.ptrnVal != nil {
			return l.ptrnVal.TypeName()
		}
		return "void"
	default:
		return "void"
	}
}

func minimalUnsignedWidth(v *big.Int) int {
	if v == nil || v.Sign() == 0 {
		return 8
	}
	bits := v.BitLen()
	for _, w := range []int{8, 16, 32, 64, 128} {
		if bits <= w {
			return w
		}
	}
	return 128
}

func minimalSignedWidth(v *big.Int) int {
	if v == nil {
		return 8
	}
	bits := v.BitLen() + 1
	for _, w := range []int{8, 16, 32, 64, 128} {
		if bits <= w {
			return w
		}
	}
	return 128
}

// --- §3.1 coercion --------------------------------------------------------

// ToBool implements "any non-pattern/non-string value converts to boolean
// as value != 0".
func (l Literal) ToBool() bool {
	switch l.kind {
	case KindBool:
		return l.boolVal
	case KindU128, KindI128:
		return l.intVal != nil && l.intVal.Sign() != 0
	case KindDouble:
		return l.dblVal != 0
	case KindChar:
		return l.charVal != 0
	case KindString:
		return l.strVal != ""
	case KindPattern:
		return l.ptrnVal != nil
	default:
		return false
	}
}

// ToUnsigned coerces a numeric/char/bool literal to an unsigned 128-bit
// integer via mask-after-sign-extension, per §3.1's "numeric-to-numeric via
// sign-extension/mask/truncation" rule.
func (l Literal) ToUnsigned(bits uint) (*big.Int, error) {
	var v *big.Int
	switch l.kind {
	case KindU128, KindI128:
		v = new(big.Int).Set(l.intVal)
	case KindDouble:
		v = big.NewInt(int64(l.dblVal))
	case KindBool:
		if l.boolVal {
			v = big.NewInt(1)
		} else {
			v = big.NewInt(0)
		}
	case KindChar:
		v = big.NewInt(int64(l.charVal))
	default:
		return nil, fmt.Errorf("cannot convert %s to an integer", l.kind)
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	return new(big.Int).And(v, mask), nil
}

// ToSigned coerces to a signed integer of the given bit width, re-applying
// two's-complement sign extension after truncation.
func (l Literal) ToSigned(bits uint) (*big.Int, error) {
	u, err := l.ToUnsigned(bits)
	if err != nil {
		return nil, err
	}
	signBit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if u.Cmp(signBit) >= 0 {
		full := new(big.Int).Lsh(big.NewInt(1), bits)
		return new(big.Int).Sub(u, full), nil
	}
	return u, nil
}

// ToDouble coerces a numeric literal to float64.
func (l Literal) ToDouble() (float64, error) {
	switch l.kind {
	case KindDouble:
		return l.dblVal, nil
	case KindU128, KindI128:
		f := new(big.Float).SetInt(l.intVal)
		v, _ := f.Float64()
		return v, nil
	case KindBool:
		if l.boolVal {
			return 1, nil
		}
		return 0, nil
	case KindChar:
		return float64(l.charVal), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to a floating point value", l.kind)
	}
}

// ToStringValue renders the literal for display. quoteStrings controls
// whether a KindString value is wrapped in quotes (mirrors the original's
// toString(bool) overload used when formatting inside composite values).
func (l Literal) ToStringValue(quoteStrings bool) string {
	switch l.kind {
	case KindString:
		if quoteStrings {
			return fmt.Sprintf("%q", l.strVal)
		}
		return l.strVal
	case KindChar:
		return fmt.Sprintf("'%c'", l.charVal)
	case KindBool:
		if l.boolVal {
			return "true"
		}
		return "false"
	case KindDouble:
		return fmt.Sprintf("%g", l.dblVal)
	case KindU128:
		return l.intVal.String()
	case KindI128:
		return l.intVal.String()
	case KindPattern:
		if l.ptrnVal != nil {
			return l.ptrnVal.DisplayName()
		}
		return "null"
	default:
		return ""
	}
}

// ToBytes returns the minimal little-endian byte encoding of a numeric
// literal, used by Pattern.GetBytesOf (see internal/pattern) before any
// endian-driven reversal.
func (l Literal) ToBytes() []byte {
	switch l.kind {
	case KindU128, KindI128:
		return toMinimalBytesLE(l.intVal)
	case KindBool:
		if l.boolVal {
			return []byte{1}
		}
		return []byte{0}
	case KindChar:
		return []byte(string(l.charVal))
	case KindString:
		return []byte(l.strVal)
	case KindDouble:
		return doubleToBytesLE(l.dblVal)
	default:
		return nil
	}
}

func doubleToBytesLE(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}

func toMinimalBytesLE(v *big.Int) []byte {
	if v == nil {
		return []byte{0}
	}
	abs := new(big.Int).Abs(v)
	b := abs.Bytes() // big-endian
	// reverse to little-endian
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	if len(out) == 0 {
		out = []byte{0}
	}
	return out
}

// --- §3.1 ordering --------------------------------------------------------

// Compare implements the ordering rules of §3.1: same-type values compare
// naturally; cross-type integer/float values compare by numeric value;
// a string compared against a non-string is unordered, which this
// implementation resolves (per the Open Question in spec §9 / DESIGN.md)
// by always reporting the string operand as "less" -- tests must not rely
// on this, as the spec explicitly calls the rule implementation-defined.
func (l Literal) Compare(other Literal) int {
	if l.kind == KindString || other.kind == KindString {
		if l.kind == other.kind {
			return strings.Compare(l.strVal, other.strVal)
		}
		if l.kind == KindString {
			return -1
		}
		return 1
	}

	if l.IsNumeric() && other.IsNumeric() {
		if l.kind == KindDouble || other.kind == KindDouble {
			a, _ := l.ToDouble()
			b, _ := other.ToDouble()
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
		return l.Int().Cmp(other.Int())
	}

	if l.kind == KindBool && other.kind == KindBool {
		if l.boolVal == other.boolVal {
			return 0
		}
		if !l.boolVal {
			return -1
		}
		return 1
	}

	if l.kind == KindChar && other.kind == KindChar {
		if l.charVal == other.charVal {
			return 0
		}
		if l.charVal < other.charVal {
			return -1
		}
		return 1
	}

	return -1
}

func (l Literal) Equal(other Literal) bool { return l.Compare(other) == 0 }
