package pattern

import (
	"fmt"

	"github.com/werwolv/patternlang/internal/literal"
)

// readerFunc lets leaf patterns fetch their own backing bytes without
// importing internal/section directly (which would need to import pattern
// back for its literal.PatternHandle bridge); the evaluator supplies the
// closure at construction time, bound to its Manager and the pattern's own
// offset/size/section.
type readerFunc func() ([]byte, error)

// Unsigned is a fixed-width unsigned integer leaf (u8..u128).
type Unsigned struct {
	header
	read readerFunc
}

func NewUnsigned(read readerFunc) *Unsigned { return &Unsigned{read: read} }
func (p *Unsigned) Accept(v Visitor)        { v.VisitUnsigned(p) }
func (p *Unsigned) Bytes() ([]byte, error)  { return callOrErr(p, p.read) }
func (p *Unsigned) Clone() Pattern          { c := *p; return &c }
func (p *Unsigned) Equal(o Pattern) bool {
	op, ok := o.(*Unsigned)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// Signed is a fixed-width signed integer leaf (s8..s128).
type Signed struct {
	header
	read readerFunc
}

func NewSigned(read readerFunc) *Signed { return &Signed{read: read} }
func (p *Signed) Accept(v Visitor)      { v.VisitSigned(p) }
func (p *Signed) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *Signed) Clone() Pattern        { c := *p; return &c }
func (p *Signed) Equal(o Pattern) bool {
	op, ok := o.(*Signed)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// Float is a float or double leaf.
type Float struct {
	header
	read readerFunc
}

func NewFloat(read readerFunc) *Float   { return &Float{read: read} }
func (p *Float) Accept(v Visitor)       { v.VisitFloat(p) }
func (p *Float) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *Float) Clone() Pattern         { c := *p; return &c }
func (p *Float) Equal(o Pattern) bool {
	op, ok := o.(*Float)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// Boolean is a bool leaf (any nonzero byte reads as true, per §3.1).
type Boolean struct {
	header
	read readerFunc
}

func NewBoolean(read readerFunc) *Boolean { return &Boolean{read: read} }
func (p *Boolean) Accept(v Visitor)       { v.VisitBoolean(p) }
func (p *Boolean) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *Boolean) Clone() Pattern         { c := *p; return &c }
func (p *Boolean) Equal(o Pattern) bool {
	op, ok := o.(*Boolean)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// Character is a single char/char16 leaf.
type Character struct {
	header
	read readerFunc
}

func NewCharacter(read readerFunc) *Character { return &Character{read: read} }
func (p *Character) Accept(v Visitor)         { v.VisitCharacter(p) }
func (p *Character) Bytes() ([]byte, error)   { return callOrErr(p, p.read) }
func (p *Character) Clone() Pattern           { c := *p; return &c }
func (p *Character) Equal(o Pattern) bool {
	op, ok := o.(*Character)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// String is a str/wide-string leaf: a run of characters up to either a
// fixed length or a null terminator.
type String struct {
	header
	read readerFunc
	wide bool
}

func NewString(read readerFunc, wide bool) *String { return &String{read: read, wide: wide} }
func (p *String) Accept(v Visitor)                 { v.VisitString(p) }
func (p *String) Bytes() ([]byte, error)           { return callOrErr(p, p.read) }
func (p *String) Wide() bool                       { return p.wide }
func (p *String) Clone() Pattern                   { c := *p; return &c }
func (p *String) Equal(o Pattern) bool {
	op, ok := o.(*String)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// Padding is a skipped region with no meaningful value; it still occupies
// address space and participates in size/offset bookkeeping.
type Padding struct {
	header
}

func NewPadding() *Padding       { return &Padding{} }
func (p *Padding) Accept(v Visitor) { v.VisitPadding(p) }
func (p *Padding) Bytes() ([]byte, error) {
	return make([]byte, p.Size()), nil
}
func (p *Padding) Clone() Pattern { c := *p; return &c }
func (p *Padding) Equal(o Pattern) bool {
	op, ok := o.(*Padding)
	return ok && p.equalCommon(&op.header)
}

// Enum is an integer leaf additionally annotated with the matching named
// constant, found by first-match range lookup over its declared entries
// (spec §4.2's enum range-lookup rule).
type Enum struct {
	header
	read    readerFunc
	entries []EnumEntry
	signed  bool
}

// EnumEntry is one `Name = min...max` (or `Name = value`, min==max) member.
type EnumEntry struct {
	Name     string
	Min, Max literal.Literal
}

func NewEnum(read readerFunc, entries []EnumEntry, signed bool) *Enum {
	return &Enum{read: read, entries: entries, signed: signed}
}
func (p *Enum) Accept(v Visitor)       { v.VisitEnum(p) }
func (p *Enum) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *Enum) Clone() Pattern         { c := *p; return &c }
func (p *Enum) Equal(o Pattern) bool {
	op, ok := o.(*Enum)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value())
}

// EntryName returns the first enum member whose [Min,Max] range contains
// the pattern's current value, or ("", false) if the value matches none
// (an "unknown enum value" in the formatted output).
func (p *Enum) EntryName() (string, bool) {
	v := p.Value()
	for _, e := range p.entries {
		if v.Compare(e.Min) >= 0 && v.Compare(e.Max) <= 0 {
			return e.Name, true
		}
	}
	return "", false
}

func (p *Enum) FormattedValue() string {
	if fn := p.attrs.FormatRead; fn != nil {
		return fn(p.Value())
	}
	name, ok := p.EntryName()
	if !ok {
		name = "???"
	}
	return fmt.Sprintf("%s::%s (0x%s)", p.TypeName(), name, p.hexValue())
}

// hexValue renders the enum's underlying value as uppercase hex, zero-padded
// to size*2 digits (one per nibble of the backing type), matching the
// original's to_hex_string(value, size*2).
func (p *Enum) hexValue() string {
	width := uint(p.Size()) * 8
	if width == 0 {
		width = 8
	}
	v, err := p.Value().ToUnsigned(width)
	if err != nil {
		return p.Value().ToStringValue(false)
	}
	return fmt.Sprintf("%0*X", int(p.Size())*2, v)
}

// Pointer is an address-valued leaf whose pointee is a materialized child
// pattern computed relative to [[pointer_base]] (default: the pointer's own
// containing section, offset 0).
type Pointer struct {
	header
	read    readerFunc
	pointee Pattern
}

func NewPointer(read readerFunc) *Pointer { return &Pointer{read: read} }
func (p *Pointer) Accept(v Visitor)       { v.VisitPointer(p) }
func (p *Pointer) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *Pointer) Clone() Pattern {
	c := *p
	if p.pointee != nil {
		c.pointee = p.pointee.Clone()
	}
	return &c
}
func (p *Pointer) Equal(o Pattern) bool {
	op, ok := o.(*Pointer)
	if !ok || !p.equalCommon(&op.header) || !p.Value().Equal(op.Value()) {
		return false
	}
	if p.pointee == nil || op.pointee == nil {
		return p.pointee == op.pointee
	}
	return p.pointee.Equal(op.pointee)
}

func (p *Pointer) Pointee() Pattern        { return p.pointee }
func (p *Pointer) SetPointee(pp Pattern)   { p.pointee = pp }

// OffsetForSorting/SizeForSorting: a pointer sorts by its pointee, not by
// its own (small, fixed) storage location, matching pattern.hpp's override.
func (p *Pointer) OffsetForSorting() uint64 {
	if p.pointee != nil {
		return p.pointee.OffsetForSorting()
	}
	return p.Offset()
}
func (p *Pointer) SizeForSorting() uint64 {
	if p.pointee != nil {
		return p.pointee.SizeForSorting()
	}
	return p.Size()
}

func callOrErr(p Pattern, read readerFunc) ([]byte, error) {
	if read == nil {
		return nil, errNotReadable(p)
	}
	return read()
}
