package pattern

import "github.com/werwolv/patternlang/internal/literal"

// BitfieldField is one named member of a Bitfield container: a run of
// bits at a known bit offset within the container, not independently
// byte-addressable.
type BitfieldField struct {
	header
	read          readerFunc
	bitOffset     uint64 // from the start of the containing Bitfield
	bitSize       uint64
	signed        bool
	padding       bool // an unnamed "padding" field inside the bitfield
}

func NewBitfieldField(read readerFunc, bitOffset, bitSize uint64, signed, padding bool) *BitfieldField {
	return &BitfieldField{read: read, bitOffset: bitOffset, bitSize: bitSize, signed: signed, padding: padding}
}
func (p *BitfieldField) Accept(v Visitor)       { v.VisitBitfieldField(p) }
func (p *BitfieldField) Bytes() ([]byte, error) { return callOrErr(p, p.read) }
func (p *BitfieldField) Clone() Pattern         { c := *p; return &c }
func (p *BitfieldField) Equal(o Pattern) bool {
	op, ok := o.(*BitfieldField)
	return ok && p.equalCommon(&op.header) && p.Value().Equal(op.Value()) &&
		p.bitOffset == op.bitOffset && p.bitSize == op.bitSize
}

func (p *BitfieldField) BitOffset() uint64 { return p.bitOffset }
func (p *BitfieldField) BitSize() uint64   { return p.bitSize }
func (p *BitfieldField) Signed() bool      { return p.signed }
func (p *BitfieldField) IsPadding() bool   { return p.padding }

// Bitfield is the container pattern for a run of members: either a plain
// BitfieldField leaf, or another Bitfield nested by a named type
// (`NestedBitfield c;`) or an array of them (`NestedBitfield f[n];`,
// held as a StaticArray of Bitfield entries) per spec §3.3's
// BitfieldArray. Its own byte size is ⌈(first_bit_offset +
// total_bit_size) / 8⌉. msbFirst records the fill order; the evaluator
// always builds bitfields MSB-first, and no [[bitfield_order(...)]]
// attribute is recognized to reverse it.
type Bitfield struct {
	header
	fields    []Pattern
	totalBits uint64
	msbFirst  bool
}

func NewBitfield(fields []Pattern, totalBits uint64, msbFirst bool) *Bitfield {
	return &Bitfield{fields: fields, totalBits: totalBits, msbFirst: msbFirst}
}
func (p *Bitfield) Accept(v Visitor)   { v.VisitBitfield(p) }
func (p *Bitfield) Fields() []Pattern  { return p.fields }
func (p *Bitfield) TotalBits() uint64  { return p.totalBits }
func (p *Bitfield) MSBFirst() bool     { return p.msbFirst }

// AppendField grows a bitfield by one member while its body is still
// being evaluated, the same incremental-build pattern Struct/Union use so
// a later field's expression (e.g. an array length) can reference an
// already-placed sibling.
func (p *Bitfield) AppendField(f Pattern) { p.fields = append(p.fields, f) }
func (p *Bitfield) SetTotalBits(n uint64) { p.totalBits = n }

func (p *Bitfield) Clone() Pattern {
	c := *p
	c.fields = cloneAll(p.fields)
	return &c
}
func (p *Bitfield) Equal(o Pattern) bool {
	op, ok := o.(*Bitfield)
	if !ok || !p.equalCommon(&op.header) || len(p.fields) != len(op.fields) {
		return false
	}
	for i := range p.fields {
		if !p.fields[i].Equal(op.fields[i]) {
			return false
		}
	}
	return true
}
func (p *Bitfield) Bytes() ([]byte, error) {
	out := make([]byte, 0, len(p.fields))
	for _, f := range p.fields {
		b, err := f.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
func (p *Bitfield) Value() literal.Literal { return compositeValue(p) }
