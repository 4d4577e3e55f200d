// Package pattern implements the output model of the interpreter: a tree
// of located, typed regions over the byte/bit address space, built during
// evaluation and inspected afterward (spec §3.3/§4.2).
//
// Where the teacher's ast.Node/Visitor pair dispatches over syntax, Pattern
// dispatches over the *result* of evaluating that syntax — grounded
// directly on original_source/lib/include/pl/patterns/pattern.hpp, the one
// place the C++ original is closer to the target shape than the Go
// teacher, since the teacher's evaluator.Object is a runtime-value
// analogue, not a located/typed-region one. Translated to Go idiom: no
// inheritance, a shared header struct embedded by every variant, and
// dispatch through a Visitor interface exactly as the teacher's own
// ast.Node/Visitor pair is built.
package pattern

import (
	"fmt"

	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/section"
)

// Pattern is the common contract every variant implements (translated from
// pattern.hpp's virtual method set).
type Pattern interface {
	Accept(v Visitor)

	Offset() uint64
	SetOffset(offset uint64)
	Size() uint64
	SetSize(size uint64)
	Section() section.ID
	SetSection(id section.ID)
	Endian() section.Endian
	SetEndian(e section.Endian)

	TypeName() string
	SetTypeName(name string)
	DisplayName() string // formatted name: variable name, or [[name]] override
	SetDisplayName(name string)

	Color() uint32
	SetColor(color uint32)

	Local() bool
	SetLocal(local bool)
	Reference() bool
	SetReference(reference bool)

	Hidden() bool
	SetHidden(hidden bool)
	Sealed() bool
	SetSealed(sealed bool)
	Inline() bool
	SetInline(inline bool)

	Comment() string
	SetComment(c string)

	// OffsetForSorting/SizeForSorting let pointer patterns sort by their
	// pointee rather than by their own (pointer-sized) location.
	OffsetForSorting() uint64
	SizeForSorting() uint64

	// Value returns the pattern's Token::Literal per §3.1; FormattedValue
	// applies any [[format]]/[[format_read]] attribute on top.
	Value() literal.Literal
	FormattedValue() string
	SetValue(v literal.Literal)

	// Bytes returns the raw backing bytes for this pattern's span.
	Bytes() ([]byte, error)

	Clone() Pattern
	Equal(other Pattern) bool

	// Attrs exposes the raw attribute bag so internal/attributes can apply
	// effects without every variant re-implementing storage.
	Attrs() *Attributes
}

// literal.PatternHandle is satisfied by header via Value/TypeName/DisplayName.
var _ literal.PatternHandle = (*header)(nil)

// header is embedded by every concrete variant and carries the properties
// common to all patterns (pattern.hpp's protected members).
type header struct {
	offset  uint64
	size    uint64
	section section.ID
	endian  section.Endian

	typeName    string
	displayName string
	color       uint32

	local     bool
	reference bool
	hidden    bool
	sealed    bool
	inline    bool
	comment   string

	value literal.Literal

	attrs Attributes
}

func (h *header) Offset() uint64              { return h.offset }
func (h *header) SetOffset(offset uint64)     { h.offset = offset }
func (h *header) Size() uint64                { return h.size }
func (h *header) SetSize(size uint64)         { h.size = size }
func (h *header) Section() section.ID         { return h.section }
func (h *header) SetSection(id section.ID)    { h.section = id }
func (h *header) Endian() section.Endian      { return h.endian }
func (h *header) SetEndian(e section.Endian)  { h.endian = e }

func (h *header) TypeName() string        { return h.typeName }
func (h *header) SetTypeName(name string) { h.typeName = name }
func (h *header) DisplayName() string     { return h.displayName }
func (h *header) SetDisplayName(n string) { h.displayName = n }

func (h *header) Color() uint32       { return h.color }
func (h *header) SetColor(c uint32)   { h.color = c }

func (h *header) Local() bool              { return h.local }
func (h *header) SetLocal(l bool)          { h.local = l }
func (h *header) Reference() bool          { return h.reference }
func (h *header) SetReference(r bool)      { h.reference = r }
func (h *header) Hidden() bool             { return h.hidden }
func (h *header) SetHidden(v bool)         { h.hidden = v }
func (h *header) Sealed() bool             { return h.sealed }
func (h *header) SetSealed(v bool)         { h.sealed = v }
func (h *header) Inline() bool             { return h.inline }
func (h *header) SetInline(v bool)         { h.inline = v }
func (h *header) Comment() string          { return h.comment }
func (h *header) SetComment(c string)      { h.comment = c }

func (h *header) OffsetForSorting() uint64 { return h.offset }
func (h *header) SizeForSorting() uint64   { return h.size }

func (h *header) Value() literal.Literal     { return h.value }
func (h *header) SetValue(v literal.Literal) { h.value = v }
func (h *header) FormattedValue() string {
	if fn := h.attrs.FormatRead; fn != nil {
		return fn(h.value)
	}
	return h.value.ToStringValue(false)
}

func (h *header) Attrs() *Attributes { return &h.attrs }

// equalCommon compares the properties shared across all variants
// (compareCommonProperties in the original), excluding value/children which
// each variant's Equal compares itself.
func (h *header) equalCommon(o *header) bool {
	return h.offset == o.offset &&
		h.size == o.size &&
		h.section == o.section &&
		h.typeName == o.typeName
}

// Iteratable is implemented by array-shaped composites (static/dynamic
// arrays) so generic code can walk entries without knowing the concrete
// element type, mirroring pattern.hpp's Iteratable nested interface.
type Iteratable interface {
	Entries() []Pattern
	Entry(index int) Pattern
	EntryCount() int
	ForEachEntry(start, end int, fn func(index int, p Pattern))
}

// Visitor dispatches over the concrete Pattern variants, the same pattern
// the teacher's ast.Visitor uses for AST nodes.
type Visitor interface {
	VisitUnsigned(p *Unsigned)
	VisitSigned(p *Signed)
	VisitFloat(p *Float)
	VisitBoolean(p *Boolean)
	VisitCharacter(p *Character)
	VisitString(p *String)
	VisitPadding(p *Padding)
	VisitEnum(p *Enum)
	VisitPointer(p *Pointer)
	VisitStruct(p *Struct)
	VisitUnion(p *Union)
	VisitStaticArray(p *StaticArray)
	VisitDynamicArray(p *DynamicArray)
	VisitBitfield(p *Bitfield)
	VisitBitfieldField(p *BitfieldField)
}

// GetBytesOf renders a literal into the exact byte span a pattern of this
// size/endian would occupy — used by format_write/transform attributes
// that hand back a plain value instead of writing bytes themselves
// (pattern.hpp's getBytesOf).
func GetBytesOf(v literal.Literal, size uint64, endian section.Endian) []byte {
	raw := v.ToBytes() // always little-endian minimal encoding
	out := make([]byte, size)
	n := uint64(len(raw))
	if n > size {
		n = size
	}
	if endian == section.LittleEndian {
		copy(out, raw[:n])
	} else {
		for i := uint64(0); i < n; i++ {
			out[size-1-i] = raw[i]
		}
	}
	return out
}

func errNotReadable(p Pattern) error {
	return fmt.Errorf("%s %q has no backing bytes", p.TypeName(), p.DisplayName())
}
