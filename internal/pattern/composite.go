package pattern

import (
	"github.com/werwolv/patternlang/internal/literal"
)

// Struct is a fixed set of named, ordered member patterns.
type Struct struct {
	header
	members []Pattern
}

func NewStruct(members []Pattern) *Struct { return &Struct{members: members} }
func (p *Struct) Accept(v Visitor)        { v.VisitStruct(p) }
func (p *Struct) Members() []Pattern      { return p.members }

// AppendMember grows a struct by one member while its body is still being
// evaluated, so `this` can resolve siblings already placed before the
// struct's own header is finalized.
func (p *Struct) AppendMember(m Pattern) { p.members = append(p.members, m) }
func (p *Struct) Clone() Pattern {
	c := *p
	c.members = cloneAll(p.members)
	return &c
}
func (p *Struct) Equal(o Pattern) bool {
	op, ok := o.(*Struct)
	if !ok || !p.equalCommon(&op.header) || len(p.members) != len(op.members) {
		return false
	}
	for i := range p.members {
		if !p.members[i].Equal(op.members[i]) {
			return false
		}
	}
	return true
}
func (p *Struct) Bytes() ([]byte, error) { return concatBytes(p.members) }
func (p *Struct) Value() literal.Literal { return compositeValue(p) }

// Union is a set of member patterns that all start at the same offset;
// size is the widest member's span (spec §3.3).
type Union struct {
	header
	members []Pattern
}

func NewUnion(members []Pattern) *Union { return &Union{members: members} }
func (p *Union) Accept(v Visitor)       { v.VisitUnion(p) }
func (p *Union) Members() []Pattern     { return p.members }

// AppendMember grows a union by one member while its body is still being
// evaluated (see Struct.AppendMember).
func (p *Union) AppendMember(m Pattern) { p.members = append(p.members, m) }
func (p *Union) Clone() Pattern {
	c := *p
	c.members = cloneAll(p.members)
	return &c
}
func (p *Union) Equal(o Pattern) bool {
	op, ok := o.(*Union)
	if !ok || !p.equalCommon(&op.header) || len(p.members) != len(op.members) {
		return false
	}
	for i := range p.members {
		if !p.members[i].Equal(op.members[i]) {
			return false
		}
	}
	return true
}
func (p *Union) Bytes() ([]byte, error) {
	if len(p.members) == 0 {
		return nil, nil
	}
	return p.members[0].Bytes()
}
func (p *Union) Value() literal.Literal { return compositeValue(p) }

// StaticArray is a homogeneous array whose element pattern is cloned once
// per index (§4.2: "static array clone-per-index").
type StaticArray struct {
	header
	entries    []Pattern
	entryTypeN string
}

func NewStaticArray(entries []Pattern, entryTypeName string) *StaticArray {
	return &StaticArray{entries: entries, entryTypeN: entryTypeName}
}
func (p *StaticArray) Accept(v Visitor) { v.VisitStaticArray(p) }
func (p *StaticArray) Clone() Pattern {
	c := *p
	c.entries = cloneAll(p.entries)
	return &c
}
func (p *StaticArray) Equal(o Pattern) bool {
	op, ok := o.(*StaticArray)
	if !ok || !p.equalCommon(&op.header) || len(p.entries) != len(op.entries) {
		return false
	}
	for i := range p.entries {
		if !p.entries[i].Equal(op.entries[i]) {
			return false
		}
	}
	return true
}
func (p *StaticArray) Bytes() ([]byte, error) { return concatBytes(p.entries) }
func (p *StaticArray) Value() literal.Literal { return compositeValue(p) }

func (p *StaticArray) Entries() []Pattern { return p.entries }
func (p *StaticArray) Entry(i int) Pattern {
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	return p.entries[i]
}
func (p *StaticArray) EntryCount() int { return len(p.entries) }
func (p *StaticArray) ForEachEntry(start, end int, fn func(int, Pattern)) {
	forEachEntry(p.entries, start, end, fn)
}

// EntryTypeName is the element type's name, used when formatting e.g.
// "u32[4]".
func (p *StaticArray) EntryTypeName() string { return p.entryTypeN }

// DynamicArray is an array whose length was determined at evaluation time
// (a while-condition, a [[while]] attribute, or a length expression that
// isn't a compile-time constant), as opposed to StaticArray's fixed count.
type DynamicArray struct {
	header
	entries    []Pattern
	entryTypeN string
}

func NewDynamicArray(entries []Pattern, entryTypeName string) *DynamicArray {
	return &DynamicArray{entries: entries, entryTypeN: entryTypeName}
}
func (p *DynamicArray) Accept(v Visitor) { v.VisitDynamicArray(p) }
func (p *DynamicArray) Clone() Pattern {
	c := *p
	c.entries = cloneAll(p.entries)
	return &c
}
func (p *DynamicArray) Equal(o Pattern) bool {
	op, ok := o.(*DynamicArray)
	if !ok || !p.equalCommon(&op.header) || len(p.entries) != len(op.entries) {
		return false
	}
	for i := range p.entries {
		if !p.entries[i].Equal(op.entries[i]) {
			return false
		}
	}
	return true
}
func (p *DynamicArray) Bytes() ([]byte, error) { return concatBytes(p.entries) }
func (p *DynamicArray) Value() literal.Literal { return compositeValue(p) }

func (p *DynamicArray) Entries() []Pattern { return p.entries }
func (p *DynamicArray) Entry(i int) Pattern {
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	return p.entries[i]
}
func (p *DynamicArray) EntryCount() int { return len(p.entries) }
func (p *DynamicArray) ForEachEntry(start, end int, fn func(int, Pattern)) {
	forEachEntry(p.entries, start, end, fn)
}
func (p *DynamicArray) EntryTypeName() string { return p.entryTypeN }

// AppendEntry grows a dynamic array by one element, used while evaluating
// an open-ended while-loop array body.
func (p *DynamicArray) AppendEntry(entry Pattern) { p.entries = append(p.entries, entry) }

// ApplyFixedSize pads a dynamic array out to exactly n entries by cloning
// its last read entry (or shrinks it if it over-read), implementing
// [[fixed_size(n)]] (§9 Open Question 2: applied before any
// [[no_unique_address]] cursor rewind on the same pattern).
func (p *DynamicArray) ApplyFixedSize(n uint64) {
	applyFixedSize(&p.entries, n)
}

// ApplyFixedSize is the StaticArray equivalent, present for symmetry since
// both array kinds accept [[fixed_size]].
func (p *StaticArray) ApplyFixedSize(n uint64) {
	applyFixedSize(&p.entries, n)
}

func applyFixedSize(entries *[]Pattern, n uint64) {
	cur := uint64(len(*entries))
	switch {
	case cur == n:
		return
	case cur > n:
		*entries = (*entries)[:n]
	default:
		if cur == 0 {
			return
		}
		last := (*entries)[cur-1]
		for i := cur; i < n; i++ {
			*entries = append(*entries, last.Clone())
		}
	}
}

func cloneAll(ps []Pattern) []Pattern {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func concatBytes(ps []Pattern) ([]byte, error) {
	var out []byte
	for _, p := range ps {
		b, err := p.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func forEachEntry(ps []Pattern, start, end int, fn func(int, Pattern)) {
	if end > len(ps) {
		end = len(ps)
	}
	for i := start; i < end; i++ {
		fn(i, ps[i])
	}
}

// compositeValue synthesizes a Token::Literal for a struct/union/array that
// has no single scalar value of its own, used only when an expression
// coerces a composite pattern (e.g. a comparison against null, or string
// conversion of a char array). Mirrors the original's per-kind special
// casing in getValue()/toString() rather than a single vtable method.
func compositeValue(p Pattern) literal.Literal {
	return literal.Pattern(p)
}
