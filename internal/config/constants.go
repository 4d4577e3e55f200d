// Package config is the single source of truth for constant tables shared
// across the interpreter: reserved section ids, builtin type widths,
// attribute names, and evaluator limit defaults. Grounded on the teacher's
// internal/config/constants.go and builtins.go, which hold the same kind
// of table-of-structs constant data for its own builtin types/traits.
package config

import "github.com/werwolv/patternlang/internal/section"

// Reserved section ids, re-exported here so callers that only need the
// config package don't also have to import internal/section for these
// three well-known values.
const (
	SectionMain         = section.Main
	SectionHeap         = section.Heap
	SectionPatternLocal = section.PatternLocal
)

// BuiltinTypeInfo describes one builtin scalar type's width and kind, the
// table driving both the lexer's builtin-type keyword recognition and the
// evaluator's CreatePatterns for leaf VariableDecls.
type BuiltinTypeInfo struct {
	Name     string
	BitSize  uint
	Signed   bool
	Floating bool
}

var BuiltinTypes = []BuiltinTypeInfo{
	{Name: "u8", BitSize: 8},
	{Name: "u16", BitSize: 16},
	{Name: "u24", BitSize: 24},
	{Name: "u32", BitSize: 32},
	{Name: "u48", BitSize: 48},
	{Name: "u64", BitSize: 64},
	{Name: "u96", BitSize: 96},
	{Name: "u128", BitSize: 128},
	{Name: "s8", BitSize: 8, Signed: true},
	{Name: "s16", BitSize: 16, Signed: true},
	{Name: "s24", BitSize: 24, Signed: true},
	{Name: "s32", BitSize: 32, Signed: true},
	{Name: "s48", BitSize: 48, Signed: true},
	{Name: "s64", BitSize: 64, Signed: true},
	{Name: "s96", BitSize: 96, Signed: true},
	{Name: "s128", BitSize: 128, Signed: true},
	{Name: "float", BitSize: 32, Floating: true, Signed: true},
	{Name: "double", BitSize: 64, Floating: true, Signed: true},
	{Name: "bool", BitSize: 8},
	{Name: "char", BitSize: 8},
	{Name: "char16", BitSize: 16},
}

// LookupBuiltinType returns the width/signedness info for a builtin type
// name, or (zero, false) if name isn't one of the fixed scalar builtins
// (str/padding/auto and user type names aren't in this table).
func LookupBuiltinType(name string) (BuiltinTypeInfo, bool) {
	for _, t := range BuiltinTypes {
		if t.Name == name {
			return t, true
		}
	}
	return BuiltinTypeInfo{}, false
}

// Attribute names recognized by internal/attributes' dispatch table (§4.5).
const (
	AttrInline          = "inline"
	AttrHidden          = "hidden"
	AttrHighlightHidden = "highlight_hidden"
	AttrSealed          = "sealed"
	AttrColor           = "color"
	AttrSingleColor     = "single_color"
	AttrName            = "name"
	AttrComment         = "comment"
	AttrFormat          = "format"
	AttrFormatRead      = "format_read"
	AttrFormatWrite     = "format_write"
	AttrFormatEntries   = "format_entries"
	AttrFormatReadEntries  = "format_read_entries"
	AttrFormatWriteEntries = "format_write_entries"
	AttrTransform        = "transform"
	AttrTransformEntries = "transform_entries"
	AttrPointerBase      = "pointer_base"
	AttrNoUniqueAddress  = "no_unique_address"
	AttrFixedSize        = "fixed_size"
)

// DangerPermission gates a builtin function registered as "dangerous"
// (spec §6.2/§Glossary): one of Ask/Deny/Allow, consulted once per call via
// a host callback unless the callback has already been satisfied for this
// evaluation.
type DangerPermission uint8

const (
	DangerAsk DangerPermission = iota
	DangerDeny
	DangerAllow
)

// Limits bounds the evaluator's runaway-protection knobs (§4.4/§8). Zero
// means "no limit" for any individual field.
type Limits struct {
	MaxEvalDepth    int
	MaxArrayLength  uint64
	MaxPatternCount uint64
	MaxLoopIterations uint64
}

// DefaultLimits mirrors the host application's defaults (generous enough
// for ordinary programs, small enough to catch infinite recursion/loops
// before exhausting memory).
func DefaultLimits() Limits {
	return Limits{
		MaxEvalDepth:      512,
		MaxArrayLength:    0x10000000,
		MaxPatternCount:   0x2000000,
		MaxLoopIterations: 0x100000,
	}
}
