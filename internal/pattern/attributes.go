package pattern

import "github.com/werwolv/patternlang/internal/literal"

// Attributes holds the effects attached to a pattern by [[...]] attribute
// application (§4.5). internal/attributes owns the dispatch table that
// populates this struct; Pattern variants only ever read it. Keeping the
// struct here (rather than in internal/attributes) avoids an import cycle,
// since every variant needs to embed one.
type Attributes struct {
	// FormatRead/FormatWrite back [[format]]/[[format_read]]/[[format_write]]:
	// a function reference resolved by the evaluator, stored here as a thunk
	// so pattern need not depend on internal/evaluator.
	FormatRead  func(literal.Literal) string
	FormatWrite func(literal.Literal) literal.Literal

	// Transform is set by [[transform]] and [[transform_entries]]. It is
	// stored only: Value() and FormattedValue() do not apply it.
	Transform func(literal.Literal) literal.Literal

	// PointerBase backs [[pointer_base]]: its result replaces the pointer's
	// raw value as the pointee address.
	PointerBase func(rawOffset literal.Literal) uint64

	// FixedSize is not set by attribute application: [[fixed_size(n)]]
	// reaches the evaluator through attributes.Effects, which sets the
	// pattern's byte size to n and moves the cursor to offset + n.
	FixedSize *uint64

	// NoUniqueAddress backs [[no_unique_address]]: after the pattern's
	// natural cursor advance, unconditionally rewind the cursor back to
	// this pattern's starting offset (§9 Open Question 2: applied after
	// FixedSize's padding, not before).
	NoUniqueAddress bool

	// SingleColor backs [[single_color]]: suppress the per-child color
	// cycling a composite would otherwise apply.
	SingleColor bool

	// HighlightHidden backs [[highlight_hidden]]: hidden from the pattern
	// tree view, but its byte range still participates in hover
	// highlighting (distinct from plain [[hidden]], which excludes both).
	HighlightHidden bool

	// Unknown preserves attribute names with no built-in effect, verbatim,
	// per Design Notes §9 ("unknown names preserved rather than rejected").
	Unknown map[string][]string
}
