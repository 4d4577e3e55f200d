// Package evaluator implements the tree-walking interpreter core of spec
// §4.4 (C5) and the attribute engine's evaluator-side half (C6, §4.5): the
// scope stack and heap (§3.4), the template-parameter stack (§3.5), the
// read cursor and section addressing (driving internal/section), function
// tables, limits, and the node-local CreatePatterns/Evaluate/Execute
// operations every AST node needs (§4.3).
//
// Grounded on the teacher's internal/evaluator/evaluator.go for the overall
// Evaluator-struct-as-registries shape (an Out io.Writer, maps for
// function/type registries, a Clone() for isolated re-runs) and on
// internal/evaluator/statements.go's control-flow-as-explicit-signal
// pattern (funxy threads a BREAK_SIGNAL_OBJ/CONTINUE_SIGNAL_OBJ sentinel
// object through Eval rather than a Go panic/recover; this package's
// controlSignal is the same idea, named for its own domain). The
// enclosing-parent-chain shape of scope lookup mirrors
// funvibe-funxy/internal/evaluator/environment.go's Environment{store,
// outer} chain, since no part of the teacher's own copy needs composite
// local variables backed by a heap index the way the pattern language does
// (Design Notes §9 calls for exactly this: "back the scope stack with a
// vector; locals are indices into a flat heap vector").
package evaluator

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/section"
	"github.com/werwolv/patternlang/internal/token"
)

// LogLevel is the console-log severity (§7: "Console log accumulates
// non-fatal diagnostics at {Debug, Info, Warning, Error} levels").
type LogLevel uint8

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// LogEntry is one console-log line.
type LogEntry struct {
	Level   LogLevel
	Message string
}

// typeEntry is one named type declaration (struct/union/enum/bitfield or a
// `using` alias), plus the bookkeeping needed to complete a forward
// declaration once its real body is seen (§4.3 TypeDecl).
type typeEntry struct {
	node    ast.Node // *StructDecl / *UnionDecl / *EnumDecl / *BitfieldDecl / *UsingDecl
	forward bool
}

// BuiltinFunction is one host-registered function (§6.2's function ABI).
type BuiltinFunction struct {
	Namespace string
	Name      string
	Arity     Arity
	Dangerous bool
	Fn        func(e *Evaluator, args []literal.Literal) (literal.Literal, error)
}

// FullName is the dotted name a FunctionCall resolves against
// ("std::mem::read_unsigned" etc, rendered here with "::").
func (b *BuiltinFunction) FullName() string {
	if b.Namespace == "" {
		return b.Name
	}
	return b.Namespace + "::" + b.Name
}

// Arity is a builtin's parameter-count descriptor (§6.2: "exactly n |
// at_least n | between m..=n | any").
type Arity struct {
	Min int
	Max int // -1 means unbounded
}

func Exactly(n int) Arity  { return Arity{Min: n, Max: n} }
func AtLeast(n int) Arity  { return Arity{Min: n, Max: -1} }
func Between(m, n int) Arity { return Arity{Min: m, Max: n} }
func AnyArity() Arity      { return Arity{Min: 0, Max: -1} }

func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max < 0 || n <= a.Max
}

// controlSignal is the explicit control-flow object break/continue/return
// leave behind for enclosing loops/arrays/function calls to consult,
// instead of unwinding the Go call stack with panic/recover (Design Notes
// §9).
type controlSignal struct {
	kind  ast.ControlFlowKind
	value literal.Literal
}

// Evaluator is the interpreter core (§4.4/C5).
type Evaluator struct {
	ExecID uuid.UUID

	Sections *section.Manager
	cursors  map[section.ID]*section.Cursor

	scopes    *scopeStack
	templates []*templateFrame

	Types     map[string]*typeEntry
	Functions map[string]*ast.FunctionDefinition
	Builtins  map[string]*BuiltinFunction

	InVars  map[string]literal.Literal
	OutVars map[string]literal.Literal
	EnvVars map[string]literal.Literal
	MainResult *literal.Literal

	Limits       config.Limits
	patternCount uint64
	depth        int

	control *controlSignal
	aborted int32

	Debug         bool
	Breakpoints   map[int]bool
	PauseNextLine bool
	OnBreakpoint  func(e *Evaluator, line int)
	lastLine      int

	DangerPermission config.DangerPermission
	OnDangerous      func(fullName string) bool

	ConsoleLog []LogEntry

	patternIDCounter uint32
	colorCounter     uint32

	// endian is the ambient default applied to a builtin/enum/pointer-
	// address read whose TypeDecl carries no explicit "be"/"le" prefix
	// (§6.3). Scenario 1 of §8 fixes the module-wide default to little.
	endian section.Endian

	// activeSection is the section a bare `e.Cursor()` call reads/advances;
	// normally Main, but temporarily redirected by a `@ expr in expr`
	// placement (§4.2) for the duration of one declaration.
	activeSection section.ID

	// outBindings records every `out`-qualified local's live binding so its
	// final value can be copied into OutVars once evaluation completes,
	// since the value may still be mutated by statements anywhere after the
	// declaration (§6.1/§6.4's "out variables" I/O surface).
	outBindings []outBinding

	FatalError *diagnostics.PLError

	// Forest mirrors Run's top-level pattern output as it's built, so a
	// mid-program builtin (std::export_sqlite) can snapshot "everything
	// placed so far" without waiting for Run to return.
	Forest []pattern.Pattern
}

// outBinding pairs an out-qualified variable's name with its live scope
// binding.
type outBinding struct {
	name string
	lv   *localVar
}

// New constructs an Evaluator with default limits, an open Heap/
// PatternLocal section pair, and empty registries. The Main section is
// installed separately via SetDataSource (§6.1).
func New() *Evaluator {
	e := &Evaluator{
		ExecID:    newExecID(),
		Sections:  section.NewManager(),
		cursors:   map[section.ID]*section.Cursor{},
		scopes:    newScopeStack(),
		Types:     map[string]*typeEntry{},
		Functions: map[string]*ast.FunctionDefinition{},
		Builtins:  map[string]*BuiltinFunction{},
		InVars:    map[string]literal.Literal{},
		OutVars:   map[string]literal.Literal{},
		EnvVars:   map[string]literal.Literal{},
		Limits:    config.DefaultLimits(),
		Breakpoints: map[int]bool{},
		endian:    section.LittleEndian,
		activeSection: section.Main,
	}
	e.Sections.Open(section.Heap, section.NewMemoryStore())
	e.Sections.Open(section.PatternLocal, section.NewSparseStore())
	RegisterBuiltins(e)
	return e
}

func newExecID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}
	}
	return id
}

// Reset restores a fresh evaluation state (§5: "a separate evaluation may
// be started afterward; the runtime must reset all evaluator state
// deterministically"), keeping the already-registered types/functions/
// builtins and the Main data source.
func (e *Evaluator) Reset() {
	e.ExecID = newExecID()
	e.scopes = newScopeStack()
	e.templates = nil
	e.OutVars = map[string]literal.Literal{}
	e.MainResult = nil
	e.patternCount = 0
	e.depth = 0
	e.control = nil
	atomic.StoreInt32(&e.aborted, 0)
	e.PauseNextLine = false
	e.lastLine = 0
	e.ConsoleLog = nil
	e.patternIDCounter = 0
	e.colorCounter = 0
	e.FatalError = nil
	e.cursors = map[section.ID]*section.Cursor{}
	e.endian = section.LittleEndian
	e.activeSection = section.Main
	e.outBindings = nil
	e.Forest = nil
}

// --- cursor / section addressing (§4.1) ------------------------------------

func (e *Evaluator) cursorFor(id section.ID) *section.Cursor {
	c, ok := e.cursors[id]
	if !ok {
		c = &section.Cursor{Section: id}
		e.cursors[id] = c
	}
	return c
}

// Cursor returns the live cursor for the currently active section: Main by
// default, or whichever section a `@ expr in expr` placement has
// temporarily redirected it to.
func (e *Evaluator) Cursor() *section.Cursor { return e.cursorFor(e.activeSection) }

// pushEndian applies a TypeDecl's "be"/"le" prefix (§6.3) for the duration
// of one instantiation, restoring the ambient default on return; an empty
// prefix is a no-op so nested types inherit their enclosing declaration's
// endianness rather than silently reverting to little.
func (e *Evaluator) pushEndian(prefix string) func() {
	switch prefix {
	case "be":
		saved := e.endian
		e.endian = section.BigEndian
		return func() { e.endian = saved }
	case "le":
		saved := e.endian
		e.endian = section.LittleEndian
		return func() { e.endian = saved }
	default:
		return func() {}
	}
}

// --- abort / limits (§5) ----------------------------------------------------

// Abort requests termination; safe to call from another goroutine (§5:
// "the abort flag must be readable across threads").
func (e *Evaluator) Abort() { atomic.StoreInt32(&e.aborted, 1) }

func (e *Evaluator) isAborted() bool { return atomic.LoadInt32(&e.aborted) != 0 }

// updateRuntime is the per-node entry hook (§4.4): it checks the abort flag
// and the depth limit, advances the last-seen source line, and fires the
// breakpoint callback if one is pending. It returns a guard to be deferred,
// which pops the depth counter back down on return.
func (e *Evaluator) updateRuntime(node ast.Node) (func(), error) {
	if e.isAborted() {
		return func() {}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE008, node.GetToken())
	}
	e.depth++
	if e.Limits.MaxEvalDepth > 0 && e.depth > e.Limits.MaxEvalDepth {
		e.depth--
		return func() {}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, node.GetToken(), "evaluation depth", e.Limits.MaxEvalDepth)
	}
	line := node.GetToken().Line
	if line > 0 {
		e.lastLine = line
	}
	if e.Debug {
		if e.PauseNextLine || e.Breakpoints[e.lastLine] {
			e.PauseNextLine = false
			if e.OnBreakpoint != nil {
				e.OnBreakpoint(e, e.lastLine)
			}
		}
	}
	return func() { e.depth-- }, nil
}

// countPattern enforces §3.3's "pattern count is capped at a configurable
// limit; creation beyond the limit aborts evaluation".
func (e *Evaluator) countPattern(tok token.Token) error {
	e.patternCount++
	if e.Limits.MaxPatternCount > 0 && e.patternCount > e.Limits.MaxPatternCount {
		return diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, tok, "pattern count", e.Limits.MaxPatternCount)
	}
	return nil
}

// currentToken synthesizes a zero-position token carrying only the last
// seen source line, for errors raised from inside a builtin that has no
// AST node of its own to report against.
func (e *Evaluator) currentToken() token.Token {
	return token.Token{Line: e.lastLine}
}

// Log appends a non-fatal console diagnostic (§7).
func (e *Evaluator) Log(level LogLevel, format string, args ...interface{}) {
	e.ConsoleLog = append(e.ConsoleLog, LogEntry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// nextPatternID hands out a fresh id for PATTERN_LOCAL scratch addressing
// (§3.2: "per-pattern scratch storage, addressed by a 32-bit pattern id
// packed into the upper half of the offset").
func (e *Evaluator) nextPatternID() uint32 {
	e.patternIDCounter++
	return e.patternIDCounter
}

func patternLocalOffset(id uint32, local uint32) uint64 {
	return uint64(id)<<32 | uint64(local)
}

// nextColor cycles through a small fixed palette for children of a
// composite that doesn't have [[single_color]] or an explicit [[color]],
// purely cosmetic bookkeeping the way pattern.hpp assigns default colors.
func (e *Evaluator) nextColor() uint32 {
	palette := []uint32{0x800080, 0x008080, 0x808000, 0x804000, 0x400080, 0x008040}
	c := palette[int(e.colorCounter)%len(palette)]
	e.colorCounter++
	return c
}
