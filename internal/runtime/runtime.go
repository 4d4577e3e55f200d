// Package runtime implements the runtime façade of spec §6.1/C7: the
// orchestration layer that strings lex → parse → validate → evaluate
// together and exposes the host-facing surface (data source registration,
// pragma/function registries, in/out variables, error/console-log
// retrieval). Everything in here is a thin driver over internal/lexer,
// internal/parser, and internal/evaluator; none of the interpreter's own
// logic lives here.
//
// Grounded on the teacher's cmd/funxy/main.go pipeline shape (build a
// lexer/parser/analyzer/backend chain, run it, collect errors) generalized
// from a one-shot CLI flow into a reusable, re-executable façade type the
// way a library consumer (rather than only a CLI) would want it exposed.
package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/evaluator"
	"github.com/werwolv/patternlang/internal/lexer"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/parser"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/section"
	"github.com/werwolv/patternlang/internal/token"
)

// Runtime is the host-facing façade (§6.1). One Runtime wraps one
// Evaluator plus the bookkeeping (include paths, pragma handlers, the last
// parsed program's patterns) a host application needs across repeated
// ExecuteString/ExecuteFile calls.
type Runtime struct {
	eval *evaluator.Evaluator

	includePaths []string
	pragmas      map[string]func(value string)

	patterns []pattern.Pattern
	lastErr  *diagnostics.PLError

	sourceName string
}

// New constructs a Runtime with a fresh Evaluator (builtins already
// registered; see evaluator.New).
func New() *Runtime {
	return &Runtime{
		eval:    evaluator.New(),
		pragmas: map[string]func(value string){},
	}
}

// Evaluator exposes the underlying evaluator for callers (builtins
// packages, the CLI) that need to register additional host functions
// beyond AddFunction's simple ABI, or tune Limits/DangerPermission.
func (rt *Runtime) Evaluator() *evaluator.Evaluator { return rt.eval }

// baseOffsetReaderAt subtracts a configured base address from every
// requested offset before delegating to the underlying reader, so a
// pattern-language program can address the data source starting from its
// configured base_address (§3.2's "MAIN... offset by a configurable base
// address") while the backing reader itself is always addressed from its
// own start.
type baseOffsetReaderAt struct {
	r    io.ReaderAt
	base uint64
}

func (b *baseOffsetReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return b.r.ReadAt(p, off-int64(b.base))
}

// SetDataSource registers the byte source backing the MAIN section (§6.1):
// reads are bounded to [baseAddress, baseAddress+size) and resolved
// against reader, optionally writable through writer (nil means read-only;
// writes additionally require AllowMainSectionEdits).
func (rt *Runtime) SetDataSource(baseAddress, size uint64, reader io.ReaderAt, writer io.ReaderAt) {
	src := reader
	if baseAddress != 0 {
		src = &baseOffsetReaderAt{r: reader, base: baseAddress}
	}
	allowWrites := writer != nil
	store := section.NewReaderAtStore(src, baseAddress+size, allowWrites)
	rt.eval.Sections.Open(section.Main, store)
}

// SetAllowMainSectionEdits toggles §4.1's dangerous-function-gated
// permission to write back through the MAIN section.
func (rt *Runtime) SetAllowMainSectionEdits(allow bool) {
	rt.eval.Sections.SetAllowMainSectionEdits(allow)
}

// SetIncludePaths records search roots for `#include` resolution. Include
// resolution itself is out of scope (spec §1); paths are recorded so a
// future resolver (or a host-supplied one via a pragma handler) has
// somewhere to look.
func (rt *Runtime) SetIncludePaths(paths []string) { rt.includePaths = paths }

// IncludePaths returns the paths registered by SetIncludePaths.
func (rt *Runtime) IncludePaths() []string { return rt.includePaths }

// AddPragma registers a handler invoked once per `#pragma name value` seen
// while lexing a source string (§6.1/§6.3).
func (rt *Runtime) AddPragma(name string, handler func(value string)) {
	rt.pragmas[name] = handler
}

// AddFunction registers a host builtin under the given namespace (§6.1/
// §6.2's function ABI): arity is one of evaluator.Exactly/AtLeast/Between/
// AnyArity, callback receives already-evaluated argument literals.
func (rt *Runtime) AddFunction(namespace, name string, arity evaluator.Arity, dangerous bool, fn func(e *evaluator.Evaluator, args []literal.Literal) (literal.Literal, error)) {
	rt.eval.Builtins[fullName(namespace, name)] = &evaluator.BuiltinFunction{
		Namespace: namespace, Name: name, Arity: arity, Dangerous: dangerous, Fn: fn,
	}
}

func fullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}

// ExecuteString parses and evaluates src (§6.1). env/in seed the
// evaluator's EnvVars/InVars maps before evaluation; if checkResult is
// set, a non-zero integer main() return also counts as failure (§7's
// "Exit contract"). Returns false iff a fatal error was raised or (when
// checkResult) main() returned non-zero; callers inspect GetError()/
// GetConsoleLog() for details either way.
func (rt *Runtime) ExecuteString(src string, env, in map[string]literal.Literal, checkResult bool) bool {
	rt.eval.Reset()
	rt.patterns = nil
	rt.lastErr = nil

	for k, v := range env {
		rt.eval.EnvVars[k] = v
	}
	for k, v := range in {
		rt.eval.InVars[k] = v
	}

	tokens, pragmas, _, lexErr := lexer.TokenizeFull(src)
	if lexErr != nil {
		rt.lastErr = lexErr
		return false
	}
	for _, p := range pragmas {
		if h, ok := rt.pragmas[p.Name]; ok {
			h(p.Value)
		}
	}

	prog, errs := parser.ParseProgram(tokens)
	if errs.HasErrors() {
		rt.lastErr = errs.Errors()[0]
		for _, e := range errs.Errors() {
			rt.eval.Log(evaluator.LogError, "%s", e.Error())
		}
		return false
	}

	patterns, err := rt.eval.Run(prog)
	rt.patterns = patterns
	if err != nil {
		if pe, ok := err.(*diagnostics.PLError); ok {
			rt.lastErr = pe
		} else {
			rt.lastErr = diagnostics.WrapError(diagnostics.PhaseEval, token.Token{}, err)
		}
		return false
	}
	if rt.eval.FatalError != nil {
		rt.lastErr = rt.eval.FatalError
		return false
	}

	if checkResult && rt.eval.MainResult != nil {
		mr := *rt.eval.MainResult
		if mr.IsInteger() && mr.Int().Sign() != 0 {
			return false
		}
	}
	return true
}

// ExecuteFile reads path and runs it through ExecuteString, using the file
// contents as source (§6.1).
func (rt *Runtime) ExecuteFile(path string, env, in map[string]literal.Literal) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		rt.lastErr = diagnostics.New(diagnostics.ErrE003, token.Token{}, fmt.Sprintf("reading %s: %v", path, err))
		return false
	}
	rt.sourceName = path
	return rt.ExecuteString(string(data), env, in, true)
}

// GetPatterns returns the top-level pattern forest produced by the last
// ExecuteString/ExecuteFile call (§6.1).
func (rt *Runtime) GetPatterns() []pattern.Pattern { return rt.patterns }

// GetOutVariables returns the final values of every `out`-declared
// variable (§6.1/§6.4).
func (rt *Runtime) GetOutVariables() map[string]literal.Literal { return rt.eval.OutVars }

// GetError returns the fatal error from the last run, if any (§6.1/§7).
func (rt *Runtime) GetError() *diagnostics.PLError { return rt.lastErr }

// GetConsoleLog returns the accumulated non-fatal diagnostics (§6.1/§7).
func (rt *Runtime) GetConsoleLog() []evaluator.LogEntry { return rt.eval.ConsoleLog }

// MainResult returns main()'s return value, if the program defined one.
func (rt *Runtime) MainResult() (literal.Literal, bool) {
	if rt.eval.MainResult == nil {
		return literal.Literal{}, false
	}
	return *rt.eval.MainResult, true
}

// Abort requests termination of an in-flight evaluation (§5/§6.1); safe to
// call from another goroutine.
func (rt *Runtime) Abort() { rt.eval.Abort() }

// SetLimits overrides the evaluator's runaway-protection limits (§4.4).
func (rt *Runtime) SetLimits(limits config.Limits) { rt.eval.Limits = limits }

// SetDangerPermission configures how dangerous builtins are gated (§6.2).
func (rt *Runtime) SetDangerPermission(p config.DangerPermission, onDangerous func(fullName string) bool) {
	rt.eval.DangerPermission = p
	rt.eval.OnDangerous = onDangerous
}
