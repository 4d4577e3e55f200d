// Package diagnostics implements the error model of spec §7: a single
// typed error carrying a phase-tagged code, a templated message, a source
// location, and an optional hint. Grounded on the teacher's own
// DiagnosticError (kept almost unchanged in shape: ErrorCode/Phase/a
// template map/NewPhaseError/WrapError), re-keyed to this project's five
// error kinds and renamed to PLError to match the domain rather than the
// teacher's own language name.
package diagnostics

import (
	"fmt"

	"github.com/werwolv/patternlang/internal/token"
)

// Phase is one of the five error kinds spec §7 defines.
type Phase string

const (
	PhaseLex      Phase = "lex"
	PhaseParse    Phase = "parse"
	PhaseValidate Phase = "validate"
	PhaseEval     Phase = "eval"
	PhaseFormat   Phase = "format"
)

type ErrorCode string

const (
	// Lex errors.
	ErrL001 ErrorCode = "L001" // invalid character
	ErrL002 ErrorCode = "L002" // unterminated string/char literal
	ErrL003 ErrorCode = "L003" // invalid numeric literal

	// Parse errors.
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expected identifier
	ErrP003 ErrorCode = "P003" // could not parse literal
	ErrP004 ErrorCode = "P004" // no prefix parse function for token
	ErrP005 ErrorCode = "P005" // expected closing delimiter
	ErrP006 ErrorCode = "P006" // malformed attribute

	// Validate errors (static checks before evaluation begins).
	ErrV001 ErrorCode = "V001" // undeclared type
	ErrV002 ErrorCode = "V002" // redefinition of symbol
	ErrV003 ErrorCode = "V003" // forward-declared type never resolved
	ErrV004 ErrorCode = "V004" // unknown attribute argument shape

	// Eval errors (raised while walking the AST / reading the data source).
	ErrE001 ErrorCode = "E001" // undeclared variable
	ErrE002 ErrorCode = "E002" // out-of-bounds read
	ErrE003 ErrorCode = "E003" // type mismatch
	ErrE004 ErrorCode = "E004" // assertion failed
	ErrE005 ErrorCode = "E005" // limit exceeded (depth/array length/pattern count/loop iterations)
	ErrE006 ErrorCode = "E006" // dangerous function denied
	ErrE007 ErrorCode = "E007" // division by zero
	ErrE008 ErrorCode = "E008" // aborted

	// Format errors (raised while rendering a FormattedValue).
	ErrF001 ErrorCode = "F001" // format function returned a non-string value
	ErrF002 ErrorCode = "F002" // format function itself raised an error
)

var errorTemplates = map[ErrorCode]string{
	ErrL001: "invalid character: %q",
	ErrL002: "unterminated literal starting at %s",
	ErrL003: "invalid numeric literal: %q",

	ErrP001: "unexpected token: expected %q, got %q",
	ErrP002: "expected an identifier, got %q",
	ErrP003: "could not parse %q as a %s literal",
	ErrP004: "no prefix parse function for %q",
	ErrP005: "expected closing %q",
	ErrP006: "malformed attribute: %s",

	ErrV001: "undeclared type: %q",
	ErrV002: "redefinition of %q",
	ErrV003: "forward-declared type %q was never defined",
	ErrV004: "attribute %q: %s",

	ErrE001: "undeclared variable: %q",
	ErrE002: "read of %d byte(s) at offset %d exceeds section %q",
	ErrE003: "type mismatch: %s",
	ErrE004: "assertion failed: %s",
	ErrE005: "%s limit exceeded (%d)",
	ErrE006: "dangerous function %q was denied",
	ErrE007: "division by zero",
	ErrE008: "evaluation aborted",

	ErrF001: "format function %q did not return a string",
	ErrF002: "format function %q: %s",
}

// PLError is the single error type produced by every stage of the
// pipeline (§7).
type PLError struct {
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Token token.Token
	File  string
	Hint  string
}

func (e *PLError) Error() string {
	template, ok := errorTemplates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown error code: %s", e.Code)
	}
	message := fmt.Sprintf(template, e.Args...)

	prefix := ""
	if e.File != "" {
		prefix = fmt.Sprintf("%s: ", e.File)
	}
	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}

	var result string
	if e.Token.Line > 0 {
		result = fmt.Sprintf("%s%serror at %d:%d [%s]: %s", prefix, phaseStr, e.Token.Line, e.Token.Column, e.Code, message)
	} else {
		result = fmt.Sprintf("%s%serror [%s]: %s", prefix, phaseStr, e.Code, message)
	}
	if e.Hint != "" {
		result += "\n  hint: " + e.Hint
	}
	return result
}

// New creates an error with just a code and token.
func New(code ErrorCode, tok token.Token, args ...interface{}) *PLError {
	return &PLError{Code: code, Token: tok, Args: args}
}

// NewPhaseError creates an error tagged with its originating phase.
func NewPhaseError(phase Phase, code ErrorCode, tok token.Token, args ...interface{}) *PLError {
	return &PLError{Code: code, Phase: phase, Token: tok, Args: args}
}

// WrapError tags a generic error with phase/location info, or passes a
// PLError through, filling in only what's missing.
func WrapError(phase Phase, tok token.Token, err error) *PLError {
	if pe, ok := err.(*PLError); ok {
		if pe.Phase == "" {
			pe.Phase = phase
		}
		if pe.Token.Line == 0 && tok.Line > 0 {
			pe.Token = tok
		}
		return pe
	}
	return &PLError{Code: ErrE003, Phase: phase, Token: tok, Args: []interface{}{err.Error()}}
}

// Collector accumulates validate-phase errors up to a configured limit
// (§7: "validator error collector capped at a configurable count"),
// instead of aborting at the first one the way eval-phase errors do.
type Collector struct {
	limit  int
	errors []*PLError
}

func NewCollector(limit int) *Collector { return &Collector{limit: limit} }

// Add reports an error; returns false once the limit has been reached, a
// signal callers use to stop validating further nodes.
func (c *Collector) Add(err *PLError) bool {
	if c.limit > 0 && len(c.errors) >= c.limit {
		return false
	}
	c.errors = append(c.errors, err)
	return c.limit <= 0 || len(c.errors) < c.limit
}

func (c *Collector) Errors() []*PLError { return c.errors }
func (c *Collector) HasErrors() bool    { return len(c.errors) > 0 }
