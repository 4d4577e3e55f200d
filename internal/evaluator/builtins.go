package evaluator

import (
	"fmt"
	"math"
	"math/big"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/section"
)

// EvalArg and CallNamed together satisfy attributes.Resolver, letting
// internal/attributes evaluate `[[format("fn")]]`-style callback arguments
// without importing this package back.
func (e *Evaluator) EvalArg(expr ast.Expression) (literal.Literal, error) {
	return e.Evaluate(expr)
}

func (e *Evaluator) CallNamed(name string, args []literal.Literal) (literal.Literal, error) {
	if fn, ok := e.Functions[name]; ok {
		return e.callUserFunction(fn, args)
	}
	if b, ok := e.Builtins[name]; ok {
		return e.callBuiltin(b, args)
	}
	return literal.Literal{}, fmt.Errorf("unknown function %q", name)
}

func (e *Evaluator) callBuiltin(b *BuiltinFunction, args []literal.Literal) (literal.Literal, error) {
	if !b.Arity.Accepts(len(args)) {
		return literal.Literal{}, fmt.Errorf("%s: wrong argument count (%d)", b.FullName(), len(args))
	}
	if b.Dangerous {
		allowed, err := e.checkDangerous(b.FullName())
		if err != nil {
			return literal.Literal{}, err
		}
		if !allowed {
			return literal.Literal{}, fmt.Errorf("dangerous function %q was denied", b.FullName())
		}
	}
	return b.Fn(e, args)
}

// checkDangerous implements §6.2's danger-gating rule: Allow always
// proceeds, Deny always refuses, Ask defers to the host callback (and
// refuses if none was installed).
func (e *Evaluator) checkDangerous(fullName string) (bool, error) {
	switch e.DangerPermission {
	case config.DangerAllow:
		return true, nil
	case config.DangerDeny:
		return false, nil
	default: // DangerAsk
		if e.OnDangerous == nil {
			return false, nil
		}
		return e.OnDangerous(fullName), nil
	}
}

func registerBuiltin(e *Evaluator, b BuiltinFunction) {
	e.Builtins[b.FullName()] = &b
}

// RegisterBuiltins installs the standard library (§6.2), grouped under the
// "std" namespace the way the teacher's own RegisterBuiltins seeds its
// global environment with host functions rather than hand-writing a
// prelude in the interpreted language itself.
func RegisterBuiltins(e *Evaluator) {
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "assert", Arity: Between(1, 2), Fn: builtinAssert})
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "assert_warn", Arity: Between(1, 2), Fn: builtinAssertWarn})
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "print", Arity: AtLeast(1), Fn: builtinPrint})
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "warning", Arity: Exactly(1), Fn: builtinWarning})
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "error", Arity: Exactly(1), Fn: builtinError})

	registerBuiltin(e, BuiltinFunction{Namespace: "std::math", Name: "min", Arity: Exactly(2), Fn: builtinMin})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::math", Name: "max", Arity: Exactly(2), Fn: builtinMax})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::math", Name: "abs", Arity: Exactly(1), Fn: builtinAbs})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::math", Name: "floor", Arity: Exactly(1), Fn: builtinFloor})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::math", Name: "ceil", Arity: Exactly(1), Fn: builtinCeil})

	registerBuiltin(e, BuiltinFunction{Namespace: "std::string", Name: "length", Arity: Exactly(1), Fn: builtinStrLength})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::string", Name: "to_string", Arity: Exactly(1), Fn: builtinToString})

	registerBuiltin(e, BuiltinFunction{Namespace: "std::mem", Name: "read_unsigned", Arity: Between(2, 3), Fn: builtinReadUnsigned})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::mem", Name: "read_signed", Arity: Between(2, 3), Fn: builtinReadSigned})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::mem", Name: "size", Arity: Exactly(1), Fn: builtinMemSize})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::mem", Name: "align_to", Arity: Exactly(2), Fn: builtinAlignTo})
	registerBuiltin(e, BuiltinFunction{Namespace: "std::mem", Name: "write_unsigned", Arity: Between(3, 4), Dangerous: true, Fn: builtinWriteUnsigned})

	registerExtraBuiltins(e)
}

func builtinAssert(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	if !args[0].ToBool() {
		msg := "assertion failed"
		if len(args) == 2 {
			msg = args[1].ToStringValue(false)
		}
		// A failing assert mirrors its message to the console log in
		// addition to raising the evaluation error, so a host reading only
		// GetConsoleLog still sees why execution stopped.
		e.Log(LogError, "%s", msg)
		return literal.Literal{}, diagnostics.New(diagnostics.ErrE004, e.currentToken(), msg)
	}
	return literal.Bool(true), nil
}

func builtinAssertWarn(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	if !args[0].ToBool() {
		msg := "assertion failed"
		if len(args) == 2 {
			msg = args[1].ToStringValue(false)
		}
		e.Log(LogWarning, "%s", msg)
	}
	return literal.Bool(true), nil
}

func builtinPrint(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	parts := make([]interface{}, len(args))
	for i, a := range args {
		parts[i] = a.ToStringValue(false)
	}
	e.Log(LogInfo, "%s", fmtJoin(parts))
	return literal.Literal{}, nil
}

func builtinWarning(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	e.Log(LogWarning, "%s", args[0].ToStringValue(false))
	return literal.Literal{}, nil
}

func builtinError(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	e.Log(LogError, "%s", args[0].ToStringValue(false))
	return literal.Literal{}, diagnostics.New(diagnostics.ErrE004, e.currentToken(), args[0].ToStringValue(false))
}

func fmtJoin(parts []interface{}) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprint(p)
	}
	return out
}

func builtinMin(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	if args[0].Compare(args[1]) <= 0 {
		return args[0], nil
	}
	return args[1], nil
}

func builtinMax(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	if args[0].Compare(args[1]) >= 0 {
		return args[0], nil
	}
	return args[1], nil
}

func builtinAbs(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	a := args[0]
	if a.Kind() == literal.KindDouble {
		return literal.Double(math.Abs(a.Double())), nil
	}
	return literal.I128(new(big.Int).Abs(a.Int())), nil
}

func builtinFloor(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	d, err := args[0].ToDouble()
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.Double(math.Floor(d)), nil
}

func builtinCeil(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	d, err := args[0].ToDouble()
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.Double(math.Ceil(d)), nil
}

func builtinStrLength(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	return literal.U64(uint64(len(args[0].Str()))), nil
}

func builtinToString(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	return literal.String(args[0].ToStringValue(false)), nil
}

func builtinReadUnsigned(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	off, err := args[0].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	bits, err := args[1].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	id := section.ID(0)
	if len(args) > 2 {
		secOff, _ := args[2].ToUnsigned(64)
		id = section.ID(secOff.Int64())
	}
	cursor := &section.Cursor{Section: id, Byte: off.Uint64()}
	v, err := e.Sections.ReadBits(id, cursor, uint(bits.Uint64()), section.LittleEndian, false)
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.U128(v), nil
}

func builtinReadSigned(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	off, err := args[0].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	bits, err := args[1].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	id := section.ID(0)
	if len(args) > 2 {
		secOff, _ := args[2].ToUnsigned(64)
		id = section.ID(secOff.Int64())
	}
	cursor := &section.Cursor{Section: id, Byte: off.Uint64()}
	v, err := e.Sections.ReadBits(id, cursor, uint(bits.Uint64()), section.LittleEndian, true)
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.I128(v), nil
}

func builtinMemSize(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	id := section.ID(0)
	off, err := args[0].ToUnsigned(64)
	if err == nil {
		id = section.ID(off.Int64())
	}
	sz, err := e.Sections.Size(id)
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.U64(sz), nil
}

func builtinAlignTo(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	off, err := args[0].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	align, err := args[1].ToUnsigned(64)
	if err != nil || align.Uint64() == 0 {
		return literal.U128(off), nil
	}
	a := align.Uint64()
	rem := off.Uint64() % a
	if rem == 0 {
		return literal.U128(off), nil
	}
	return literal.U64(off.Uint64() + (a - rem)), nil
}

func builtinWriteUnsigned(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	off, err := args[0].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	bits, err := args[1].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	val, err := args[2].ToUnsigned(64)
	if err != nil {
		return literal.Literal{}, err
	}
	id := section.ID(0)
	if len(args) > 3 {
		secOff, _ := args[3].ToUnsigned(64)
		id = section.ID(secOff.Int64())
	}
	cursor := &section.Cursor{Section: id, Byte: off.Uint64()}
	if err := e.Sections.WriteBits(id, cursor, uint(bits.Uint64()), section.LittleEndian, val); err != nil {
		return literal.Literal{}, err
	}
	return literal.Literal{}, nil
}
