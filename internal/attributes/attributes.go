// Package attributes implements the attribute engine of spec §4.5/C6: the
// name -> effect dispatch table mapping `[[...]]` annotations onto pattern
// and evaluator state. Grounded on the teacher's internal/config/builtins.go
// "slice of struct, single source of truth" shape (here driving the
// dispatch instead of a docs table) and on
// original_source/lib/source/pl/core/ast/ast_node_attribute.cpp for the
// per-attribute effects themselves, translated to a Go switch over the
// attribute name rather than one-virtual-method-per-attribute-class.
package attributes

import (
	"fmt"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
)

// Resolver is the minimal surface this package needs from the evaluator:
// evaluating an attribute-argument expression to a Literal, and invoking a
// named PL function (for format/transform/pointer_base callbacks). Kept as
// an interface here, implemented by internal/evaluator, so attributes never
// imports evaluator and no import cycle forms.
type Resolver interface {
	EvalArg(e ast.Expression) (literal.Literal, error)
	CallNamed(name string, args []literal.Literal) (literal.Literal, error)
}

// Effects carries the handful of results that don't fit on pattern.Pattern
// itself, because they affect the evaluator's read cursor rather than the
// pattern tree (§4.5: no_unique_address, fixed_size).
type Effects struct {
	// FixedSize is non-nil when [[fixed_size(n)]] was present: the pattern's
	// byte size should be exactly n (an error if the natural size is
	// already larger).
	FixedSize *uint64
	// NoUniqueAddress mirrors [[no_unique_address]]: applied last,
	// unconditionally, after FixedSize (§9 Open Question 2).
	NoUniqueAddress bool
}

// Apply applies one attribute list (either a type's own attributes or a
// variable placement's attributes) onto p, in declaration order, and
// returns the cursor-level effects the caller (internal/evaluator) must
// still enact. Variable-attribute application is expected to be a second
// call on top of a first call with the type's attributes (§4.5: "variable
// attributes ... apply the type attributes first, then the variable-only
// set"); calling Apply twice composes correctly since every effect either
// overwrites (format, color, name) or accumulates (Unknown) idempotently.
func Apply(p pattern.Pattern, attrs []*ast.Attribute, r Resolver) (Effects, error) {
	var eff Effects
	for _, a := range attrs {
		switch a.Name {
		case config.AttrInline:
			p.SetInline(true)
		case config.AttrHidden:
			p.SetHidden(true)
		case config.AttrHighlightHidden:
			p.Attrs().HighlightHidden = true
		case config.AttrSealed:
			p.SetSealed(true)
		case config.AttrSingleColor:
			p.Attrs().SingleColor = true
			propagateColor(p)
		case config.AttrColor:
			hex, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			c, err := parseHexColor(hex)
			if err != nil {
				return eff, fmt.Errorf("[[color]]: %w", err)
			}
			p.SetColor(c)
		case config.AttrName:
			name, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.SetDisplayName(name)
		case config.AttrComment:
			c, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.SetComment(c)
		case config.AttrFormat, config.AttrFormatRead:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.Attrs().FormatRead = formatter(fn, r)
		case config.AttrFormatWrite:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.Attrs().FormatWrite = writeFormatter(fn, r)
		case config.AttrFormatEntries, config.AttrFormatReadEntries:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			applyToEntries(p, func(e pattern.Pattern) { e.Attrs().FormatRead = formatter(fn, r) })
		case config.AttrFormatWriteEntries:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			applyToEntries(p, func(e pattern.Pattern) { e.Attrs().FormatWrite = writeFormatter(fn, r) })
		case config.AttrTransform:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.Attrs().Transform = writeFormatter(fn, r)
		case config.AttrTransformEntries:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			applyToEntries(p, func(e pattern.Pattern) { e.Attrs().Transform = writeFormatter(fn, r) })
		case config.AttrPointerBase:
			fn, err := argString(a, r)
			if err != nil {
				return eff, err
			}
			p.Attrs().PointerBase = func(raw literal.Literal) uint64 {
				res, err := r.CallNamed(fn, []literal.Literal{raw})
				if err != nil {
					return 0
				}
				v, _ := res.ToUnsigned(64)
				if v == nil {
					return 0
				}
				return v.Uint64()
			}
		case config.AttrFixedSize:
			n, err := argUint(a, r)
			if err != nil {
				return eff, err
			}
			eff.FixedSize = &n
		case config.AttrNoUniqueAddress:
			eff.NoUniqueAddress = true
		default:
			unknown(p, a, r)
		}
	}
	return eff, nil
}

func formatter(fnName string, r Resolver) func(literal.Literal) string {
	return func(v literal.Literal) string {
		res, err := r.CallNamed(fnName, []literal.Literal{v})
		if err != nil {
			return fmt.Sprintf("<format error: %s>", err)
		}
		return res.ToStringValue(false)
	}
}

func writeFormatter(fnName string, r Resolver) func(literal.Literal) literal.Literal {
	return func(v literal.Literal) literal.Literal {
		res, err := r.CallNamed(fnName, []literal.Literal{v})
		if err != nil {
			return v
		}
		return res
	}
}

func applyToEntries(p pattern.Pattern, fn func(pattern.Pattern)) {
	it, ok := p.(pattern.Iteratable)
	if !ok {
		return
	}
	it.ForEachEntry(0, it.EntryCount(), func(_ int, e pattern.Pattern) { fn(e) })
}

// propagateColor implements [[single_color]]: every descendant inherits the
// composite's own color rather than the per-child cycling a formatter would
// otherwise apply.
func propagateColor(p pattern.Pattern) {
	if it, ok := p.(pattern.Iteratable); ok {
		it.ForEachEntry(0, it.EntryCount(), func(_ int, e pattern.Pattern) {
			e.SetColor(p.Color())
			propagateColor(e)
		})
	}
}

func unknown(p pattern.Pattern, a *ast.Attribute, r Resolver) {
	args := make([]string, 0, len(a.Args))
	for _, argExpr := range a.Args {
		v, err := r.EvalArg(argExpr)
		if err != nil {
			continue
		}
		args = append(args, v.ToStringValue(false))
	}
	if p.Attrs().Unknown == nil {
		p.Attrs().Unknown = make(map[string][]string)
	}
	p.Attrs().Unknown[a.Name] = args
}

func argString(a *ast.Attribute, r Resolver) (string, error) {
	if len(a.Args) == 0 {
		return "", fmt.Errorf("[[%s]]: expected one argument", a.Name)
	}
	v, err := r.EvalArg(a.Args[0])
	if err != nil {
		return "", fmt.Errorf("[[%s]]: %w", a.Name, err)
	}
	return v.ToStringValue(false), nil
}

func argUint(a *ast.Attribute, r Resolver) (uint64, error) {
	if len(a.Args) == 0 {
		return 0, fmt.Errorf("[[%s]]: expected one argument", a.Name)
	}
	v, err := r.EvalArg(a.Args[0])
	if err != nil {
		return 0, fmt.Errorf("[[%s]]: %w", a.Name, err)
	}
	u, err := v.ToUnsigned(64)
	if err != nil {
		return 0, fmt.Errorf("[[%s]]: %w", a.Name, err)
	}
	return u.Uint64(), nil
}

func parseHexColor(s string) (uint32, error) {
	s = trimHexPrefix(s)
	if len(s) != 6 && len(s) != 8 {
		return 0, fmt.Errorf("expected a 6 or 8 digit hex color, got %q", s)
	}
	var v uint32
	for _, c := range []byte(s) {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
	}
	return v, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '#' {
		return s[1:]
	}
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
