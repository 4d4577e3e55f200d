package evaluator

import (
	"math/big"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/token"
)

// Evaluate computes the Literal value of an expression node (§4.3). Unlike
// the Visitor double-dispatch the AST package exposes for symmetry with the
// teacher's own ast.Node/Visitor pair, evaluation itself is written as one
// flat type switch here -- the shape the teacher's own evaluator.Eval uses
// for its Object-returning recursion, since a real switch reads better for
// an error-returning tree walk than a visitor whose result has to travel
// through a transient receiver field.
func (e *Evaluator) Evaluate(expr ast.Expression) (literal.Literal, error) {
	guard, err := e.updateRuntime(expr)
	if err != nil {
		return literal.Literal{}, err
	}
	defer guard()

	switch node := expr.(type) {
	case *ast.LiteralExpr:
		return e.evalLiteralExpr(node), nil
	case *ast.Identifier:
		return e.evalIdentifier(node)
	case *ast.Rvalue:
		p, err := e.resolveRvalue(node)
		if err != nil {
			return literal.Literal{}, err
		}
		return patternToLiteral(p), nil
	case *ast.LValueAssignment:
		return e.evalAssignment(node)
	case *ast.MathematicalExpression:
		return e.evalMathematical(node)
	case *ast.Cast:
		return e.evalCast(node)
	case *ast.TernaryExpression:
		cond, err := e.Evaluate(node.Condition)
		if err != nil {
			return literal.Literal{}, err
		}
		if cond.ToBool() {
			return e.Evaluate(node.Then)
		}
		return e.Evaluate(node.Else)
	case *ast.FunctionCall:
		return e.evalFunctionCall(node)
	case *ast.MatchExpression:
		return e.evalMatch(node)
	case *ast.RangeExpr, *ast.AlternationExpr:
		// Only meaningful as a match-arm case pattern; evalMatch handles
		// these directly rather than through Evaluate.
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, expr.GetToken(), "range/alternation expression used outside a match arm")
	default:
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, expr.GetToken(), "unsupported expression")
	}
}

func (e *Evaluator) evalLiteralExpr(l *ast.LiteralExpr) literal.Literal {
	switch l.Kind {
	case token.INT:
		return literal.U128(l.Int)
	case token.FLOAT:
		return literal.Double(l.Float)
	case token.CHAR:
		return literal.Char(l.Char)
	case token.STRING:
		return literal.String(l.Str)
	case token.TRUE, token.FALSE:
		return literal.Bool(l.Bool)
	default:
		return literal.Literal{}
	}
}

func (e *Evaluator) evalIdentifier(id *ast.Identifier) (literal.Literal, error) {
	if v, ok := e.scopes.lookup(id.Value); ok {
		return v.value, nil
	}
	if v, ok := e.InVars[id.Value]; ok {
		return v, nil
	}
	if v, ok := e.EnvVars[id.Value]; ok {
		return v, nil
	}
	for i := len(e.templates) - 1; i >= 0; i-- {
		if v, ok := e.templates[i].values[id.Value]; ok {
			return v, nil
		}
	}
	return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE001, id.Tok, id.Value)
}

// resolveRvalue walks a member-access / index path down to the Pattern it
// names, starting from `this` (the innermost enclosing composite) or
// `parent` (one level further out).
func (e *Evaluator) resolveRvalue(r *ast.Rvalue) (pattern.Pattern, error) {
	var cur pattern.Pattern
	if r.Base == nil {
		switch r.Tok.Type {
		case token.PARENT:
			if e.scopes.depth() < 2 {
				return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE001, r.Tok, "parent")
			}
			cur = e.scopes.frames[len(e.scopes.frames)-2].parent
		default: // THIS
			cur = e.scopes.top().parent
		}
	} else {
		v, err := e.Evaluate(r.Base)
		if err != nil {
			return nil, err
		}
		if v.Kind() != literal.KindPattern {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, r.Tok, "expected a pattern value")
		}
		h := v.PatternHandle()
		p, ok := h.(pattern.Pattern)
		if !ok {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, r.Tok, "value has no addressable pattern")
		}
		cur = p
	}

	for _, part := range r.Path {
		if cur == nil {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE001, r.Tok, "member access on an undefined value")
		}
		if part.Field != "" {
			next, err := memberByName(cur, part.Field)
			if err != nil {
				return nil, diagnostics.WrapError(diagnostics.PhaseEval, r.Tok, err)
			}
			cur = next
			continue
		}
		idxLit, err := e.Evaluate(part.Index)
		if err != nil {
			return nil, err
		}
		idxBig, err := idxLit.ToUnsigned(64)
		if err != nil {
			return nil, err
		}
		it, ok := cur.(pattern.Iteratable)
		if !ok {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, r.Tok, "value is not indexable")
		}
		entry := it.Entry(int(idxBig.Int64()))
		if entry == nil {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE002, r.Tok, 0, idxBig.Int64(), cur.TypeName())
		}
		cur = entry
	}
	return cur, nil
}

func memberByName(p pattern.Pattern, name string) (pattern.Pattern, error) {
	var members []pattern.Pattern
	switch t := p.(type) {
	case *pattern.Struct:
		members = t.Members()
	case *pattern.Union:
		members = t.Members()
	case *pattern.Bitfield:
		members = t.Fields()
	default:
		return nil, diagnostics.New(diagnostics.ErrE003, token.Token{}, "value has no members")
	}
	for _, m := range members {
		if m.DisplayName() == name {
			return m, nil
		}
	}
	return nil, diagnostics.New(diagnostics.ErrE001, token.Token{}, name)
}

// patternToLiteral unwraps a resolved Pattern into the Literal an
// expression should evaluate to: a leaf's own scalar value, or a
// Pattern-kind literal wrapping the composite itself so a further member
// access can continue the chain.
func patternToLiteral(p pattern.Pattern) literal.Literal {
	switch p.(type) {
	case *pattern.Struct, *pattern.Union, *pattern.StaticArray, *pattern.DynamicArray, *pattern.Bitfield:
		return literal.Pattern(p)
	default:
		return p.Value()
	}
}

func (e *Evaluator) evalAssignment(a *ast.LValueAssignment) (literal.Literal, error) {
	v, err := e.Evaluate(a.Value)
	if err != nil {
		return literal.Literal{}, err
	}
	switch target := a.Target.(type) {
	case *ast.Identifier:
		if lv, ok := e.scopes.lookup(target.Value); ok {
			lv.value = v
			return v, nil
		}
		e.scopes.declare(target.Value, &localVar{value: v})
		return v, nil
	case *ast.Rvalue:
		p, err := e.resolveRvalue(target)
		if err != nil {
			return literal.Literal{}, err
		}
		p.SetValue(v)
		return v, nil
	default:
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, a.Tok, "invalid assignment target")
	}
}

func (e *Evaluator) evalCast(c *ast.Cast) (literal.Literal, error) {
	v, err := e.Evaluate(c.Value)
	if err != nil {
		return literal.Literal{}, err
	}
	switch c.TypeName {
	case "bool":
		return literal.Bool(v.ToBool()), nil
	case "float", "double":
		d, err := v.ToDouble()
		if err != nil {
			return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, c.Tok, err)
		}
		return literal.Double(d), nil
	case "char", "char16":
		u, err := v.ToUnsigned(32)
		if err != nil {
			return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, c.Tok, err)
		}
		return literal.Char(rune(u.Int64())), nil
	case "str":
		return literal.String(v.ToStringValue(false)), nil
	default:
		bits, signed, err := integerCastWidth(c.TypeName)
		if err != nil {
			return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, c.Tok, err)
		}
		if signed {
			u, err := v.ToSigned(bits)
			if err != nil {
				return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, c.Tok, err)
			}
			return literal.I128(u), nil
		}
		u, err := v.ToUnsigned(bits)
		if err != nil {
			return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, c.Tok, err)
		}
		return literal.U128(u), nil
	}
}

func integerCastWidth(typeName string) (uint, bool, error) {
	info, ok := lookupBuiltinIntWidth(typeName)
	if !ok {
		return 0, false, diagnostics.New(diagnostics.ErrV001, token.Token{}, typeName)
	}
	return info.bits, info.signed, nil
}

type intWidth struct {
	bits   uint
	signed bool
}

func lookupBuiltinIntWidth(name string) (intWidth, bool) {
	table := map[string]intWidth{
		"u8": {8, false}, "u16": {16, false}, "u24": {24, false}, "u32": {32, false},
		"u48": {48, false}, "u64": {64, false}, "u96": {96, false}, "u128": {128, false},
		"s8": {8, true}, "s16": {16, true}, "s24": {24, true}, "s32": {32, true},
		"s48": {48, true}, "s64": {64, true}, "s96": {96, true}, "s128": {128, true},
	}
	v, ok := table[name]
	return v, ok
}

func (e *Evaluator) evalFunctionCall(f *ast.FunctionCall) (literal.Literal, error) {
	args := make([]literal.Literal, len(f.Args))
	for i, a := range f.Args {
		v, err := e.Evaluate(a)
		if err != nil {
			return literal.Literal{}, err
		}
		args[i] = v
	}
	v, err := e.CallNamed(f.Name, args)
	if err != nil {
		return literal.Literal{}, diagnostics.WrapError(diagnostics.PhaseEval, f.Tok, err)
	}
	return v, nil
}

// evalMatch implements §4.3's multi-subject match: every arm's tuple of
// case patterns must match every corresponding subject (wildcard `_`
// matches anything; a RangeExpr/AlternationExpr case pattern expands to an
// inclusive-range or set-membership test instead of equality).
func (e *Evaluator) evalMatch(m *ast.MatchExpression) (literal.Literal, error) {
	subjects := make([]literal.Literal, len(m.Subjects))
	for i, s := range m.Subjects {
		v, err := e.Evaluate(s)
		if err != nil {
			return literal.Literal{}, err
		}
		subjects[i] = v
	}

	var defaultArm *ast.MatchArm
	for i := range m.Arms {
		arm := &m.Arms[i]
		if arm.IsDefault() {
			defaultArm = arm
			continue
		}
		matched, err := e.matchArm(arm, subjects)
		if err != nil {
			return literal.Literal{}, err
		}
		if matched {
			return e.Evaluate(arm.Result)
		}
	}
	if defaultArm != nil {
		return e.Evaluate(defaultArm.Result)
	}
	return literal.Literal{}, nil
}

func (e *Evaluator) matchArm(arm *ast.MatchArm, subjects []literal.Literal) (bool, error) {
	for i, casePattern := range arm.Patterns {
		if casePattern == nil {
			continue // wildcard
		}
		ok, err := e.matchOne(casePattern, subjects[i])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) matchOne(casePattern ast.Expression, subject literal.Literal) (bool, error) {
	switch c := casePattern.(type) {
	case *ast.RangeExpr:
		lo, err := e.Evaluate(c.Low)
		if err != nil {
			return false, err
		}
		hi, err := e.Evaluate(c.High)
		if err != nil {
			return false, err
		}
		return subject.Compare(lo) >= 0 && subject.Compare(hi) <= 0, nil
	case *ast.AlternationExpr:
		for _, opt := range c.Options {
			v, err := e.Evaluate(opt)
			if err != nil {
				return false, err
			}
			if subject.Equal(v) {
				return true, nil
			}
		}
		return false, nil
	default:
		v, err := e.Evaluate(casePattern)
		if err != nil {
			return false, err
		}
		return subject.Equal(v), nil
	}
}

func (e *Evaluator) evalMathematical(m *ast.MathematicalExpression) (literal.Literal, error) {
	right, err := e.Evaluate(m.Right)
	if err != nil {
		return literal.Literal{}, err
	}
	if m.Left == nil {
		return e.evalUnary(m, right)
	}
	left, err := e.Evaluate(m.Left)
	if err != nil {
		return literal.Literal{}, err
	}
	return e.evalBinary(m, left, right)
}

func (e *Evaluator) evalUnary(m *ast.MathematicalExpression, v literal.Literal) (literal.Literal, error) {
	switch m.Operator {
	case token.MINUS:
		if v.Kind() == literal.KindDouble {
			return literal.Double(-v.Double()), nil
		}
		return literal.I128(new(big.Int).Neg(v.Int())), nil
	case token.BANG:
		return literal.Bool(!v.ToBool()), nil
	case token.TILDE:
		u, err := v.ToUnsigned(128)
		if err != nil {
			return literal.Literal{}, err
		}
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
		return literal.U128(new(big.Int).Xor(u, mask)), nil
	default:
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, m.Tok, "unsupported unary operator "+string(m.Operator))
	}
}

func (e *Evaluator) evalBinary(m *ast.MathematicalExpression, l, r literal.Literal) (literal.Literal, error) {
	switch m.Operator {
	case token.AND:
		return literal.Bool(l.ToBool() && r.ToBool()), nil
	case token.OR:
		return literal.Bool(l.ToBool() || r.ToBool()), nil
	case token.EQ:
		return literal.Bool(l.Equal(r)), nil
	case token.NOT_EQ:
		return literal.Bool(!l.Equal(r)), nil
	case token.LT:
		return literal.Bool(l.Compare(r) < 0), nil
	case token.LE:
		return literal.Bool(l.Compare(r) <= 0), nil
	case token.GT:
		return literal.Bool(l.Compare(r) > 0), nil
	case token.GE:
		return literal.Bool(l.Compare(r) >= 0), nil
	}

	if l.Kind() == literal.KindDouble || r.Kind() == literal.KindDouble {
		a, _ := l.ToDouble()
		b, _ := r.ToDouble()
		switch m.Operator {
		case token.PLUS:
			return literal.Double(a + b), nil
		case token.MINUS:
			return literal.Double(a - b), nil
		case token.ASTERISK:
			return literal.Double(a * b), nil
		case token.SLASH:
			if b == 0 {
				return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE007, m.Tok)
			}
			return literal.Double(a / b), nil
		default:
			return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, m.Tok, "unsupported floating point operator "+string(m.Operator))
		}
	}

	a, b := l.Int(), r.Int()
	signed := l.Kind() == literal.KindI128 || r.Kind() == literal.KindI128
	switch m.Operator {
	case token.PLUS:
		return wrapInt(new(big.Int).Add(a, b), signed), nil
	case token.MINUS:
		return wrapInt(new(big.Int).Sub(a, b), signed), nil
	case token.ASTERISK:
		return wrapInt(new(big.Int).Mul(a, b), signed), nil
	case token.SLASH:
		if b.Sign() == 0 {
			return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE007, m.Tok)
		}
		return wrapInt(new(big.Int).Quo(a, b), signed), nil
	case token.PERCENT:
		if b.Sign() == 0 {
			return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE007, m.Tok)
		}
		return wrapInt(new(big.Int).Rem(a, b), signed), nil
	case token.AMP:
		return wrapInt(new(big.Int).And(a, b), signed), nil
	case token.PIPE:
		return wrapInt(new(big.Int).Or(a, b), signed), nil
	case token.CARET:
		return wrapInt(new(big.Int).Xor(a, b), signed), nil
	case token.SHL:
		return wrapInt(new(big.Int).Lsh(a, uint(b.Uint64())), signed), nil
	case token.SHR:
		return wrapInt(new(big.Int).Rsh(a, uint(b.Uint64())), signed), nil
	default:
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, m.Tok, "unsupported operator "+string(m.Operator))
	}
}

func wrapInt(v *big.Int, signed bool) literal.Literal {
	if signed {
		return literal.I128(v)
	}
	return literal.U128(v)
}
