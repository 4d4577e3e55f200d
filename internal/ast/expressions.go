package ast

import (
	"math/big"

	"github.com/werwolv/patternlang/internal/token"
)

// LiteralExpr is a literal of any §3.1 kind appearing directly in source
// (an integer, float, char, string, or boolean constant).
type LiteralExpr struct {
	Tok   token.Token
	Kind  token.Type // INT, FLOAT, CHAR, STRING, TRUE, FALSE
	Int   *big.Int   // INT
	Float float64    // FLOAT
	Char  rune       // CHAR
	Str   string     // STRING
	Bool  bool       // TRUE/FALSE
}

func (l *LiteralExpr) Accept(v Visitor)      { v.VisitLiteralExpr(l) }
func (l *LiteralExpr) expressionNode()       {}
func (l *LiteralExpr) TokenLiteral() string  { return l.Tok.Lexeme }
func (l *LiteralExpr) GetToken() token.Token { return l.Tok }

// Rvalue is a member-access / array-index / this-or-parent-relative path
// expression, e.g. `this.header.magic` or `data[i].value`.
type Rvalue struct {
	Tok   token.Token
	Base  Expression // nil for a bare `this`/`parent`
	Path  []RvaluePart
}

// RvaluePart is one `.field` or `[index]` step in an Rvalue path.
type RvaluePart struct {
	Field string     // set for `.field`
	Index Expression // set for `[index]`
}

func (r *Rvalue) Accept(v Visitor)      { v.VisitRvalue(r) }
func (r *Rvalue) expressionNode()       {}
func (r *Rvalue) TokenLiteral() string  { return r.Tok.Lexeme }
func (r *Rvalue) GetToken() token.Token { return r.Tok }

// LValueAssignment is `target = value` used both as a statement and,
// per the surface grammar, as an expression (assignment yields the
// assigned value).
type LValueAssignment struct {
	Tok    token.Token
	Target Expression
	Value  Expression
}

func (a *LValueAssignment) Accept(v Visitor)      { v.VisitLValueAssignment(a) }
func (a *LValueAssignment) expressionNode()       {}
func (a *LValueAssignment) TokenLiteral() string  { return a.Tok.Lexeme }
func (a *LValueAssignment) GetToken() token.Token { return a.Tok }

// MathematicalExpression is a binary or unary operator application.
type MathematicalExpression struct {
	Tok      token.Token
	Operator token.Type
	Left     Expression // nil for unary operators
	Right    Expression
}

func (m *MathematicalExpression) Accept(v Visitor)      { v.VisitMathematicalExpression(m) }
func (m *MathematicalExpression) expressionNode()       {}
func (m *MathematicalExpression) TokenLiteral() string  { return m.Tok.Lexeme }
func (m *MathematicalExpression) GetToken() token.Token { return m.Tok }

// Cast is an explicit `value as type` conversion.
type Cast struct {
	Tok      token.Token
	Value    Expression
	TypeName string
}

func (c *Cast) Accept(v Visitor)      { v.VisitCast(c) }
func (c *Cast) expressionNode()       {}
func (c *Cast) TokenLiteral() string  { return c.Tok.Lexeme }
func (c *Cast) GetToken() token.Token { return c.Tok }

// TernaryExpression is `condition ? then : else`.
type TernaryExpression struct {
	Tok       token.Token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t *TernaryExpression) Accept(v Visitor)      { v.VisitTernaryExpression(t) }
func (t *TernaryExpression) expressionNode()       {}
func (t *TernaryExpression) TokenLiteral() string  { return t.Tok.Lexeme }
func (t *TernaryExpression) GetToken() token.Token { return t.Tok }

// FunctionCall is `name(args...)`, resolved against either a user-defined
// function or the builtin table (§6.2).
type FunctionCall struct {
	Tok    token.Token
	Name   string
	Args   []Expression
}

func (f *FunctionCall) Accept(v Visitor)      { v.VisitFunctionCall(f) }
func (f *FunctionCall) expressionNode()       {}
func (f *FunctionCall) TokenLiteral() string  { return f.Tok.Lexeme }
func (f *FunctionCall) GetToken() token.Token { return f.Tok }

// MatchExpression is `match (p1, ..., pN) { (c1, ..., cN): body; (_,...): default; }`
// (§4.3). A single-subject match `match (p) { c: body; }` is the Subjects
// len-1 special case.
type MatchExpression struct {
	Tok      token.Token
	Subjects []Expression
	Arms     []MatchArm
}

// MatchArm is one case-tuple -> result entry. Patterns has one entry per
// Subject; a nil entry is the `_` wildcard, which matches anything and, if
// every entry in the tuple is `_`, marks the arm as the (at most one)
// default.
type MatchArm struct {
	Patterns []Expression
	Result   Expression
}

// IsDefault reports whether every pattern in the tuple is the `_` wildcard.
func (a MatchArm) IsDefault() bool {
	for _, p := range a.Patterns {
		if p != nil {
			return false
		}
	}
	return true
}

func (m *MatchExpression) Accept(v Visitor)      { v.VisitMatchExpression(m) }
func (m *MatchExpression) expressionNode()       {}
func (m *MatchExpression) TokenLiteral() string  { return m.Tok.Lexeme }
func (m *MatchExpression) GetToken() token.Token { return m.Tok }

// RangeExpr is a `a...b` inclusive-range case pattern, compiled to
// `subject >= a && subject <= b` (§4.3 match semantics).
type RangeExpr struct {
	Tok        token.Token
	Low, High  Expression
}

func (r *RangeExpr) Accept(v Visitor)      { v.VisitRangeExpr(r) }
func (r *RangeExpr) expressionNode()       {}
func (r *RangeExpr) TokenLiteral() string  { return r.Tok.Lexeme }
func (r *RangeExpr) GetToken() token.Token { return r.Tok }

// AlternationExpr is a `a|b|c` case pattern, compiled to
// `subject==a || subject==b || subject==c`.
type AlternationExpr struct {
	Tok     token.Token
	Options []Expression
}

func (a *AlternationExpr) Accept(v Visitor)      { v.VisitAlternationExpr(a) }
func (a *AlternationExpr) expressionNode()       {}
func (a *AlternationExpr) TokenLiteral() string  { return a.Tok.Lexeme }
func (a *AlternationExpr) GetToken() token.Token { return a.Tok }
