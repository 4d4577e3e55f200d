// Package ast defines the syntax tree produced by internal/parser and
// walked by internal/evaluator (spec §4.3). Every node follows the
// teacher's own shape almost file-for-file: a source token + plain fields
// + three one-line methods (Accept/TokenLiteral/GetToken), with all
// dispatch going through a single Visitor interface rather than type
// switches scattered through the evaluator.
package ast

import "github.com/werwolv/patternlang/internal/token"

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	Accept(v Visitor)
}

// Statement is a Node executed for effect (declarations, control flow).
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node evaluated to a literal.Literal.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of every parsed source file.
type Program struct {
	Tok        token.Token
	Statements []Statement
}

func (p *Program) Accept(v Visitor)        { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string    { return p.Tok.Lexeme }
func (p *Program) GetToken() token.Token   { return p.Tok }

// Identifier is a bare name reference, resolved against the current scope
// chain (§3.4) or, failing that, the template parameter stack (§3.5).
type Identifier struct {
	Tok   token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Tok.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Tok }

// Attribute is one `[[name(args...)]]` annotation attached to a type,
// member, or variable declaration (§4.5).
type Attribute struct {
	Tok  token.Token
	Name string
	Args []Expression
}

func (a *Attribute) GetToken() token.Token { return a.Tok }
