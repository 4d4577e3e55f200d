package ast

import "github.com/werwolv/patternlang/internal/token"

// ExpressionStatement wraps a bare expression used for its side effect
// (an assignment, a function call).
type ExpressionStatement struct {
	Tok  token.Token
	Expr Expression
}

func (s *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(s) }
func (s *ExpressionStatement) statementNode()        {}
func (s *ExpressionStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *ExpressionStatement) GetToken() token.Token { return s.Tok }

// ConditionalStatement is `if (cond) { thenBranch } else { elseBranch }`.
type ConditionalStatement struct {
	Tok         token.Token
	Condition   Expression
	Then        []Statement
	Else        []Statement
}

func (s *ConditionalStatement) Accept(v Visitor)      { v.VisitConditionalStatement(s) }
func (s *ConditionalStatement) statementNode()        {}
func (s *ConditionalStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *ConditionalStatement) GetToken() token.Token { return s.Tok }

// WhileStatement is `while (cond) { body }`.
type WhileStatement struct {
	Tok       token.Token
	Condition Expression
	Body      []Statement
}

func (s *WhileStatement) Accept(v Visitor)      { v.VisitWhileStatement(s) }
func (s *WhileStatement) statementNode()        {}
func (s *WhileStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *WhileStatement) GetToken() token.Token { return s.Tok }

// ForStatement is `for (init; cond; advance) { body }`.
type ForStatement struct {
	Tok       token.Token
	Init      Statement
	Condition Expression
	Advance   Statement
	Body      []Statement
}

func (s *ForStatement) Accept(v Visitor)      { v.VisitForStatement(s) }
func (s *ForStatement) statementNode()        {}
func (s *ForStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *ForStatement) GetToken() token.Token { return s.Tok }

// TryCatchStatement is `try { body } catch { handler }`, used to recover
// from evaluation errors raised while reading the data source (§7).
type TryCatchStatement struct {
	Tok     token.Token
	Body    []Statement
	Handler []Statement
}

func (s *TryCatchStatement) Accept(v Visitor)      { v.VisitTryCatchStatement(s) }
func (s *TryCatchStatement) statementNode()        {}
func (s *TryCatchStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *TryCatchStatement) GetToken() token.Token { return s.Tok }

// ControlFlowKind distinguishes break/continue/return.
type ControlFlowKind uint8

const (
	CFBreak ControlFlowKind = iota
	CFContinue
	CFReturn
)

// ControlFlowStatement is `break;`/`continue;`/`return [expr];`, carried as
// an explicit signal through the evaluator rather than a Go panic, matching
// the teacher's own BREAK_SIGNAL_OBJ/CONTINUE_SIGNAL_OBJ sentinel-object
// pattern (Design Notes §9).
type ControlFlowStatement struct {
	Tok   token.Token
	Kind  ControlFlowKind
	Value Expression // non-nil only for CFReturn
}

func (s *ControlFlowStatement) Accept(v Visitor)      { v.VisitControlFlowStatement(s) }
func (s *ControlFlowStatement) statementNode()        {}
func (s *ControlFlowStatement) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *ControlFlowStatement) GetToken() token.Token { return s.Tok }
