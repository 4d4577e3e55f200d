// Package parser turns a flat token.Token slice from internal/lexer into an
// ast.Program. Grounded on the teacher's internal/parser/parser.go: the same
// Pratt-parser skeleton (curToken/peekToken, prefixParseFns/infixParseFns
// maps keyed by token.Type, a precedences table, expectPeek/peekError
// helpers) rewritten over this language's much smaller grammar -- no
// user-definable operators, no module pipeline, so the parser pulls tokens
// from an in-memory slice instead of the teacher's bufferedLexer/
// pipeline.TokenStream wrapper.
package parser

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

const (
	LOWEST = iota
	TERNARY
	LOGIC_OR
	LOGIC_AND
	EQUALS
	LESSGREATER
	BITOR
	BITXOR
	BITAND
	SHIFT
	SUM
	PRODUCT
	PREFIX
	CALL
	INDEX
)

var precedences = map[token.Type]int{
	token.ASSIGN:   TERNARY,
	token.QUESTION: TERNARY,
	token.OR:       LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LE:       LESSGREATER,
	token.GE:       LESSGREATER,
	token.PIPE:     BITOR,
	token.CARET:    BITXOR,
	token.AMP:      BITAND,
	token.SHL:      SHIFT,
	token.SHR:      SHIFT,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL,
	token.LBRACKET: INDEX,
	token.DOT:      INDEX,
	token.SCOPE:    INDEX,
}

// Parser produces an *ast.Program from a pre-tokenized source. Unlike the
// teacher, there's no separate lexer-processor stage: Tokenize (internal/
// lexer) already strips preprocessor directives, so the parser only ever
// sees the tokens that matter to the grammar.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	errors *diagnostics.Collector
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens, errors: diagnostics.NewCollector(50)}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifierOrRvalue)
	p.registerPrefix(token.THIS, p.parseThisOrParent)
	p.registerPrefix(token.PARENT, p.parseThisOrParent)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TILDE, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.BUILTIN_T, p.parseCastOrTypeName)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.AMP, p.parseInfixExpression)
	p.registerInfix(token.PIPE, p.parseInfixExpression)
	p.registerInfix(token.CARET, p.parseInfixExpression)
	p.registerInfix(token.SHL, p.parseInfixExpression)
	p.registerInfix(token.SHR, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.OR, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.LE, p.parseInfixExpression)
	p.registerInfix(token.GE, p.parseInfixExpression)
	p.registerInfix(token.QUESTION, p.parseTernaryExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.SCOPE, p.parseScopeExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() *diagnostics.Collector { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors.Add(diagnostics.NewPhaseError(diagnostics.PhaseParse, diagnostics.ErrP001, p.peekToken, string(t), string(p.peekToken.Type)))
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

// ParseProgram parses the full token stream into a Program, continuing past
// a malformed top-level item (recorded in Errors()) by skipping to the next
// semicolon so one bad declaration doesn't hide every error after it.
func ParseProgram(tokens []token.Token) (*ast.Program, *diagnostics.Collector) {
	p := New(tokens)
	prog := &ast.Program{Tok: p.curToken}
	for !p.curTokenIs(token.EOF) {
		start := p.curToken
		stmt := p.parseTopLevel()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
			p.nextToken()
		} else if p.curToken == start {
			p.errors.Add(diagnostics.NewPhaseError(diagnostics.PhaseParse, diagnostics.ErrP004, p.curToken, string(p.curToken.Type)))
			p.syncToSemicolon()
		}
	}
	return prog, p.errors
}

func (p *Parser) syncToSemicolon() {
	for !p.curTokenIs(token.SEMI) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.SEMI) {
		p.nextToken()
	}
}

func (p *Parser) parseTopLevel() ast.Statement {
	switch p.curToken.Type {
	case token.STRUCT:
		return p.parseStructDecl()
	case token.UNION:
		return p.parseUnionDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.BITFIELD:
		return p.parseBitfieldDecl()
	case token.USING:
		return p.parseUsingDecl()
	case token.FN:
		return p.parseFunctionDefinition()
	default:
		return p.parseStatement()
	}
}
