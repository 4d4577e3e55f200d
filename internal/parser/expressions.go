package parser

import (
	"math/big"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.errors.Add(diagnostics.NewPhaseError(diagnostics.PhaseParse, diagnostics.ErrP004, p.curToken, string(p.curToken.Type)))
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.curToken
	v := new(big.Int)
	v.SetString(tok.Lexeme, 0)
	return &ast.LiteralExpr{Tok: tok, Kind: token.INT, Int: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curToken
	var f float64
	fParsed, _, err := big.ParseFloat(tok.Lexeme, 10, 64, big.ToNearestEven)
	if err == nil {
		f, _ = fParsed.Float64()
	}
	return &ast.LiteralExpr{Tok: tok, Kind: token.FLOAT, Float: f}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.LiteralExpr{Tok: p.curToken, Kind: token.STRING, Str: p.curToken.Lexeme}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	r := rune(0)
	if len(p.curToken.Lexeme) > 0 {
		r = rune(p.curToken.Lexeme[0])
	}
	return &ast.LiteralExpr{Tok: p.curToken, Kind: token.CHAR, Char: r}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.LiteralExpr{Tok: p.curToken, Kind: p.curToken.Type, Bool: p.curTokenIs(token.TRUE)}
}

// parseIdentifierOrRvalue parses a bare identifier, and if it's immediately
// followed by `.` or `[`, folds it into an Rvalue path chain (§4.3: member
// access / indexing share one path-walk node).
func (p *Parser) parseIdentifierOrRvalue() ast.Expression {
	ident := &ast.Identifier{Tok: p.curToken, Value: p.curToken.Lexeme}
	if !p.peekTokenIs(token.DOT) && !p.peekTokenIs(token.LBRACKET) {
		return ident
	}
	return p.parseRvaluePath(ident.Tok, ident)
}

// parseThisOrParent parses a bare `this`/`parent` keyword as the root of an
// Rvalue path (Base == nil; the keyword's own token tells the evaluator
// which implicit scope to start from).
func (p *Parser) parseThisOrParent() ast.Expression {
	return p.parseRvaluePath(p.curToken, nil)
}

func (p *Parser) parseRvaluePath(tok token.Token, base ast.Expression) ast.Expression {
	r := &ast.Rvalue{Tok: tok, Base: base}
	for p.peekTokenIs(token.DOT) || p.peekTokenIs(token.LBRACKET) {
		if p.peekTokenIs(token.DOT) {
			p.nextToken() // consume '.'
			if !p.expectPeek(token.IDENT) {
				return r
			}
			r.Path = append(r.Path, ast.RvaluePart{Field: p.curToken.Lexeme})
			continue
		}
		p.nextToken() // consume '['
		p.nextToken()
		idx := p.parseExpression(LOWEST)
		if !p.expectPeek(token.RBRACKET) {
			return r
		}
		r.Path = append(r.Path, ast.RvaluePart{Index: idx})
	}
	return r
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	op := p.curToken.Type
	p.nextToken()
	right := p.parseExpression(PREFIX)
	return &ast.MathematicalExpression{Tok: tok, Operator: op, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := p.curToken.Type
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.MathematicalExpression{Tok: tok, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseTernaryExpression(cond ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	then := p.parseExpression(LOWEST)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	elseExpr := p.parseExpression(TERNARY)
	return &ast.TernaryExpression{Tok: tok, Condition: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseAssignExpression(target ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	val := p.parseExpression(TERNARY)
	return &ast.LValueAssignment{Tok: tok, Target: target, Value: val}
}

// parseScopeExpression folds a `namespace::name` chain into a single
// Identifier whose Value is the "::"-joined dotted path (§6.2's builtin
// function ABI addresses registry entries as "std::mem::read_unsigned"
// etc); only identifiers can appear on either side of "::", never an
// arbitrary expression.
func (p *Parser) parseScopeExpression(left ast.Expression) ast.Expression {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errors.Add(diagnostics.NewPhaseError(diagnostics.PhaseParse, diagnostics.ErrP002, p.curToken, string(p.curToken.Type)))
		return left
	}
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return left
	}
	return &ast.Identifier{Tok: tok, Value: ident.Value + "::" + p.curToken.Lexeme}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	ident, ok := fn.(*ast.Identifier)
	if !ok {
		p.errors.Add(diagnostics.NewPhaseError(diagnostics.PhaseParse, diagnostics.ErrP001, p.curToken, "function name", "expression"))
		return fn
	}
	tok := p.curToken
	call := &ast.FunctionCall{Tok: tok, Name: ident.Value}
	call.Args = p.parseExpressionList(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseCastOrTypeName handles `u32(expr)` casts (§4.3). A builtin-type
// token not followed by '(' has no other meaning as an expression and is a
// parse error at the call site (it's only otherwise valid in type
// position, handled by parseTypeRef).
func (p *Parser) parseCastOrTypeName() ast.Expression {
	tok := p.curToken
	typeName := p.curToken.Lexeme
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.Cast{Tok: tok, Value: val, TypeName: typeName}
}

// parseMatchExpression parses `match (subj, ...) { (case, ...): result, ... }`
// (§4.3). Each case slot accepts a wildcard `_`, a range `lo...hi`, an
// alternation `a|b|c`, or a plain expression.
func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	subjects := []ast.Expression{p.parseExpression(LOWEST)}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		subjects = append(subjects, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	m := &ast.MatchExpression{Tok: tok, Subjects: subjects}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		m.Arms = append(m.Arms, p.parseMatchArm())
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return m
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	if !p.curTokenIs(token.LPAREN) {
		// single-subject match: bare case pattern, no wrapping parens.
		pat := p.parseCasePattern()
		p.expectPeek(token.COLON)
		p.nextToken()
		result := p.parseExpression(LOWEST)
		return ast.MatchArm{Patterns: []ast.Expression{pat}, Result: result}
	}

	p.nextToken()
	var patterns []ast.Expression
	patterns = append(patterns, p.parseCasePattern())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		patterns = append(patterns, p.parseCasePattern())
	}
	p.expectPeek(token.RPAREN)
	p.expectPeek(token.COLON)
	p.nextToken()
	result := p.parseExpression(LOWEST)
	return ast.MatchArm{Patterns: patterns, Result: result}
}

// parseCasePattern parses one slot of a match arm's case tuple.
func (p *Parser) parseCasePattern() ast.Expression {
	if p.curTokenIs(token.UNDERSCORE) {
		return nil
	}
	tok := p.curToken
	first := p.parseExpression(SUM)
	if p.peekTokenIs(token.DOTDOTDOT) {
		p.nextToken()
		p.nextToken()
		high := p.parseExpression(SUM)
		return &ast.RangeExpr{Tok: tok, Low: first, High: high}
	}
	if p.peekTokenIs(token.PIPE) {
		options := []ast.Expression{first}
		for p.peekTokenIs(token.PIPE) {
			p.nextToken()
			p.nextToken()
			options = append(options, p.parseExpression(SUM))
		}
		return &ast.AlternationExpr{Tok: tok, Options: options}
	}
	return first
}
