package parser

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/token"
)

// parseTypeRef parses a type name appearing in declaration position: an
// optional `be`/`le` endianness prefix (§6.3), then a builtin (`u32`,
// `float`, ...) or a previously-declared/forward-declared name, optionally
// followed by a `<...>` template-argument list for a templated `using`
// alias (§3.5).
func (p *Parser) parseTypeRef() *ast.TypeDecl {
	endian := ""
	switch p.curToken.Type {
	case token.BE:
		endian = "be"
		p.nextToken()
	case token.LE_KW:
		endian = "le"
		p.nextToken()
	}

	tok := p.curToken
	isBuiltin := p.curTokenIs(token.BUILTIN_T)
	t := &ast.TypeDecl{Tok: tok, Name: tok.Lexeme, Builtin: isBuiltin, Endian: endian}

	if p.peekTokenIs(token.LT) {
		p.nextToken() // consume '<'
		t.TemplateArgs = p.parseTemplateArgList()
	}
	return t
}

func (p *Parser) parseTemplateArgList() []ast.TemplateArg {
	var args []ast.TemplateArg
	p.nextToken()
	args = append(args, p.parseTemplateArg())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseTemplateArg())
	}
	p.expectPeek(token.GT)
	return args
}

func (p *Parser) parseTemplateArg() ast.TemplateArg {
	if p.curTokenIs(token.BUILTIN_T) || (p.curTokenIs(token.IDENT) && !p.isValueExprStart()) {
		return ast.TemplateArg{TypeArg: p.parseTypeRef()}
	}
	return ast.TemplateArg{ValueArg: p.parseExpression(LOWEST)}
}

// isValueExprStart distinguishes a type-argument identifier (a previously
// declared struct/union/enum/bitfield/using name) from a value-argument
// identifier (a constant referenced by name) by peeking: a type argument is
// always followed directly by ',' or '>', a value argument can be followed
// by an operator.
func (p *Parser) isValueExprStart() bool {
	switch p.peekToken.Type {
	case token.COMMA, token.GT:
		return false
	default:
		return true
	}
}

func (p *Parser) parseAttrList() []*ast.Attribute {
	if !p.peekTokenIs(token.ATTR_L) {
		return nil
	}
	p.nextToken() // consume '[['
	var attrs []*ast.Attribute
	p.nextToken()
	attrs = append(attrs, p.parseOneAttr())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		attrs = append(attrs, p.parseOneAttr())
	}
	p.expectPeek(token.ATTR_R)
	return attrs
}

func (p *Parser) parseOneAttr() *ast.Attribute {
	a := &ast.Attribute{Tok: p.curToken, Name: p.curToken.Lexeme}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		a.Args = p.parseExpressionList(token.RPAREN)
	}
	return a
}
