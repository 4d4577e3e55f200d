package parser

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/token"
)

// parseStatement parses one statement inside a function body, struct/union
// conditional group, or top-level program. The teacher's parser dispatches
// purely on curToken since its grammar has no type-name declarations
// competing with expression statements; this grammar does, so an IDENT at
// statement start needs one token of lookahead to tell a declaration
// (`MyStruct v;`) from an expression statement (`v = 5;`, `foo();`).
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseConditionalStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.TRY:
		return p.parseTryCatchStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
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
	case token.IN, token.OUT, token.BE, token.LE_KW, token.BUILTIN_T:
		d := p.parseVariableDecl()
		p.expectPeek(token.SEMI)
		return d
	case token.IDENT:
		if p.looksLikeDeclarationStart() {
			d := p.parseVariableDecl()
			p.expectPeek(token.SEMI)
			return d
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// looksLikeDeclarationStart decides, from one token of lookahead past a
// leading IDENT, whether this is a type name starting a declaration
// (`Type name;`, `Type *name : addr;`, `Type<N> name;`) rather than a
// reference to an existing value (`x = 1;`, `x[0] = 1;`, `foo();`, `x.y;`).
func (p *Parser) looksLikeDeclarationStart() bool {
	switch p.peekToken.Type {
	case token.IDENT, token.ASTERISK, token.LT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseConditionalStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	thenB := p.parseBlockStatements()

	var elseB []ast.Statement
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			elseB = []ast.Statement{p.parseConditionalStatement()}
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			elseB = p.parseBlockStatements()
		}
	}
	return &ast.ConditionalStatement{Tok: tok, Condition: cond, Then: thenB, Else: elseB}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatements()
	return &ast.WhileStatement{Tok: tok, Condition: cond, Body: body}
}

// parseForStatement parses `for (init; cond; advance) { body }`. init and
// advance reuse parseForClauseStatement, which leaves the trailing
// separator (';' or ')') for this function to consume explicitly, since the
// ordinary statement parsers always consume their own trailing ';'.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	var init ast.Statement
	if !p.curTokenIs(token.SEMI) {
		init = p.parseForClauseStatement()
	}
	if !p.expectPeek(token.SEMI) {
		return nil
	}
	p.nextToken()

	var cond ast.Expression
	if !p.curTokenIs(token.SEMI) {
		cond = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.SEMI) {
		return nil
	}
	p.nextToken()

	var advance ast.Statement
	if !p.curTokenIs(token.RPAREN) {
		advance = p.parseForClauseStatement()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatements()
	return &ast.ForStatement{Tok: tok, Init: init, Condition: cond, Advance: advance, Body: body}
}

// parseForClauseStatement parses a declaration or expression for a for-loop's
// init/advance clause without consuming a trailing separator.
func (p *Parser) parseForClauseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.BE, token.LE_KW, token.BUILTIN_T, token.IN, token.OUT:
		return p.parseVariableDecl()
	case token.IDENT:
		if p.looksLikeDeclarationStart() {
			return p.parseVariableDecl()
		}
	}
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	return &ast.ExpressionStatement{Tok: tok, Expr: expr}
}

func (p *Parser) parseTryCatchStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatements()

	var handler []ast.Statement
	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		handler = p.parseBlockStatements()
	}
	return &ast.TryCatchStatement{Tok: tok, Body: body, Handler: handler}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.curToken
	p.expectPeek(token.SEMI)
	return &ast.ControlFlowStatement{Tok: tok, Kind: ast.CFBreak}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	tok := p.curToken
	p.expectPeek(token.SEMI)
	return &ast.ControlFlowStatement{Tok: tok, Kind: ast.CFContinue}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	var val ast.Expression
	if !p.peekTokenIs(token.SEMI) {
		p.nextToken()
		val = p.parseExpression(LOWEST)
	}
	p.expectPeek(token.SEMI)
	return &ast.ControlFlowStatement{Tok: tok, Kind: ast.CFReturn, Value: val}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	p.expectPeek(token.SEMI)
	return &ast.ExpressionStatement{Tok: tok, Expr: expr}
}

// parseVariableDecl parses `[in|out] [be|le] Type name [...]` in any of its
// three shapes (plain, array, pointer) without consuming the trailing ';' --
// callers (parseStatement, parseForClauseStatement) are responsible for
// that, since a for-loop's init/advance clause is terminated by ';'/')'
// rather than always by ';'.
func (p *Parser) parseVariableDecl() ast.Statement {
	tok := p.curToken
	inVar, outVar := false, false
	switch p.curToken.Type {
	case token.IN:
		inVar = true
		p.nextToken()
	case token.OUT:
		outVar = true
		p.nextToken()
	}

	td := p.parseTypeRef()

	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken() // consume '*'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := p.curToken.Lexeme
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		addr := p.parseTypeRef()
		d := &ast.PointerVariableDecl{Tok: tok, Name: name, Type: td, AddressType: addr}
		d.Attrs = p.parseAttrList()
		p.parsePlacement(&d.Placement, &d.PlacementSection)
		if d.Attrs == nil {
			d.Attrs = p.parseAttrList()
		}
		return d
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // consume '['
		ad := &ast.ArrayVariableDecl{Tok: tok, Name: name, Type: td}
		switch {
		case p.peekTokenIs(token.RBRACKET):
			// dynamic, unbounded length
		case p.peekTokenIs(token.WHILE):
			p.nextToken()
			if !p.expectPeek(token.LPAREN) {
				return nil
			}
			p.nextToken()
			ad.WhileCond = p.parseExpression(LOWEST)
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		default:
			p.nextToken()
			ad.Length = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		ad.Attrs = p.parseAttrList()
		p.parsePlacement(&ad.Placement, &ad.PlacementSection)
		return ad
	}

	d := &ast.VariableDecl{Tok: tok, Name: name, Type: td, InVariable: inVar, OutVariable: outVar}
	d.Attrs = p.parseAttrList()
	p.parsePlacement(&d.Placement, &d.PlacementSection)
	if d.Placement == nil && p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		d.Init = p.parseExpression(TERNARY)
	}
	return d
}

// parsePlacement parses an optional `@ expr [in expr]` suffix (§4.2) into
// the given placement/section expression slots.
func (p *Parser) parsePlacement(placement, placementSection *ast.Expression) {
	if !p.peekTokenIs(token.AT) {
		return
	}
	p.nextToken() // consume '@'
	p.nextToken()
	*placement = p.parseExpression(TERNARY)
	if p.peekTokenIs(token.IN) {
		p.nextToken()
		p.nextToken()
		*placementSection = p.parseExpression(TERNARY)
	}
}
