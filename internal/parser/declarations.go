package parser

import (
	"math/big"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/token"
)

// parseStructDecl parses `struct Name [: Base, ...] { members } [[attrs]];`
// (§3.3). Inheritance splices a base's members ahead of the struct's own at
// evaluation time (supplemented from original_source; see ast.StructDecl).
func (p *Parser) parseStructDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	s := &ast.StructDecl{Tok: tok, Name: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		s.Inherits = append(s.Inherits, p.parseTypeRef())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			s.Inherits = append(s.Inherits, p.parseTypeRef())
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		p.parseMembersInto(&s.Members)
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	s.Attrs = p.parseAttrList()
	p.expectPeek(token.SEMI)
	return s
}

// parseUnionDecl parses `union Name { members } [[attrs]];` (§3.3): every
// member starts at offset 0, so the evaluator rewinds the cursor between
// members rather than this parser needing to do anything special.
func (p *Parser) parseUnionDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	u := &ast.UnionDecl{Tok: tok, Name: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		p.parseMembersInto(&u.Members)
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	u.Attrs = p.parseAttrList()
	p.expectPeek(token.SEMI)
	return u
}

// parseMembersInto parses one member slot starting at the current token and
// appends it (or, for a conditional group, every member it wraps) to dst.
// `if (cond) { members }` applies cond to every member declared inside it,
// letting a struct/union body nest conditional groups without a dedicated
// AST node of its own.
func (p *Parser) parseMembersInto(dst *[]*ast.Member) {
	if p.curTokenIs(token.IF) {
		if !p.expectPeek(token.LPAREN) {
			return
		}
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		if !p.expectPeek(token.RPAREN) {
			return
		}
		if !p.expectPeek(token.LBRACE) {
			return
		}
		for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
			p.nextToken()
			before := len(*dst)
			p.parseMembersInto(dst)
			for i := before; i < len(*dst); i++ {
				(*dst)[i].Condition = cond
			}
		}
		p.expectPeek(token.RBRACE)
		if p.peekTokenIs(token.SEMI) {
			p.nextToken()
		}
		return
	}

	m := p.parseOneMember()
	if m != nil {
		*dst = append(*dst, m)
	}
}

// parseOneMember parses `[be|le] Type name[len] [[attrs]] [@ expr];`.
func (p *Parser) parseOneMember() *ast.Member {
	tok := p.curToken
	td := p.parseTypeRef()
	if !p.expectPeek(token.IDENT) {
		p.syncToSemicolon()
		return nil
	}
	m := &ast.Member{Tok: tok, Name: p.curToken.Lexeme, Type: td}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if !p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			td.ArrayLen = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(token.RBRACKET) {
			p.syncToSemicolon()
			return nil
		}
	}

	m.Attrs = p.parseAttrList()
	if p.peekTokenIs(token.AT) {
		p.nextToken()
		p.nextToken()
		m.Placement = p.parseExpression(TERNARY)
	}
	if !p.expectPeek(token.SEMI) {
		p.syncToSemicolon()
	}
	return m
}

// parseEnumDecl parses `enum Name [: Underlying] { A = 0, B = 1...5 };`
// (§3.3); an omitted underlying type defaults to u32.
func (p *Parser) parseEnumDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	e := &ast.EnumDecl{Tok: tok, Name: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		e.Underlying = p.parseTypeRef()
	} else {
		e.Underlying = &ast.TypeDecl{Tok: tok, Name: "u32", Builtin: true}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			p.syncToSemicolon()
			continue
		}
		name := p.curToken.Lexeme

		var minExpr, maxExpr ast.Expression
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			minExpr = p.parseExpression(SUM)
			maxExpr = minExpr
			if p.peekTokenIs(token.DOTDOTDOT) {
				p.nextToken()
				p.nextToken()
				maxExpr = p.parseExpression(SUM)
			}
		} else {
			// C-like auto-increment: an entry with no explicit `= value`
			// continues from the previous entry's value + 1 (0 for the
			// first entry).
			minExpr = p.nextEnumValue(tok, e.EntryMax)
			maxExpr = minExpr
		}

		e.EntryNames = append(e.EntryNames, name)
		e.EntryMin = append(e.EntryMin, minExpr)
		e.EntryMax = append(e.EntryMax, maxExpr)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	e.Attrs = p.parseAttrList()
	p.expectPeek(token.SEMI)
	return e
}

// nextEnumValue builds the implicit value of an enum entry with no `=
// value`: zero for the first entry, otherwise the previous entry's max
// value plus one.
func (p *Parser) nextEnumValue(tok token.Token, prevMax []ast.Expression) ast.Expression {
	if len(prevMax) == 0 {
		return &ast.LiteralExpr{Tok: tok, Kind: token.INT, Int: big.NewInt(0)}
	}
	one := &ast.LiteralExpr{Tok: tok, Kind: token.INT, Int: big.NewInt(1)}
	return &ast.MathematicalExpression{Tok: tok, Operator: token.PLUS, Left: prevMax[len(prevMax)-1], Right: one}
}

// parseBitfieldDecl parses `bitfield Name { Type [name] : bits; ... };`
// (§3.3); a field is anonymous padding when its name is omitted, and its
// signedness comes from the field's own leading type the same way a
// top-level declaration's does.
func (p *Parser) parseBitfieldDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	b := &ast.BitfieldDecl{Tok: tok, Name: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		f := p.parseBitfieldField()
		if f != nil {
			b.Fields = append(b.Fields, f)
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	b.Attrs = p.parseAttrList()
	p.expectPeek(token.SEMI)
	return b
}

// parseBitfieldField parses one member of a bitfield body (§3.3): a plain
// sized field (`[unsigned|signed] name : bits;`, the leading type
// qualifier optional), or a member nested by a previously declared
// bitfield type (`NestedBitfield c;`), optionally as an array
// (`NestedBitfield f[count];`, a BitfieldArray).
func (p *Parser) parseBitfieldField() *ast.BitfieldFieldDecl {
	tok := p.curToken

	// No leading type at all: the current token is already the field's
	// own name, immediately followed by ':'.
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		name := p.curToken.Lexeme
		p.nextToken() // ':'
		p.nextToken()
		size := p.parseExpression(LOWEST)
		f := &ast.BitfieldFieldDecl{Tok: tok, Name: name, BitSize: size}
		f.Attrs = p.parseAttrList()
		if !p.expectPeek(token.SEMI) {
			p.syncToSemicolon()
		}
		return f
	}

	td := p.parseTypeRef()
	signed := td.Name == "signed" || (td.Builtin && len(td.Name) > 0 && td.Name[0] == 's')

	name := ""
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = p.curToken.Lexeme
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		size := p.parseExpression(LOWEST)
		f := &ast.BitfieldFieldDecl{Tok: tok, Name: name, BitSize: size, Signed: signed}
		f.Attrs = p.parseAttrList()
		if !p.expectPeek(token.SEMI) {
			p.syncToSemicolon()
		}
		return f
	}

	// No ':' after the name: td names a bitfield type being nested in,
	// not a builtin/qualifier sizing an inline field.
	f := &ast.BitfieldFieldDecl{Tok: tok, Name: name, Type: td}
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		p.nextToken()
		f.ArrayLen = p.parseExpression(LOWEST)
		if !p.expectPeek(token.RBRACKET) {
			p.syncToSemicolon()
			return nil
		}
	}
	f.Attrs = p.parseAttrList()
	if !p.expectPeek(token.SEMI) {
		p.syncToSemicolon()
	}
	return f
}

// parseUsingDecl parses `using Name[<params>] = Type;` (§3.5).
func (p *Parser) parseUsingDecl() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	u := &ast.UsingDecl{Tok: tok, Name: p.curToken.Lexeme}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		p.nextToken()
		u.Params = append(u.Params, p.parseTemplateParam())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			u.Params = append(u.Params, p.parseTemplateParam())
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	u.Type = p.parseTypeRef()
	p.expectPeek(token.SEMI)
	return u
}

func (p *Parser) parseTemplateParam() ast.TemplateParam {
	if p.curTokenIs(token.BUILTIN_T) && p.curToken.Lexeme == "auto" {
		p.nextToken()
		return ast.TemplateParam{Name: p.curToken.Lexeme, IsAuto: true}
	}
	return ast.TemplateParam{Name: p.curToken.Lexeme}
}

// parseFunctionDefinition parses `fn name(params) { body }` (§4.3). A
// parameter may be typed (`u32 x`), untyped (`x`, bound dynamically), or a
// trailing `...args` pack (§3.5/functions.go's variadic-call support).
func (p *Parser) parseFunctionDefinition() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn := &ast.FunctionDefinition{Tok: tok, Name: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		fn.Params = append(fn.Params, p.parseFunctionParam())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			fn.Params = append(fn.Params, p.parseFunctionParam())
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatements()
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return fn
}

func (p *Parser) parseFunctionParam() ast.FunctionParam {
	if p.curTokenIs(token.DOTDOTDOT) {
		p.nextToken()
		return ast.FunctionParam{Name: p.curToken.Lexeme, Variadic: true}
	}
	if p.curTokenIs(token.BUILTIN_T) || (p.curTokenIs(token.IDENT) && p.peekTokenIs(token.IDENT)) {
		td := p.parseTypeRef()
		p.nextToken()
		return ast.FunctionParam{Name: p.curToken.Lexeme, Type: td}
	}
	return ast.FunctionParam{Name: p.curToken.Lexeme}
}

// parseBlockStatements parses `{ stmt... }` with curToken on the opening
// brace, stopping at and consuming the matching closing brace.
func (p *Parser) parseBlockStatements() []ast.Statement {
	var stmts []ast.Statement
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expectPeek(token.RBRACE)
	return stmts
}
