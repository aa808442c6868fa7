// Package parser builds the ast.Statement/ast.Expression trees from a
// lexer.Token stream, per spec.md section 4.2. It is a hand-written
// recursive-descent parser with local error recovery at statement
// boundaries (spec.md section 4.2 contract).
package parser

import (
	"strconv"

	"canto/ast"
	"canto/diag"
	"canto/lexer"
)

// Parser consumes a token list and produces a Program.
type Parser struct {
	toks     []lexer.Token
	pos      int
	reporter *diag.Reporter
}

// New creates a Parser over tokens, reporting diagnostics to reporter.
func New(tokens []lexer.Token, reporter *diag.Reporter) *Parser {
	return &Parser{toks: tokens, reporter: reporter}
}

// Parse scans the whole token list into a top-level statement list.
func (p *Parser) Parse() []ast.Statement {
	var stmts []ast.Statement
	for !p.atEnd() {
		stmt := p.parseStatementRecovering()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.Eof }

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) prev() lexer.Token { return p.toks[p.pos-1] }

func (p *Parser) peekAt(off int) lexer.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() lexer.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.prev()
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) checkKeyword(word string) bool {
	return p.cur().Kind == lexer.Keyword && p.cur().Lexeme == word
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(k lexer.Kind, context string) (lexer.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.reporter.Error(p.cur().Loc, diag.KindParse,
		"expected %s %s, found %q", k, context, p.cur().Lexeme)
	return lexer.Token{}, false
}

// synchronize recovers from a parse error by skipping to the next
// statement boundary: a keyword that starts a statement, the start of a
// typed declaration, or the token after a closing brace.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.prev().Kind == lexer.RBrace {
			return
		}
		switch {
		case p.checkKeyword("proc"), p.checkKeyword("return"), p.checkKeyword("use"),
			p.checkKeyword("timesig"), p.checkKeyword("tempo"), p.checkKeyword("swing"),
			p.checkKeyword("key"), p.checkKeyword("section"), p.isTypedDeclaration():
			return
		}
		p.advance()
	}
}

func (p *Parser) parseStatementRecovering() ast.Statement {
	before := p.pos
	stmt := p.parseStatement()
	if stmt == nil && p.pos == before {
		// Guarantee forward progress even on totally unexpected input.
		p.advance()
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.checkKeyword("use"):
		return p.parseImport()
	case p.checkKeyword("proc"):
		return p.parseProc()
	case p.checkKeyword("return"):
		return p.parseReturn()
	case p.checkKeyword("timesig"):
		return p.parseTimeSig()
	case p.checkKeyword("tempo"):
		return p.parseSimpleContextBlock(ast.ContextTempo)
	case p.checkKeyword("swing"):
		return p.parseSimpleContextBlock(ast.ContextSwing)
	case p.checkKeyword("key"):
		return p.parseKeyBlock()
	case p.checkKeyword("dynamics"):
		return p.parseDynamicsBlock()
	case p.checkKeyword("section"):
		return p.parseSection()
	case p.isTypedDeclaration():
		return p.parseDeclaration()
	case p.check(lexer.Identifier) && p.peekAt(1).Kind == lexer.Assign:
		return p.parseAssignment()
	default:
		loc := p.cur().Loc
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		return &ast.ExpressionStatement{ast.Base{Loc: loc}, expr}
	}
}

func (p *Parser) isTypedDeclaration() bool {
	if p.cur().Kind != lexer.Keyword && p.cur().Kind != lexer.Identifier {
		return false
	}
	// The type name may be any keyword or identifier; it must be followed
	// by an identifier then '='.
	return p.peekAt(1).Kind == lexer.Identifier && p.peekAt(2).Kind == lexer.Assign
}

func (p *Parser) parseImport() ast.Statement {
	loc := p.cur().Loc
	p.advance() // use
	tok, ok := p.expect(lexer.StringLiteral, "import path")
	if !ok {
		return nil
	}
	return &ast.ImportStatement{ast.Base{Loc: loc}, tok.StrVal}
}

func (p *Parser) parseDeclaration() ast.Statement {
	loc := p.cur().Loc
	typeTok := p.advance()
	nameTok := p.advance()
	if _, ok := p.expect(lexer.Assign, "in declaration"); !ok {
		return nil
	}
	var value ast.Expression
	if typeTok.Lexeme == "Song" && p.check(lexer.LBracket) {
		value = p.parseSongLiteral()
	} else {
		value = p.parseExpression()
	}
	if value == nil {
		return nil
	}
	return &ast.Declaration{ast.Base{Loc: loc}, typeTok.Lexeme, nameTok.Lexeme, value}
}

// parseSongLiteral parses `[ Name(*n)? Name(*n)? ... ]`, the arrangement
// literal assigned to a Song declaration.
func (p *Parser) parseSongLiteral() ast.Expression {
	loc := p.cur().Loc
	p.advance() // [
	var refs []ast.SongRef
	for !p.check(lexer.RBracket) && !p.atEnd() {
		nameTok, ok := p.expect(lexer.Identifier, "section name in song arrangement")
		if !ok {
			break
		}
		ref := ast.SongRef{Name: nameTok.Lexeme, RepeatCount: 1}
		if p.match(lexer.Star) {
			countTok, ok := p.expect(lexer.IntLiteral, "repeat count after '*'")
			if ok {
				ref.RepeatCount = int(countTok.IntVal)
			}
		}
		refs = append(refs, ref)
	}
	p.expect(lexer.RBracket, "to close song arrangement")
	return &ast.SongLiteral{ast.Base{Loc: loc}, refs}
}

func (p *Parser) parseAssignment() ast.Statement {
	loc := p.cur().Loc
	nameTok := p.advance()
	p.advance() // =
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.Assignment{ast.Base{Loc: loc}, nameTok.Lexeme, value}
}

func (p *Parser) parseReturn() ast.Statement {
	loc := p.cur().Loc
	p.advance() // return
	if p.isStatementEnd() {
		return &ast.ReturnStatement{ast.Base{Loc: loc}, nil}
	}
	value := p.parseExpression()
	return &ast.ReturnStatement{ast.Base{Loc: loc}, value}
}

// isStatementEnd reports whether the cursor sits at a token that could
// not start an expression, i.e. the return/statement has no value.
func (p *Parser) isStatementEnd() bool {
	switch p.cur().Kind {
	case lexer.Eof, lexer.RBrace:
		return true
	case lexer.Keyword:
		return p.cur().Lexeme == "end"
	}
	return false
}

func (p *Parser) parseProc() ast.Statement {
	loc := p.cur().Loc
	p.advance() // proc
	nameTok, ok := p.expect(lexer.Identifier, "proc name")
	if !ok {
		return nil
	}
	var params []ast.Param
	if _, ok := p.expect(lexer.LParen, "after proc name"); ok {
		for !p.check(lexer.RParen) && !p.atEnd() {
			typeTok := p.advance()
			if _, ok := p.expect(lexer.Colon, "after param type"); !ok {
				break
			}
			paramTok := p.advance()
			params = append(params, ast.Param{TypeName: typeTok.Lexeme, Name: paramTok.Lexeme})
			if !p.match(lexer.Comma) {
				break
			}
		}
		p.expect(lexer.RParen, "to close proc params")
	}
	var body []ast.Statement
	for !p.checkKeyword("end") && !p.atEnd() {
		stmt := p.parseStatementRecovering()
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	p.advance() // end
	if p.checkKeyword("proc") {
		p.advance()
	}
	return &ast.ProcDecl{ast.Base{Loc: loc}, nameTok.Lexeme, params, "", body}
}

func (p *Parser) parseBracedBody() []ast.Statement {
	var body []ast.Statement
	if _, ok := p.expect(lexer.LBrace, "to start block"); !ok {
		return nil
	}
	for !p.check(lexer.RBrace) && !p.atEnd() {
		stmt := p.parseStatementRecovering()
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(lexer.RBrace, "to close block")
	return body
}

func (p *Parser) parseTimeSig() ast.Statement {
	loc := p.cur().Loc
	p.advance() // timesig
	numTok, ok := p.expect(lexer.IntLiteral, "time signature numerator")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.Slash, "in time signature"); !ok {
		return nil
	}
	denTok, ok := p.expect(lexer.IntLiteral, "time signature denominator")
	if !ok {
		return nil
	}
	body := p.parseBracedBody()
	return &ast.ContextBlock{
		ast.Base{Loc: loc}, ast.ContextTimeSig,
		int(numTok.IntVal), int(denTok.IntVal), nil, "", body,
	}
}

func (p *Parser) parseSimpleContextBlock(kind ast.ContextBlockKind) ast.Statement {
	loc := p.cur().Loc
	p.advance()
	value := p.parseExpression()
	body := p.parseBracedBody()
	return &ast.ContextBlock{ast.Base{Loc: loc}, kind, 0, 0, value, "", body}
}

func (p *Parser) parseKeyBlock() ast.Statement {
	loc := p.cur().Loc
	p.advance() // key
	nameTok := p.advance()
	body := p.parseBracedBody()
	return &ast.ContextBlock{ast.Base{Loc: loc}, ast.ContextKey, 0, 0, nil, nameTok.Lexeme, body}
}

func (p *Parser) parseDynamicsBlock() ast.Statement {
	loc := p.cur().Loc
	p.advance()
	nameTok := p.advance()
	body := p.parseBracedBody()
	return &ast.ContextBlock{ast.Base{Loc: loc}, ast.ContextDynamics, 0, 0, nil, nameTok.Lexeme, body}
}

func (p *Parser) parseSection() ast.Statement {
	loc := p.cur().Loc
	p.advance() // section
	nameTok, ok := p.expect(lexer.Identifier, "section name")
	if !ok {
		return nil
	}
	body := p.parseBracedBody()
	return &ast.SectionDecl{ast.Base{Loc: loc}, nameTok.Lexeme, body}
}

// parseIntLiteralText is a small helper retained for numeral extraction
// when a bare integer appears where a count is expected (e.g. repeat*n).
func parseIntLiteralText(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
