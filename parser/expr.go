package parser

import (
	"canto/ast"
	"canto/diag"
	"canto/lexer"
)

// parseExpression parses a flow-operator chain: `expr -> f a b -> g c`.
// The flow operator binds tighter than comparisons (none defined in this
// core grammar) and weaker than array/primary, per spec.md section 6.
func (p *Parser) parseExpression() ast.Expression {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}
	for p.match(lexer.Arrow) {
		loc := p.prev().Loc
		fn := p.parsePrimary()
		if fn == nil {
			return left
		}
		var args []ast.Expression
		for p.canStartArg() {
			arg := p.parsePrimary()
			if arg == nil {
				break
			}
			args = append(args, arg)
		}
		left = &ast.Pipeline{ast.Base{Loc: loc}, left, fn, args}
	}
	return left
}

// canStartArg reports whether the current token could begin another
// bare argument to a pipeline call (used since pipeline args are
// whitespace-separated, not comma-separated, following `x -> f a b c`).
func (p *Parser) canStartArg() bool {
	switch p.cur().Kind {
	case lexer.IntLiteral, lexer.FloatLiteral, lexer.StringLiteral, lexer.BoolLiteral,
		lexer.Identifier, lexer.LParen, lexer.LBracket, lexer.Pipe,
		lexer.SemitoneLiteral, lexer.CentLiteral, lexer.MillisecondLiteral,
		lexer.SecondLiteral, lexer.DecibelLiteral, lexer.PitchLiteral,
		lexer.ChordSymbolLiteral, lexer.RomanNumeralLiteral:
		return true
	}
	return false
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitInt, tok.IntVal, 0, "", false}
	case lexer.FloatLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitFloat, 0, tok.FloatVal, "", false}
	case lexer.StringLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitString, 0, 0, tok.StrVal, false}
	case lexer.BoolLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitBool, 0, 0, "", tok.BoolVal}
	case lexer.SemitoneLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitSemitone, tok.IntVal, 0, "", false}
	case lexer.CentLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitCent, 0, tok.FloatVal, "", false}
	case lexer.MillisecondLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitMillisecond, 0, tok.FloatVal, "", false}
	case lexer.SecondLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitSecond, 0, tok.FloatVal, "", false}
	case lexer.DecibelLiteral:
		p.advance()
		return &ast.Literal{ast.Base{Loc: tok.Loc}, ast.LitDecibel, 0, tok.FloatVal, "", false}
	case lexer.Identifier:
		p.advance()
		return &ast.Identifier{ast.Base{Loc: tok.Loc}, tok.Lexeme}
	case lexer.LParen:
		return p.parseCall()
	case lexer.LBracket:
		return p.parseArrayLiteral()
	case lexer.Pipe:
		return p.parseNoteStream()
	case lexer.Keyword:
		if tok.Lexeme == "fn" {
			return p.parseLambda()
		}
		p.reporter.Error(tok.Loc, diag.KindParse, "unexpected keyword %q in expression", tok.Lexeme)
		return nil
	default:
		p.reporter.Error(tok.Loc, diag.KindParse, "unexpected token %q in expression", tok.Lexeme)
		return nil
	}
}

// parseCall parses `( Func arg... )`, a prefix call.
func (p *Parser) parseCall() ast.Expression {
	loc := p.cur().Loc
	p.advance() // (
	callee := p.parsePrimary()
	if callee == nil {
		p.skipToMatchingParen()
		return nil
	}
	var args []ast.Expression
	for !p.check(lexer.RParen) && !p.atEnd() {
		arg := p.parseExpression()
		if arg == nil {
			break
		}
		args = append(args, arg)
	}
	p.expect(lexer.RParen, "to close call")
	return &ast.Call{ast.Base{Loc: loc}, callee, args}
}

func (p *Parser) skipToMatchingParen() {
	depth := 1
	for !p.atEnd() && depth > 0 {
		switch p.advance().Kind {
		case lexer.LParen:
			depth++
		case lexer.RParen:
			depth--
		}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	loc := p.cur().Loc
	p.advance() // [
	var elems []ast.Expression
	for !p.check(lexer.RBracket) && !p.atEnd() {
		e := p.parseExpression()
		if e == nil {
			break
		}
		elems = append(elems, e)
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RBracket, "to close array literal")
	return &ast.ArrayLiteral{ast.Base{Loc: loc}, elems}
}

// parseLambda parses `fn Type ident, Type ident, ... => Expr`.
func (p *Parser) parseLambda() ast.Expression {
	loc := p.cur().Loc
	p.advance() // fn
	var params []ast.Param
	for !p.check(lexer.FatArrow) && !p.atEnd() {
		typeTok := p.advance()
		nameTok := p.advance()
		params = append(params, ast.Param{TypeName: typeTok.Lexeme, Name: nameTok.Lexeme})
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.FatArrow, "in lambda")
	body := p.parseExpression()
	return &ast.Lambda{ast.Base{Loc: loc}, params, body}
}
