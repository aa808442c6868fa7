package parser

import (
	"canto/ast"
	"canto/diag"
	"canto/lexer"
)

// durationSuffixKind maps a DurationSuffix lexeme to its NoteDurationLit.
var durationSuffixKind = map[string]ast.NoteDurationLit{
	"w": ast.DurWhole,
	"h": ast.DurHalf,
	"q": ast.DurQuarter,
	"e": ast.DurEighth,
	"s": ast.DurSixteenth,
	"t": ast.DurThirtySecond,
}

// parseNoteStream parses `| Elem* | Elem* | ... |`. A NoteStream with N
// bars is delimited by N+1 Pipe tokens; each interior Pipe simultaneously
// closes one bar and opens the next, per spec.md section 4.2's NoteStream
// grammar.
func (p *Parser) parseNoteStream() ast.Expression {
	streamLoc := p.cur().Loc
	p.advance() // leading |
	var bars []ast.Bar
	for {
		barLoc := p.prev().Loc
		var elems []ast.StreamElement
		for !p.check(lexer.Pipe) && !p.atEnd() {
			el := p.parseStreamElement()
			if el == nil {
				break
			}
			elems = append(elems, *el)
		}
		bars = append(bars, ast.Bar{Loc: barLoc, Elements: elems})
		if !p.check(lexer.Pipe) {
			p.reporter.Error(p.cur().Loc, diag.KindParse, "unterminated note stream, expected %q", "|")
			break
		}
		p.advance() // consume the pipe that closes this bar
		if !startsStreamElement(p.cur()) && !p.check(lexer.Pipe) {
			break
		}
	}
	return &ast.NoteStream{ast.Base{Loc: streamLoc}, bars}
}

func startsStreamElement(t lexer.Token) bool {
	switch t.Kind {
	case lexer.PitchLiteral, lexer.Underscore, lexer.LBracket, lexer.ChordSymbolLiteral,
		lexer.RomanNumeralLiteral, lexer.LParen, lexer.Identifier, lexer.LAngle:
		return true
	}
	return false
}

func (p *Parser) parseStreamElement() *ast.StreamElement {
	tok := p.cur()
	switch tok.Kind {
	case lexer.PitchLiteral:
		return p.parseNoteElement()
	case lexer.Underscore:
		p.advance()
		el := &ast.StreamElement{Loc: tok.Loc, Kind: ast.ElemRest}
		p.applyDurationModifiers(el)
		return el
	case lexer.LBracket:
		return p.parseBracketChord()
	case lexer.ChordSymbolLiteral:
		p.advance()
		el := &ast.StreamElement{Loc: tok.Loc, Kind: ast.ElemNamedChord, Symbol: tok.Lexeme}
		p.applyDurationModifiers(el)
		return el
	case lexer.RomanNumeralLiteral:
		p.advance()
		el := &ast.StreamElement{Loc: tok.Loc, Kind: ast.ElemRomanNumeral, Symbol: tok.Lexeme}
		p.applyDurationModifiers(el)
		return el
	case lexer.Identifier:
		p.advance()
		return &ast.StreamElement{Loc: tok.Loc, Kind: ast.ElemVariableRef, VarName: tok.Lexeme}
	case lexer.LAngle:
		return p.parseGraceNote()
	case lexer.LParen:
		return p.parseParenElement()
	default:
		p.reporter.Error(tok.Loc, diag.KindParse, "unexpected token %q in note stream", tok.Lexeme)
		p.advance()
		return nil
	}
}

func (p *Parser) parseNoteElement() *ast.StreamElement {
	tok := p.cur()
	p.advance()
	name, octave, alteration := lexer.DecodePitch(tok)
	el := &ast.StreamElement{
		Loc: tok.Loc, Kind: ast.ElemNote,
		Name: name, Octave: octave, Alteration: alteration,
	}
	if p.check(lexer.CentLiteral) {
		cTok := p.advance()
		el.HasCents = true
		el.Cents = cTok.FloatVal
	}
	p.applyDurationModifiers(el)
	return el
}

// applyDurationModifiers consumes the optional DurationSuffix, dot, tie,
// and articulation-mark tokens that can trail a note, rest, chord, or
// numeral, per spec.md section 4.1's re-queue rule for duration suffixes.
func (p *Parser) applyDurationModifiers(el *ast.StreamElement) {
	if p.check(lexer.DurationSuffix) {
		tok := p.advance()
		if kind, ok := durationSuffixKind[tok.Lexeme]; ok {
			el.HasDuration = true
			el.Duration = kind
		}
	}
	if p.match(lexer.Dot) {
		el.IsDotted = true
	}
	if p.match(lexer.Tilde) {
		el.IsTied = true
	}
	switch {
	case p.match(lexer.Accent):
		el.Articulation = ast.ArtAccent
	case p.match(lexer.Marcato):
		el.Articulation = ast.ArtMarcato
	case p.match(lexer.Sforzando):
		el.Articulation = ast.ArtSforzando
	}
}

// parseBracketChord parses `[ Elem Elem ... ]`, an explicit pitch cluster.
func (p *Parser) parseBracketChord() *ast.StreamElement {
	loc := p.cur().Loc
	p.advance() // [
	var notes []ast.StreamElement
	for !p.check(lexer.RBracket) && !p.atEnd() {
		el := p.parseStreamElement()
		if el == nil {
			break
		}
		notes = append(notes, *el)
	}
	p.expect(lexer.RBracket, "to close bracketed chord")
	out := &ast.StreamElement{Loc: loc, Kind: ast.ElemBracketChord, Notes: notes}
	p.applyDurationModifiers(out)
	return out
}

// parseGraceNote parses `<Elem>`, a grace note. The compiler gives it a
// fixed 32nd duration; the following element keeps its own duration.
func (p *Parser) parseGraceNote() *ast.StreamElement {
	loc := p.cur().Loc
	p.advance() // <
	inner := p.parseStreamElement()
	p.expect(lexer.RAngle, "to close grace note")
	if inner == nil {
		return nil
	}
	return &ast.StreamElement{Loc: loc, Kind: ast.ElemGrace, Notes: []ast.StreamElement{*inner}}
}

// parseParenElement disambiguates `(Elem)` (a ghost/muted note) from
// `(? a b)` / `(?? a:w b:w)` (unweighted/seeded random choice).
func (p *Parser) parseParenElement() *ast.StreamElement {
	loc := p.cur().Loc
	p.advance() // (
	if p.check(lexer.Question) || p.check(lexer.DoubleQuestion) {
		return p.parseRandomChoice(loc)
	}
	inner := p.parseStreamElement()
	p.expect(lexer.RParen, "to close ghost note")
	if inner == nil {
		return nil
	}
	return &ast.StreamElement{Loc: loc, Kind: ast.ElemGhost, Notes: []ast.StreamElement{*inner}}
}

func (p *Parser) parseRandomChoice(loc diag.Location) *ast.StreamElement {
	seeded := p.check(lexer.DoubleQuestion)
	p.advance() // ? or ??
	var choices []ast.WeightedChoice
	for !p.check(lexer.RParen) && !p.atEnd() {
		el := p.parseStreamElement()
		if el == nil {
			break
		}
		choice := ast.WeightedChoice{Value: *el}
		if p.match(lexer.Colon) {
			wTok := p.advance()
			choice.HasWeight = true
			if wTok.Kind == lexer.FloatLiteral {
				choice.Weight = wTok.FloatVal
			} else {
				choice.Weight = float64(wTok.IntVal)
			}
		}
		choices = append(choices, choice)
	}
	p.expect(lexer.RParen, "to close random choice")
	return &ast.StreamElement{Loc: loc, Kind: ast.ElemRandomChoice, Seeded: seeded, Choices: choices}
}
