// Package lexer turns Canto source text into a token stream, per
// spec.md section 4.1. It is a hand-written single-pass scanner in the
// teacher's enum-with-String()-method idiom (see the teacher's
// midi.Effect enum for the pattern this Kind type follows).
package lexer

import "canto/diag"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Eof Kind = iota
	Identifier
	Keyword

	IntLiteral
	FloatLiteral
	StringLiteral
	BoolLiteral

	PitchLiteral    // C4, A3+, G5--
	SemitoneLiteral // +2st, -5st
	CentLiteral     // +12c, -3.5c
	MillisecondLiteral
	SecondLiteral
	DecibelLiteral // -6dB, +3.2dB
	DurationSuffix // w,h,q,e,s,t re-queued after a note

	ChordSymbolLiteral
	RomanNumeralLiteral

	// Punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Pipe       // |
	Underscore // _
	Tilde      // ~
	Dot        // .
	Comma
	Colon
	Arrow    // ->
	FatArrow // =>
	Assign   // =
	Question   // ?
	DoubleQuestion // ??
	Plus
	Minus
	Slash
	Star
	QuestionColon
	Accent     // ` (backtick articulation mark)
	Marcato    // ^
	Sforzando  // !
	LAngle     // <  (grace note delimiter)
	RAngle     // >  (grace note delimiter)
)

var kindNames = map[Kind]string{
	Eof: "EOF", Identifier: "Identifier", Keyword: "Keyword",
	IntLiteral: "Int", FloatLiteral: "Float", StringLiteral: "String", BoolLiteral: "Bool",
	PitchLiteral: "Pitch", SemitoneLiteral: "Semitone", CentLiteral: "Cent",
	MillisecondLiteral: "Millisecond", SecondLiteral: "Second", DecibelLiteral: "Decibel",
	DurationSuffix: "DurationSuffix", ChordSymbolLiteral: "Chord", RomanNumeralLiteral: "RomanNumeral",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Pipe: "|", Underscore: "_", Tilde: "~", Dot: ".", Comma: ",", Colon: ":",
	Arrow: "->", FatArrow: "=>", Assign: "=", Question: "?", DoubleQuestion: "??",
	Plus: "+", Minus: "-", Slash: "/", Star: "*",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "?"
}

// Keywords reserved by the language, per spec.md section 4.1.
var Keywords = map[string]bool{
	"proc": true, "end": true, "return": true, "use": true, "internal": true,
	"lazy": true, "fn": true, "timesig": true, "tempo": true, "swing": true,
	"key": true, "section": true, "dynamics": true,
	"Void": true, "Int": true, "Long": true, "Float": true, "Double": true,
	"Number": true, "Bool": true, "String": true, "Function": true, "Buffer": true,
	"Note": true, "MusicalNote": true, "Sequence": true, "Chord": true,
	"Section": true, "Song": true, "Array": true,
}

// Token is one lexeme plus its parsed payload, when it carries one.
type Token struct {
	Kind    Kind
	Lexeme  string
	Loc     diag.Location
	IntVal  int64
	FloatVal float64
	BoolVal bool
	StrVal  string
}
