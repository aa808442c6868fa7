package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"canto/diag"
)

// durationSuffixSet are the characters that, appearing directly after a
// note literal, select an explicit note duration (spec.md section 4.1
// rule 1 and 6).
var durationSuffixSet = "whqest"

// chordQualitySuffixes lists recognized chord-quality suffixes, longest
// first, mirroring theory.qualitiesByLength without importing theory
// (the lexer only needs to decide token *kind*, not expand the chord).
var chordQualitySuffixes = []string{
	"dom7", "maj7", "min7", "dim7", "m7f5", "sus2", "sus4", "add9",
	"maj", "min", "dim", "aug", "m7", "m6", "9", "7", "6", "m", "",
}

// Lexer scans Canto source text into tokens.
type Lexer struct {
	src      []rune
	pos      int
	line     int
	col      int
	file     string
	reporter *diag.Reporter
	atLineStart bool
}

// New creates a Lexer over src, attributing diagnostics to file.
func New(src, file string, reporter *diag.Reporter) *Lexer {
	return &Lexer{
		src: []rune(src), pos: 0, line: 1, col: 1, file: file,
		reporter: reporter, atLineStart: true,
	}
}

// Tokenize scans the entire source and returns the token list, always
// terminated by an Eof token. It never aborts on partial/invalid input;
// unrecognized sequences are reported and skipped.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok, more := l.next()
		if tok != nil {
			tokens = append(tokens, *tok)
			if tok.Kind == PitchLiteral {
				if suffix, ok := l.PendingDurationSuffix(); ok {
					tokens = append(tokens, suffix)
				}
			}
		}
		if !more {
			break
		}
	}
	tokens = append(tokens, Token{Kind: Eof, Loc: l.loc()})
	return tokens
}

func (l *Lexer) loc() diag.Location {
	return diag.Location{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
		l.atLineStart = true
	} else {
		l.col++
	}
	return r
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool      { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' }
func isAlphaNum(r rune) bool   { return isAlpha(r) || isDigit(r) }

// next scans and returns the next token (nil if it was whitespace/comment
// with nothing to emit) and whether scanning should continue.
func (l *Lexer) next() (*Token, bool) {
	for l.pos < len(l.src) {
		r := l.peek()

		if r == '\\' && l.peekAt(1) == '\n' {
			l.advance()
			l.advance()
			continue
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			wasLineStart := l.atLineStart && r == '\n'
			l.advance()
			_ = wasLineStart
			continue
		}

		if l.atLineStart {
			// "Note:" at column 0 (after leading whitespace already
			// skipped above) starts a line comment.
			if l.hasPrefix("Note:") {
				for l.pos < len(l.src) && l.peek() != '\n' {
					l.advance()
				}
				continue
			}
		}
		l.atLineStart = false

		start := l.loc()

		switch {
		case r >= 'A' && r <= 'G' && isDigit(l.peekAt(1)):
			return l.scanNoteOrChord(start), true
		case r == '_' && !isAlphaNum(l.peekAt(1)):
			return l.scanPunct(start), true
		case isAlpha(r):
			return l.scanIdentifierOrChord(start), true
		case isDigit(r):
			return l.scanNumber(start, false), true
		case r == '"':
			return l.scanString(start), true
		case r == '+' || r == '-':
			if isDigit(l.peekAt(1)) {
				return l.scanSignedNumber(start), true
			}
			if r == '-' && l.peekAt(1) == '>' {
				return l.scanPunct(start), true
			}
			l.advance()
			if r == '+' {
				return &Token{Kind: Plus, Lexeme: "+", Loc: start}, true
			}
			return &Token{Kind: Minus, Lexeme: "-", Loc: start}, true
		default:
			return l.scanPunct(start), true
		}
	}
	return nil, false
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.src) {
		return false
	}
	for i, r := range rs {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

func (l *Lexer) scanPunct(start diag.Location) *Token {
	r := l.advance()
	mk := func(k Kind, s string) *Token { return &Token{Kind: k, Lexeme: s, Loc: start} }
	switch r {
	case '(':
		return mk(LParen, "(")
	case ')':
		return mk(RParen, ")")
	case '[':
		return mk(LBracket, "[")
	case ']':
		return mk(RBracket, "]")
	case '{':
		return mk(LBrace, "{")
	case '}':
		return mk(RBrace, "}")
	case '|':
		return mk(Pipe, "|")
	case '_':
		return mk(Underscore, "_")
	case '~':
		return mk(Tilde, "~")
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber(start, true)
		}
		return mk(Dot, ".")
	case ',':
		return mk(Comma, ",")
	case ':':
		return mk(Colon, ":")
	case '*':
		return mk(Star, "*")
	case '/':
		return mk(Slash, "/")
	case '?':
		if l.peek() == '?' {
			l.advance()
			return mk(DoubleQuestion, "??")
		}
		return mk(Question, "?")
	case '^':
		return mk(Marcato, "^")
	case '!':
		return mk(Sforzando, "!")
	case '`':
		return mk(Accent, "`")
	case '<':
		return mk(LAngle, "<")
	case '>':
		return mk(RAngle, ">")
	case '=':
		if l.peek() == '>' {
			l.advance()
			return mk(FatArrow, "=>")
		}
		return mk(Assign, "=")
	case '-':
		if l.peek() == '>' {
			l.advance()
			return mk(Arrow, "->")
		}
		return mk(Minus, "-")
	default:
		l.reporter.Error(start, diag.KindLex, "unrecognized character %q", r)
		return nil
	}
}

// scanNoteOrChord implements spec.md section 4.1 rules 2-7 for tokens
// that begin with an uppercase letter A-G.
func (l *Lexer) scanNoteOrChord(start diag.Location) *Token {
	letter := l.advance() // A-G
	var octave strings.Builder
	for isDigit(l.peek()) {
		octave.WriteRune(l.advance())
	}

	alteration := 0
	switch {
	case l.peek() == '+' && l.peekAt(1) == '+':
		l.advance()
		l.advance()
		alteration = 2
	case l.peek() == '-' && l.peekAt(1) == '-':
		l.advance()
		l.advance()
		alteration = -2
	case l.peek() == '+' && !isDigit(l.peekAt(1)):
		l.advance()
		alteration = 1
	case l.peek() == '-' && !isDigit(l.peekAt(1)):
		l.advance()
		alteration = -1
	}

	lexeme := fmt.Sprintf("%c%s", letter, octave.String())
	oct, _ := strconv.Atoi(octave.String())
	tok := &Token{
		Kind: PitchLiteral, Lexeme: lexeme, Loc: start,
		IntVal: int64(oct), StrVal: fmt.Sprintf("%c", letter),
		BoolVal: alteration != 0,
	}
	tok.IntVal = int64(oct)<<8 | int64(int8(alteration))&0xff
	// Duration suffix re-queue is handled by the caller via PendingDurationSuffix.
	return tok
}

// PendingDurationSuffix lets the parser ask whether a duration-suffix
// letter immediately follows the last scanned note, per rule 6's
// "emit the note and re-queue the suffix as a separate token".
func (l *Lexer) PendingDurationSuffix() (Token, bool) {
	r := l.peek()
	if strings.ContainsRune(durationSuffixSet, r) && !isAlphaNum(l.peekAt(1)) {
		start := l.loc()
		l.advance()
		return Token{Kind: DurationSuffix, Lexeme: string(r), Loc: start}, true
	}
	return Token{}, false
}

func (l *Lexer) scanIdentifierOrChord(start diag.Location) *Token {
	var b strings.Builder
	for isAlphaNum(l.peek()) {
		b.WriteRune(l.advance())
	}
	word := b.String()

	if len(word) >= 1 {
		c := word[0]
		if c >= 'A' && c <= 'G' {
			rest := word[1:]
			if rest == "s" || rest == "f" {
				rest = ""
			} else if len(rest) > 1 && (rest[0] == 's' || rest[0] == 'f') {
				rest = rest[1:]
			}
			for _, q := range chordQualitySuffixes {
				if rest == q {
					return &Token{Kind: ChordSymbolLiteral, Lexeme: word, Loc: start, StrVal: word}
				}
			}
		}
		if isRomanNumeral(word) {
			return &Token{Kind: RomanNumeralLiteral, Lexeme: word, Loc: start, StrVal: word}
		}
	}

	if word == "true" || word == "false" {
		return &Token{Kind: BoolLiteral, Lexeme: word, Loc: start, BoolVal: word == "true"}
	}
	if Keywords[word] {
		return &Token{Kind: Keyword, Lexeme: word, Loc: start}
	}
	return &Token{Kind: Identifier, Lexeme: word, Loc: start}
}

func isRomanNumeral(word string) bool {
	letters := "IViv"
	i := 0
	for i < len(word) && strings.ContainsRune(letters, rune(word[i])) {
		i++
	}
	if i == 0 {
		return false
	}
	base := strings.ToLower(word[:i])
	switch base {
	case "i", "ii", "iii", "iv", "v", "vi", "vii":
	default:
		return false
	}
	ext := word[i:]
	switch ext {
	case "", "7", "maj7", "m7", "min7", "dim7", "sus2", "sus4", "9", "6", "m6", "add9", "aug", "dim":
		return true
	}
	return false
}

// scanSignedNumber handles the sign-required literal families: Semitone
// (`[+-]\d+st`) and the optionally-signed Cent/Decibel families when a
// leading sign is present.
func (l *Lexer) scanSignedNumber(start diag.Location) *Token {
	sign := l.advance() // + or -
	tok := l.scanNumberSigned(start, false, true)
	if tok == nil {
		return nil
	}
	if sign == '-' {
		tok.IntVal = -tok.IntVal
		tok.FloatVal = -tok.FloatVal
	}
	tok.Lexeme = string(sign) + tok.Lexeme
	return tok
}

// scanNumber scans an unsigned numeric literal. The `st` (Semitone) suffix
// requires a leading sign per spec.md section 4.1 rule 2, so an unsigned
// "4st" is not recognized here; use scanSignedNumber for that family.
func (l *Lexer) scanNumber(start diag.Location, leadingDot bool) *Token {
	return l.scanNumberSigned(start, leadingDot, false)
}

// scanNumberSigned scans digits (optionally with a fractional part already
// started via leading dot) and then applies the suffix-disambiguation
// rules 2-5 from spec.md section 4.1. signed is true only when a leading
// +/- was already consumed by scanSignedNumber, which alone permits the
// Semitone (`[+-]\d+st`) suffix.
func (l *Lexer) scanNumberSigned(start diag.Location, leadingDot bool, signed bool) *Token {
	var b strings.Builder
	isFloat := leadingDot
	if leadingDot {
		b.WriteString("0.")
	}
	for isDigit(l.peek()) {
		b.WriteRune(l.advance())
	}
	if !leadingDot && l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		b.WriteRune(l.advance())
		for isDigit(l.peek()) {
			b.WriteRune(l.advance())
		}
	}
	numStr := b.String()

	if signed && l.hasPrefix("st") {
		l.advance()
		l.advance()
		n, _ := strconv.ParseInt(numStr, 10, 64)
		return &Token{Kind: SemitoneLiteral, Lexeme: numStr + "st", Loc: start, IntVal: n}
	}
	if l.hasPrefix("ms") {
		l.advance()
		l.advance()
		f, _ := strconv.ParseFloat(numStr, 64)
		return &Token{Kind: MillisecondLiteral, Lexeme: numStr + "ms", Loc: start, FloatVal: f}
	}
	if l.hasPrefix("dB") {
		l.advance()
		l.advance()
		f, _ := strconv.ParseFloat(numStr, 64)
		return &Token{Kind: DecibelLiteral, Lexeme: numStr + "dB", Loc: start, FloatVal: f}
	}
	if l.peek() == 'c' && !isAlphaNum(l.peekAt(1)) {
		l.advance()
		f, _ := strconv.ParseFloat(numStr, 64)
		return &Token{Kind: CentLiteral, Lexeme: numStr + "c", Loc: start, FloatVal: f}
	}
	if l.peek() == 's' && !isAlphaNum(l.peekAt(1)) {
		l.advance()
		f, _ := strconv.ParseFloat(numStr, 64)
		return &Token{Kind: SecondLiteral, Lexeme: numStr + "s", Loc: start, FloatVal: f}
	}

	if isFloat {
		f, _ := strconv.ParseFloat(numStr, 64)
		return &Token{Kind: FloatLiteral, Lexeme: numStr, Loc: start, FloatVal: f}
	}
	n, _ := strconv.ParseInt(numStr, 10, 64)
	return &Token{Kind: IntLiteral, Lexeme: numStr, Loc: start, IntVal: n}
}

func (l *Lexer) scanString(start diag.Location) *Token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.reporter.Error(start, diag.KindLex, "unterminated string literal")
			return &Token{Kind: StringLiteral, Lexeme: b.String(), Loc: start, StrVal: b.String()}
		}
		r := l.peek()
		if r == '"' {
			l.advance()
			break
		}
		if r == '\\' {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"':
				b.WriteRune('"')
			case '\\':
				b.WriteRune('\\')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(l.advance())
	}
	s := b.String()
	return &Token{Kind: StringLiteral, Lexeme: s, Loc: start, StrVal: s}
}

// DecodePitch unpacks the Kind-PitchLiteral token's packed octave and
// alteration, stored as (octave<<8 | int8(alteration)) by scanNoteOrChord.
func DecodePitch(t Token) (name byte, octave int, alteration int) {
	octave = int(t.IntVal >> 8)
	alteration = int(int8(t.IntVal & 0xff))
	name = t.StrVal[0]
	return
}
