package theory

import (
	"strings"
)

// Chord is a parsed chord symbol: root pitch class and canonical quality
// name (slash-bass notes are not represented), per spec.md section 6
// literal grammar:
// `[A-G](s|f)?(maj|m|min|dim|aug|7|dom7|maj7|m7|min7|dim7|m7f5|sus2|sus4|add9|9|6|m6)?`
type Chord struct {
	Root    int
	Quality string // canonical quality key into ChordIntervals
}

// ChordIntervals maps canonical qualities to semitone offsets from the
// root, covering the quality set named in spec.md section 4.3.
var ChordIntervals = map[string][]int{
	"maj":    {0, 4, 7},
	"m":      {0, 3, 7},
	"dim":    {0, 3, 6},
	"aug":    {0, 4, 8},
	"7":      {0, 4, 7, 10},
	"maj7":   {0, 4, 7, 11},
	"m7":     {0, 3, 7, 10},
	"dim7":   {0, 3, 6, 9},
	"m7f5":   {0, 3, 6, 10},
	"sus2":   {0, 2, 7},
	"sus4":   {0, 5, 7},
	"add9":   {0, 4, 7, 14},
	"9":      {0, 4, 7, 10, 14},
	"6":      {0, 4, 7, 9},
	"m6":     {0, 3, 7, 9},
}

// qualityAliases maps the alternate spellings from the literal grammar
// onto ChordIntervals' canonical keys.
var qualityAliases = map[string]string{
	"":       "maj",
	"maj":    "maj",
	"m":      "m",
	"min":    "m",
	"dim":    "dim",
	"aug":    "aug",
	"7":      "7",
	"dom7":   "7",
	"maj7":   "maj7",
	"m7":     "m7",
	"min7":   "m7",
	"dim7":   "dim7",
	"m7f5":   "m7f5",
	"sus2":   "sus2",
	"sus4":   "sus4",
	"add9":   "add9",
	"9":      "9",
	"6":      "6",
	"m6":     "m6",
}

// qualitiesByLength lists recognized quality suffixes, longest first.
// ParseChordSymbol accepts a symbol only when the whole text after the
// root is exactly one of them.
var qualitiesByLength = []string{
	"dom7", "maj7", "min7", "dim7", "m7f5", "sus2", "sus4", "add9",
	"maj", "min", "dim", "aug", "m7", "m6", "9", "7", "6", "m",
}

// ParseChordSymbol parses a chord symbol per the spec.md literal grammar.
// A missing quality means major. The second result is false if `sym`
// does not start with a valid root letter.
func ParseChordSymbol(sym string) (Chord, bool) {
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return Chord{}, false
	}
	root := sym[0]
	if root < 'A' || root > 'G' {
		return Chord{}, false
	}
	rest := sym[1:]
	rootName := string(root)
	if strings.HasPrefix(rest, "s") {
		rootName += "#"
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "f") {
		rootName += "b"
		rest = rest[1:]
	}
	pc := NoteToMidi(rootName)

	quality := "maj"
	for _, q := range qualitiesByLength {
		if rest == q {
			quality = qualityAliases[q]
			rest = ""
			break
		}
	}
	if rest != "" {
		// Unrecognized trailing text: treat whole symbol as invalid.
		return Chord{}, false
	}
	return Chord{Root: pc, Quality: quality}, true
}

// Expand produces note names for the chord at the given octave, wrapping
// to higher octaves as intervals exceed 12 semitones, per spec.md 4.3.
func (c Chord) Expand(octave int) []string {
	intervals, ok := ChordIntervals[c.Quality]
	if !ok {
		intervals = ChordIntervals["maj"]
	}
	names := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		pc := (c.Root + iv) % 12
		oct := octave + (c.Root+iv)/12
		names = append(names, MidiToNote(pc)+itoa(oct))
	}
	return names
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	s := string(buf[i:])
	if neg {
		return "-" + s
	}
	return s
}

// GetChordTones returns the chord-tone pitch classes (R,3,5[,7]) for a
// chord symbol string, adapted from the teacher's theory.GetChordTones.
func GetChordTones(chordSymbol string) []int {
	c, ok := ParseChordSymbol(chordSymbol)
	if !ok {
		return nil
	}
	intervals := ChordIntervals[c.Quality]
	tones := make([]int, len(intervals))
	for i, iv := range intervals {
		tones[i] = (c.Root + iv) % 12
	}
	return tones
}
