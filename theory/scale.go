// Package theory implements the chord and scale library of spec.md
// section 4.3: pure functions over chord symbols, scale degrees and
// roman numerals. It is adapted directly from the teacher repo's
// theory package (scale interval tables, key parsing, note-name
// conversion) and extended with a table-driven chord-symbol parser
// and roman-numeral resolution, generalizing the ad hoc string
// slicing the teacher scattered across midi/generator.go,
// midi/bass.go and strudel/generator.go into one shared implementation.
package theory

import "strings"

// NoteNames lists pitch-class names using sharps, index 0 = C.
var NoteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNamesFlat lists pitch-class names using flats.
var NoteNamesFlat = []string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// ScaleType names one of the scales the engine can resolve roman numerals
// and named scales against.
type ScaleType string

const (
	ScaleMajor         ScaleType = "major"
	ScaleNaturalMinor  ScaleType = "natural_minor"
)

// ScaleIntervals maps scale types to semitone offsets from the root,
// matching spec.md section 4.3 (major and natural minor are the only two
// scales the note-stream compiler resolves roman numerals against; the
// teacher's richer mode table is kept as ExtendedScaleIntervals).
var ScaleIntervals = map[ScaleType][]int{
	ScaleMajor:        {0, 2, 4, 5, 7, 9, 11},
	ScaleNaturalMinor: {0, 2, 3, 5, 7, 8, 10},
}

// ExtendedScaleIntervals carries the teacher's broader mode table, beyond
// the two scales the roman-numeral resolver needs. No registered builtin
// reads it.
var ExtendedScaleIntervals = map[string][]int{
	"pentatonic_minor": {0, 3, 5, 7, 10},
	"pentatonic_major": {0, 2, 4, 7, 9},
	"blues":            {0, 3, 5, 6, 7, 10},
	"natural_minor":    {0, 2, 3, 5, 7, 8, 10},
	"natural_major":    {0, 2, 4, 5, 7, 9, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
}

// Scale is a resolved scale: a root pitch class plus its intervals.
type Scale struct {
	Root      int // 0-11, C = 0
	RootName  string
	Type      ScaleType
	Intervals []int
}

// NewScale builds a Scale for the given root pitch class and type.
func NewScale(root int, t ScaleType) Scale {
	root = ((root % 12) + 12) % 12
	intervals, ok := ScaleIntervals[t]
	if !ok {
		intervals = ScaleIntervals[ScaleMajor]
		t = ScaleMajor
	}
	return Scale{Root: root, RootName: NoteNames[root], Type: t, Intervals: intervals}
}

// ContainsNote reports whether a MIDI note belongs to the scale.
func (s Scale) ContainsNote(midiNote int) bool {
	rel := (((midiNote % 12) - s.Root + 12) % 12)
	for _, iv := range s.Intervals {
		if iv == rel {
			return true
		}
	}
	return false
}

// Degree returns the pitch class (0-11) of the given 1-based scale degree,
// wrapping across octaves of the scale as needed.
func (s Scale) Degree(degree int) int {
	n := len(s.Intervals)
	idx := ((degree - 1) % n + n) % n
	return (s.Root + s.Intervals[idx]) % 12
}

// ParseKey parses a key string such as "Am", "Bb", "Cmajor", "F#m" and
// returns the tonic pitch class plus whether it names a minor key.
func ParseKey(keyStr string) (root int, isMinor bool) {
	keyStr = strings.TrimSpace(keyStr)
	if keyStr == "" {
		return 0, false
	}
	lower := strings.ToLower(keyStr)
	switch {
	case strings.HasSuffix(lower, "major"):
		keyStr = keyStr[:len(keyStr)-len("major")]
	case strings.HasSuffix(lower, "minor"):
		keyStr = keyStr[:len(keyStr)-len("minor")]
		isMinor = true
	case strings.HasSuffix(lower, "m") && !strings.HasSuffix(lower, "maj"):
		keyStr = keyStr[:len(keyStr)-1]
		isMinor = true
	}
	return NoteToMidi(keyStr), isMinor
}

// NoteToMidi converts a note name (letter + optional accidental) to a
// pitch class 0-11.
func NoteToMidi(note string) int {
	note = strings.TrimSpace(note)
	if note == "" {
		return 0
	}
	noteMap := map[string]int{
		"C": 0, "C#": 1, "Db": 1,
		"D": 2, "D#": 3, "Eb": 3,
		"E": 4, "Fb": 4, "E#": 5,
		"F": 5, "F#": 6, "Gb": 6,
		"G": 7, "G#": 8, "Ab": 8,
		"A": 9, "A#": 10, "Bb": 10,
		"B": 11, "Cb": 11, "B#": 0,
	}
	if midi, ok := noteMap[note]; ok {
		return midi
	}
	base := strings.ToUpper(string(note[0]))
	if len(note) >= 2 {
		accidental := string(note[1])
		if accidental == "#" || accidental == "b" {
			if midi, ok := noteMap[base+accidental]; ok {
				return midi
			}
		}
	}
	if midi, ok := noteMap[base]; ok {
		return midi
	}
	return 0
}

// MidiToNote converts a pitch class 0-11 to a sharp-spelled note name.
func MidiToNote(pc int) string {
	return NoteNames[((pc%12)+12)%12]
}
