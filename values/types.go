// Package values implements the closed set of runtime types and the
// tagged Value that carries them, per spec.md section 4.5.
package values

// Type is one of the closed set of primitive or domain types.
type Type int

const (
	Void Type = iota
	Int
	Long
	Float
	Double
	Number // arbitrary-precision integer
	Bool
	String
	Function
	LazyT // Lazy<T>; the element type is tracked out-of-band on the Value
	Buffer

	Note
	MusicalNote
	NoteValue
	Semitone
	Cent
	Millisecond
	Second
	Decibel
	TimeSignature
	Beat
	Bar
	Sequence
	Chord
	Section
	Song
	Voice
	Envelope
	OscillatorState
	Track

	Array // Array<T>; element type tracked out-of-band on the Value
)

var typeNames = map[Type]string{
	Void: "Void", Int: "Int", Long: "Long", Float: "Float", Double: "Double",
	Number: "Number", Bool: "Bool", String: "String", Function: "Function",
	LazyT: "Lazy", Buffer: "Buffer",
	Note: "Note", MusicalNote: "MusicalNote", NoteValue: "NoteValue",
	Semitone: "Semitone", Cent: "Cent", Millisecond: "Millisecond", Second: "Second",
	Decibel: "Decibel", TimeSignature: "TimeSignature", Beat: "Beat", Bar: "Bar",
	Sequence: "Sequence", Chord: "Chord", Section: "Section", Song: "Song",
	Voice: "Voice", Envelope: "Envelope", OscillatorState: "OscillatorState",
	Track: "Track", Array: "Array",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// specificity is the ranking table from spec.md section 4.5, ascending.
// Array specificity is element specificity + 50, computed in Value.Specificity.
var baseSpecificity = map[Type]int{
	Void:     0,
	Function: 10,
	Number:   20,
	Float:    30,
	Double:   30,
	Int:      40,
	Long:     40,
	String:   50,

	Millisecond: 60,
	Second:      60,

	Semitone: 70,
	Cent:     70,

	Note:        80,
	MusicalNote: 90,

	Chord: 100,
	Bar:   100,

	Sequence: 110,
	Section:  120,
	Song:     130,

	NoteValue:       55,
	TimeSignature:   95,
	Beat:            95,
	Voice:           105,
	Envelope:        65,
	OscillatorState: 65,
	Track:           105,
	Buffer:          105,
	Bool:            35,
	LazyT:           15,
}

// Specificity returns the ranking integer used by the overload resolver.
// Array specificity is the element's specificity plus 50; an empty array's
// Void element type contributes 0, giving 50.
func (t Type) Specificity(elem Type) int {
	if t == Array {
		return elem.Specificity(Void) + 50
	}
	return baseSpecificity[t]
}

// numeric promotion table: Int -> Long -> Double -> Number,
// Float -> Double -> Number, Millisecond <-> Second, Int -> NoteValue,
// MusicalNote <-> Note.
var promotions = map[Type][]Type{
	Int:         {Long, Double, Number, NoteValue},
	Long:        {Double, Number},
	Float:       {Double, Number},
	Double:      {Number},
	Millisecond: {Second},
	Second:      {Millisecond},
	MusicalNote: {Note},
	Note:        {MusicalNote},
}

// IsCompatible reports whether a value of type `from` may be used where
// `to` is expected without an explicit conversion (spec.md "compatible").
func IsCompatible(from, to Type) bool {
	if from == to {
		return true
	}
	for _, t := range promotions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsConvertible reports whether `from` can be explicitly converted to `to`
// even though it isn't directly compatible (spec.md "convertible"), e.g.
// String -> Note via parsing, Double -> Float, Number -> Double (narrowing).
func IsConvertible(from, to Type) bool {
	if IsCompatible(from, to) {
		return true
	}
	switch {
	case from == String && (to == Note || to == MusicalNote || to == Chord):
		return true
	case from == Number && (to == Double || to == Int || to == Long):
		return true
	case from == Double && (to == Int || to == Long || to == Float):
		return true
	case from == Int && to == String:
		return true
	case from == Double && to == String:
		return true
	case from == Bool && to == String:
		return true
	}
	return false
}
