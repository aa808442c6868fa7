package values

import (
	"fmt"
	"math/big"
)

// Value is the tagged runtime value: a type tag plus an opaque data
// carrier. ElemType is only meaningful when Type is Array or LazyT.
type Value struct {
	Type     Type
	Data     interface{}
	ElemType Type
}

// Articulation marks a note's playing style, affecting velocity bias
// per spec.md section 4.4 step 3.
type Articulation int

const (
	ArticulationNone Articulation = iota
	ArticulationAccent
	ArticulationMarcato
	ArticulationSforzando
	ArticulationStaccato
)

// NoteDuration is one of the six note values the auto-fit algorithm maps
// to (spec.md section 4.4 step 2).
type NoteDuration int

const (
	DurationWhole NoteDuration = iota
	DurationHalf
	DurationQuarter
	DurationEighth
	DurationSixteenth
	DurationThirtySecond
)

// Fraction returns the duration's value as a fraction of a whole note.
func (d NoteDuration) Fraction() float64 {
	switch d {
	case DurationWhole:
		return 1.0
	case DurationHalf:
		return 0.5
	case DurationQuarter:
		return 0.25
	case DurationEighth:
		return 0.125
	case DurationSixteenth:
		return 1.0 / 16
	case DurationThirtySecond:
		return 1.0 / 32
	}
	return 0.25
}

func (d NoteDuration) String() string {
	switch d {
	case DurationWhole:
		return "whole"
	case DurationHalf:
		return "half"
	case DurationQuarter:
		return "quarter"
	case DurationEighth:
		return "eighth"
	case DurationSixteenth:
		return "16th"
	case DurationThirtySecond:
		return "32nd"
	}
	return "unknown"
}

// AllDurations lists the six note values in descending length, used by
// the auto-fit "closest note value" search in the compiler.
var AllDurations = []NoteDuration{
	DurationWhole, DurationHalf, DurationQuarter,
	DurationEighth, DurationSixteenth, DurationThirtySecond,
}

// MusicalNoteData is the structured payload of a compiled note or rest.
type MusicalNoteData struct {
	Name        byte // 'A'..'G', or ' ' for rest
	Octave      int
	Alteration  int // -2..+2 semitones
	Duration    NoteDuration
	HasDuration bool
	IsRest      bool
	CentOffset  float64
	IsTied      bool
	IsDotted    bool
	Velocity    float64 // 0..1
	Articulation Articulation
}

// MIDI returns the MIDI note number for this note (ignoring cent offset).
func (n MusicalNoteData) MIDI() int {
	if n.IsRest {
		return -1
	}
	base := map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}[n.Name]
	return base + n.Alteration + (n.Octave+1)*12
}

// BarData is one compiled measure.
type BarData struct {
	Elements      []MusicalNoteData
	TimeSignature TimeSignatureData
}

// TimeSignatureData is a parsed time signature.
type TimeSignatureData struct {
	Numerator   int
	Denominator int // must be a positive power of two
}

// Beats returns the number of quarter-note beats implied by this signature
// (numerator * 4 / denominator).
func (t TimeSignatureData) Beats() float64 {
	if t.Denominator == 0 {
		return 4
	}
	return float64(t.Numerator) * 4.0 / float64(t.Denominator)
}

// SequenceData is an ordered list of compiled bars.
type SequenceData struct {
	Bars        []BarData
	TotalBeats  float64
}

// ChordData is an expanded chord: the root note letter, quality, octave,
// and the concrete note names produced by chord expansion.
type ChordData struct {
	Root      byte
	Quality   string
	Octave    int
	NoteNames []string
}

// SectionData bundles named sequences under a context snapshot.
type SectionData struct {
	Name      string
	Sequences []NamedSequence
	Context   MusicalContextData
	Location  string
}

// NamedSequence is one entry of a section's ordered name->sequence mapping.
type NamedSequence struct {
	Name     string
	Sequence SequenceData
}

// SongData is an arrangement of section references with repeat counts.
type SongData struct {
	Sections []SongSectionRef
	Registry map[string]SectionData
}

// SongSectionRef names a section and how many times to repeat it.
type SongSectionRef struct {
	SectionName string
	RepeatCount int
}

// AudioBuffer is interleaved 32-bit float PCM.
type AudioBuffer struct {
	Samples    []float32
	Frames     int
	Channels   int
	SampleRate int
}

// Voice is a positioned buffer on a timeline.
type Voice struct {
	Buffer       AudioBuffer
	OffsetBeats  float64
	Gain         float64
	Pan          float64
}

// Thunk is a lazily-evaluated expression captured for Lazy<T> parameters.
// Eval is supplied by the evaluator package to avoid an import cycle.
type Thunk struct {
	Eval func() (Value, error)
	memo *Value
}

// Force evaluates the thunk once and memoizes the result.
func (t *Thunk) Force() (Value, error) {
	if t.memo != nil {
		return *t.memo, nil
	}
	v, err := t.Eval()
	if err != nil {
		return Value{}, err
	}
	t.memo = &v
	return v, nil
}

// MusicalContextData is the scoped bundle of musical settings. Pointer
// fields are nil when unset at a given scope, enabling inheritance.
type MusicalContextData struct {
	TimeSignature *TimeSignatureData
	Tempo         *float64
	Swing         *float64
	Key           *string
	Velocity      *float64
	Dynamics      *string
}

// DefaultContext returns the global defaults specified in spec.md section 3.
func DefaultContext() MusicalContextData {
	ts := TimeSignatureData{Numerator: 4, Denominator: 4}
	tempo := 120.0
	swing := 0.5
	velocity := 0.63
	return MusicalContextData{
		TimeSignature: &ts,
		Tempo:         &tempo,
		Swing:         &swing,
		Velocity:      &velocity,
	}
}

// --- Factories ---

func VoidValue() Value                  { return Value{Type: Void} }
func IntValue(i int64) Value            { return Value{Type: Int, Data: i} }
func LongValue(i int64) Value           { return Value{Type: Long, Data: i} }
func FloatValue(f float32) Value        { return Value{Type: Float, Data: f} }
func DoubleValue(f float64) Value       { return Value{Type: Double, Data: f} }
func NumberValue(n *big.Int) Value      { return Value{Type: Number, Data: n} }
func BoolValue(b bool) Value            { return Value{Type: Bool, Data: b} }
func StringValue(s string) Value        { return Value{Type: String, Data: s} }
func SemitoneValue(n int) Value         { return Value{Type: Semitone, Data: n} }
func CentValue(c float64) Value         { return Value{Type: Cent, Data: c} }
func MillisecondValue(ms float64) Value { return Value{Type: Millisecond, Data: ms} }
func SecondValue(s float64) Value       { return Value{Type: Second, Data: s} }
func DecibelValue(db float64) Value     { return Value{Type: Decibel, Data: db} }
func NoteStringValue(s string) Value    { return Value{Type: Note, Data: s} }

func MusicalNoteValue(n MusicalNoteData) Value {
	return Value{Type: MusicalNote, Data: n}
}

func TimeSignatureValue(t TimeSignatureData) Value {
	return Value{Type: TimeSignature, Data: t}
}

func SequenceValue(s SequenceData) Value { return Value{Type: Sequence, Data: s} }
func ChordValue(c ChordData) Value       { return Value{Type: Chord, Data: c} }
func SectionValue(s SectionData) Value   { return Value{Type: Section, Data: s} }
func SongValue(s SongData) Value         { return Value{Type: Song, Data: s} }
func BufferValue(b AudioBuffer) Value    { return Value{Type: Buffer, Data: b} }
func VoiceValue(v Voice) Value           { return Value{Type: Voice, Data: v} }

func ArrayValue(elemType Type, items []Value) Value {
	return Value{Type: Array, ElemType: elemType, Data: items}
}

func LazyValue(elemType Type, t *Thunk) Value {
	return Value{Type: LazyT, ElemType: elemType, Data: t}
}

func FunctionValue(fn interface{}) Value {
	return Value{Type: Function, Data: fn}
}

// --- Safe casting ---

// As returns the underlying data if v.Type == t, else ok is false.
// This is the "safe casting" operation from spec.md section 4.5: type
// mismatches are surfaced as type errors at the call site, not here.
func As[T any](v Value, t Type) (T, bool) {
	var zero T
	if v.Type != t {
		return zero, false
	}
	data, ok := v.Data.(T)
	return data, ok
}

// Specificity returns the ranking integer for this value's type.
func (v Value) Specificity() int {
	return v.Type.Specificity(v.ElemType)
}

func (v Value) String() string {
	switch v.Type {
	case Void:
		return "void"
	case Int, Long:
		return fmt.Sprintf("%d", v.Data)
	case Float, Double:
		return fmt.Sprintf("%v", v.Data)
	case Bool:
		return fmt.Sprintf("%v", v.Data)
	case String, Note:
		return fmt.Sprintf("%v", v.Data)
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}
