package values

import "math/big"

// StrictEqual compares type and content; arrays element-wise, records
// field-wise. Two values of different Type are never strictly equal,
// even if numerically comparable (see LooseEqual for that).
func StrictEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case Void:
		return true
	case Array:
		aItems, _ := a.Data.([]Value)
		bItems, _ := b.Data.([]Value)
		if len(aItems) != len(bItems) {
			return false
		}
		for i := range aItems {
			if !StrictEqual(aItems[i], bItems[i]) {
				return false
			}
		}
		return true
	case MusicalNote:
		an, _ := a.Data.(MusicalNoteData)
		bn, _ := b.Data.(MusicalNoteData)
		return an == bn
	case TimeSignature:
		return a.Data.(TimeSignatureData) == b.Data.(TimeSignatureData)
	case Chord:
		ac, _ := a.Data.(ChordData)
		bc, _ := b.Data.(ChordData)
		if ac.Root != bc.Root || ac.Quality != bc.Quality || ac.Octave != bc.Octave {
			return false
		}
		if len(ac.NoteNames) != len(bc.NoteNames) {
			return false
		}
		for i := range ac.NoteNames {
			if ac.NoteNames[i] != bc.NoteNames[i] {
				return false
			}
		}
		return true
	case Number:
		an, _ := a.Data.(*big.Int)
		bn, _ := b.Data.(*big.Int)
		if an == nil || bn == nil {
			return an == bn
		}
		return an.Cmp(bn) == 0
	default:
		return a.Data == b.Data
	}
}

// toWidestFloat promotes a numeric value to float64 for loose comparison.
func toWidestFloat(v Value) (float64, bool) {
	switch v.Type {
	case Int, Long:
		i, _ := v.Data.(int64)
		return float64(i), true
	case Float:
		f, _ := v.Data.(float32)
		return float64(f), true
	case Double:
		f, _ := v.Data.(float64)
		return f, true
	case Number:
		n, _ := v.Data.(*big.Int)
		if n == nil {
			return 0, false
		}
		f := new(big.Float).SetInt(n)
		out, _ := f.Float64()
		return out, true
	}
	return 0, false
}

// LooseEqual additionally allows cross-numeric comparison by promoting
// both sides to the widest common representation.
func LooseEqual(a, b Value) bool {
	if af, aok := toWidestFloat(a); aok {
		if bf, bok := toWidestFloat(b); bok {
			return af == bf
		}
	}
	return StrictEqual(a, b)
}
