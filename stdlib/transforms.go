// Package stdlib implements the transform and standard-library builtins
// of spec.md section 4.9 over values.SequenceData, and registers them
// into a registry.Registry for the evaluator to resolve by overload.
package stdlib

import (
	"canto/diag"
	"canto/rng"
	"canto/theory"
	"canto/values"
)

// minMIDI and maxMIDI bound every note's pitch per spec.md section 3;
// Transpose clamps rather than wrapping or erroring when a shift would
// push a note outside this range.
const (
	minMIDI = 16
	maxMIDI = 136
)

// clampMIDI bounds midi to [minMIDI, maxMIDI], warning through reporter
// (if non-nil) when clamping actually changes the value.
func clampMIDI(midi int, reporter *diag.Reporter) int {
	switch {
	case midi < minMIDI:
		if reporter != nil {
			reporter.Warn(diag.Location{}, diag.KindRange, "transpose clamps note at MIDI %d up to %d", midi, minMIDI)
		}
		return minMIDI
	case midi > maxMIDI:
		if reporter != nil {
			reporter.Warn(diag.Location{}, diag.KindRange, "transpose clamps note at MIDI %d down to %d", midi, maxMIDI)
		}
		return maxMIDI
	default:
		return midi
	}
}

func mapNotes(seq values.SequenceData, f func(values.MusicalNoteData) values.MusicalNoteData) values.SequenceData {
	out := values.SequenceData{TotalBeats: seq.TotalBeats}
	for _, bar := range seq.Bars {
		nb := values.BarData{TimeSignature: bar.TimeSignature}
		for _, n := range bar.Elements {
			nb.Elements = append(nb.Elements, f(n))
		}
		out.Bars = append(out.Bars, nb)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Transpose shifts every note by semitones (Semitone) or cents (Cent),
// clamping the resulting MIDI pitch to [minMIDI, maxMIDI] and warning
// through reporter (if non-nil) whenever a note is clamped.
func Transpose(seq values.SequenceData, semitones int, cents float64, isCents bool, reporter *diag.Reporter) values.SequenceData {
	return mapNotes(seq, func(n values.MusicalNoteData) values.MusicalNoteData {
		if n.IsRest {
			return n
		}
		if isCents {
			n.CentOffset += cents
			return n
		}
		midi := clampMIDI(n.MIDI()+semitones, reporter)
		n.Octave = midi/12 - 1
		pc := ((midi % 12) + 12) % 12
		n.Name, n.Alteration = pitchClassToNote(pc)
		return n
	})
}

// pitchClassToNote picks a natural-letter spelling plus alteration for a
// pitch class, preferring sharps, matching theory.NoteNames' convention.
func pitchClassToNote(pc int) (byte, int) {
	naturals := map[int][2]interface{}{
		0: {byte('C'), 0}, 1: {byte('C'), 1}, 2: {byte('D'), 0}, 3: {byte('D'), 1},
		4: {byte('E'), 0}, 5: {byte('F'), 0}, 6: {byte('F'), 1}, 7: {byte('G'), 0},
		8: {byte('G'), 1}, 9: {byte('A'), 0}, 10: {byte('A'), 1}, 11: {byte('B'), 0},
	}
	entry := naturals[pc]
	return entry[0].(byte), entry[1].(int)
}

// Invert mirrors every pitch around the first non-rest note.
func Invert(seq values.SequenceData) values.SequenceData {
	axis := -1
	for _, bar := range seq.Bars {
		for _, n := range bar.Elements {
			if !n.IsRest {
				axis = n.MIDI()
				break
			}
		}
		if axis >= 0 {
			break
		}
	}
	if axis < 0 {
		return seq
	}
	return mapNotes(seq, func(n values.MusicalNoteData) values.MusicalNoteData {
		if n.IsRest {
			return n
		}
		midi := 2*axis - n.MIDI()
		n.Octave = midi/12 - 1
		pc := ((midi % 12) + 12) % 12
		n.Name, n.Alteration = pitchClassToNote(pc)
		return n
	})
}

// Retrograde reverses the order of notes within each bar, and the bar
// order itself, so the whole sequence plays back to front.
func Retrograde(seq values.SequenceData) values.SequenceData {
	out := values.SequenceData{TotalBeats: seq.TotalBeats}
	for i := len(seq.Bars) - 1; i >= 0; i-- {
		bar := seq.Bars[i]
		nb := values.BarData{TimeSignature: bar.TimeSignature}
		for j := len(bar.Elements) - 1; j >= 0; j-- {
			nb.Elements = append(nb.Elements, bar.Elements[j])
		}
		out.Bars = append(out.Bars, nb)
	}
	return out
}

func scaleDuration(d values.NoteDuration, steps int) values.NoteDuration {
	idx := int(d) + steps
	if idx < int(values.DurationWhole) {
		idx = int(values.DurationWhole)
	}
	if idx > int(values.DurationThirtySecond) {
		idx = int(values.DurationThirtySecond)
	}
	return values.NoteDuration(idx)
}

// Augment doubles every note's duration (one step toward whole notes).
func Augment(seq values.SequenceData) values.SequenceData {
	return mapNotes(seq, func(n values.MusicalNoteData) values.MusicalNoteData {
		n.Duration = scaleDuration(n.Duration, -1)
		return n
	})
}

// Diminish halves every note's duration (one step toward 32nd notes).
func Diminish(seq values.SequenceData) values.SequenceData {
	return mapNotes(seq, func(n values.MusicalNoteData) values.MusicalNoteData {
		n.Duration = scaleDuration(n.Duration, 1)
		return n
	})
}

// Repeat concatenates count copies of seq, optionally transposing by
// semitones on each successive repetition (a sequencer idiom).
func Repeat(seq values.SequenceData, count int, semitonesPerRepeat int, reporter *diag.Reporter) values.SequenceData {
	out := values.SequenceData{}
	for i := 0; i < count; i++ {
		copySeq := seq
		if semitonesPerRepeat != 0 && i > 0 {
			copySeq = Transpose(seq, semitonesPerRepeat*i, 0, false, reporter)
		}
		out.Bars = append(out.Bars, copySeq.Bars...)
		out.TotalBeats += seq.TotalBeats
	}
	return out
}

// Concat appends b's bars after a's.
func Concat(a, b values.SequenceData) values.SequenceData {
	out := values.SequenceData{TotalBeats: a.TotalBeats + b.TotalBeats}
	out.Bars = append(out.Bars, a.Bars...)
	out.Bars = append(out.Bars, b.Bars...)
	return out
}

func rampVelocity(seq values.SequenceData, from, to float64) values.SequenceData {
	var idxs []struct{ bar, el int }
	for bi, bar := range seq.Bars {
		for ei, n := range bar.Elements {
			if !n.IsRest {
				idxs = append(idxs, struct{ bar, el int }{bi, ei})
			}
		}
	}
	out := seq
	out.Bars = append([]values.BarData(nil), seq.Bars...)
	for i := range out.Bars {
		out.Bars[i].Elements = append([]values.MusicalNoteData(nil), seq.Bars[i].Elements...)
	}
	if len(idxs) == 0 {
		return out
	}
	span := len(idxs) - 1
	for i, loc := range idxs {
		t := 0.0
		if span > 0 {
			t = float64(i) / float64(span)
		}
		out.Bars[loc.bar].Elements[loc.el].Velocity = clamp01(from*(1-t) + to*t)
	}
	return out
}

// Crescendo ramps velocity linearly from `from` to `to` across the sequence.
func Crescendo(seq values.SequenceData, from, to float64) values.SequenceData {
	return rampVelocity(seq, from, to)
}

// Decrescendo ramps velocity linearly from `from` down to `to`.
func Decrescendo(seq values.SequenceData, from, to float64) values.SequenceData {
	return rampVelocity(seq, from, to)
}

// Swell ramps up to a peak at the sequence midpoint and back down,
// combining crescendo and decrescendo over the first and second halves.
func Swell(seq values.SequenceData, base, peak float64) values.SequenceData {
	up := rampVelocity(seq, base, peak)
	mid := len(up.Bars) / 2
	first := values.SequenceData{Bars: up.Bars[:mid]}
	secondSrc := values.SequenceData{Bars: seq.Bars[mid:]}
	second := rampVelocity(secondSrc, peak, base)
	out := values.SequenceData{TotalBeats: seq.TotalBeats}
	out.Bars = append(out.Bars, first.Bars...)
	out.Bars = append(out.Bars, second.Bars...)
	return out
}

// Humanize jitters each note's velocity by up to +/- amount, adapting the
// teacher's per-event velocity-jitter idiom (midi/drums.go's
// `vel := velocity - 20`-style fixed-offset accents) into a randomized,
// parametrized transform driven by the ambient RNG stream.
func Humanize(seq values.SequenceData, amount float64, r *rng.Engine) values.SequenceData {
	return mapNotes(seq, func(n values.MusicalNoteData) values.MusicalNoteData {
		if n.IsRest {
			return n
		}
		jitterSteps := r.Free(2001) // 0..2000 -> -amount..+amount
		jitter := (float64(jitterSteps)/1000.0 - 1.0) * amount
		n.Velocity = clamp01(n.Velocity + jitter)
		return n
	})
}

// Trill alternates each note with the note semitones above it, splitting
// its duration in two.
func Trill(seq values.SequenceData, semitones int) values.SequenceData {
	out := values.SequenceData{TotalBeats: seq.TotalBeats}
	for _, bar := range seq.Bars {
		nb := values.BarData{TimeSignature: bar.TimeSignature}
		for _, n := range bar.Elements {
			if n.IsRest {
				nb.Elements = append(nb.Elements, n)
				continue
			}
			half := n
			half.Duration = scaleDuration(n.Duration, 1)
			upper := half
			midi := n.MIDI() + semitones
			upper.Octave = midi/12 - 1
			pc := ((midi % 12) + 12) % 12
			upper.Name, upper.Alteration = pitchClassToNote(pc)
			nb.Elements = append(nb.Elements, half, upper)
		}
		out.Bars = append(out.Bars, nb)
	}
	return out
}

// Tremolo repeats each note `repeats` times, shortening each copy by one
// duration step per doubling of repeats (rounded up to a power of two), so
// the total length is unchanged only when repeats is a power of two.
func Tremolo(seq values.SequenceData, repeats int) values.SequenceData {
	if repeats < 1 {
		repeats = 1
	}
	out := values.SequenceData{TotalBeats: seq.TotalBeats}
	steps := 0
	for r := 1; r < repeats; r *= 2 {
		steps++
	}
	for _, bar := range seq.Bars {
		nb := values.BarData{TimeSignature: bar.TimeSignature}
		for _, n := range bar.Elements {
			if n.IsRest {
				nb.Elements = append(nb.Elements, n)
				continue
			}
			shortened := n
			shortened.Duration = scaleDuration(n.Duration, steps)
			for i := 0; i < repeats; i++ {
				nb.Elements = append(nb.Elements, shortened)
			}
		}
		out.Bars = append(out.Bars, nb)
	}
	return out
}

// Euclidean builds a Sequence of `steps` events spread over `hits` pitched
// attacks of note and rests elsewhere, using Bjorklund's algorithm.
func Euclidean(hits, steps int, note values.MusicalNoteData) values.SequenceData {
	pattern := bjorklundPattern(hits, steps, 0)
	dur := closestStepDuration(steps)
	var elems []values.MusicalNoteData
	for _, on := range pattern {
		if on {
			n := note
			n.Duration = dur
			n.HasDuration = true
			elems = append(elems, n)
		} else {
			elems = append(elems, values.MusicalNoteData{IsRest: true, Duration: dur, HasDuration: true})
		}
	}
	return values.SequenceData{Bars: []values.BarData{{Elements: elems}}}
}

func closestStepDuration(steps int) values.NoteDuration {
	if steps <= 0 {
		return values.DurationQuarter
	}
	target := 1.0 / float64(steps)
	best := values.DurationQuarter
	bestDist := -1.0
	for _, d := range values.AllDurations {
		dist := target - d.Fraction()
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = d
		}
	}
	return best
}

// Arpeggio expands a parsed chord into a Sequence following a named
// pattern ("up", "down", "updown").
func Arpeggio(chord values.ChordData, pattern string) values.SequenceData {
	var elems []values.MusicalNoteData
	appendNote := func(name string) {
		n, octave, alt := byte('C'), 4, 0
		if len(name) > 0 {
			n = name[0]
			i := 1
			for i < len(name) && (name[i] == '#' || name[i] == 'b') {
				if name[i] == '#' {
					alt++
				} else {
					alt--
				}
				i++
			}
			if i < len(name) {
				octave = int(name[i] - '0')
			}
		}
		elems = append(elems, values.MusicalNoteData{
			Name: n, Octave: octave, Alteration: alt,
			Duration: values.DurationEighth, HasDuration: true, Velocity: 0.63,
		})
	}
	switch pattern {
	case "down":
		for i := len(chord.NoteNames) - 1; i >= 0; i-- {
			appendNote(chord.NoteNames[i])
		}
	case "updown":
		for _, n := range chord.NoteNames {
			appendNote(n)
		}
		for i := len(chord.NoteNames) - 2; i >= 1; i-- {
			appendNote(chord.NoteNames[i])
		}
	default: // "up"
		for _, n := range chord.NoteNames {
			appendNote(n)
		}
	}
	return values.SequenceData{Bars: []values.BarData{{Elements: elems}}}
}

// ResolveNumeral resolves a roman numeral against a key, returning a
// ChordData for use by stream compilation or direct builtin calls.
func ResolveNumeral(numeral, key string) (values.ChordData, bool) {
	c, ok := theory.ResolveNumeral(numeral, key)
	if !ok {
		return values.ChordData{}, false
	}
	return values.ChordData{
		Root: theory.NoteNames[c.Root][0], Quality: c.Quality,
		Octave: 4, NoteNames: c.Expand(4),
	}, true
}
