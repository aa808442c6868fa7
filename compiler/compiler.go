// Package compiler turns a parsed NoteStream plus the effective musical
// context into a values.SequenceData, per spec.md section 4.4. Beat
// arithmetic here generalizes the teacher's fixed-tick calculations in
// midi/rhythm.go (which worked in a hardcoded ticks-per-beat grid) into a
// fractional, time-signature-aware beat model.
package compiler

import (
	"canto/ast"
	"canto/diag"
	"canto/rng"
	"canto/theory"
	"canto/values"
)

// VarLookup resolves a stream-level variable reference to its bound value.
type VarLookup func(name string) (values.Value, bool)

// Compiler compiles NoteStream expressions into SequenceData.
type Compiler struct {
	RNG      *rng.Engine
	Reporter *diag.Reporter
	Lookup   VarLookup
}

func New(r *rng.Engine, reporter *diag.Reporter, lookup VarLookup) *Compiler {
	return &Compiler{RNG: r, Reporter: reporter, Lookup: lookup}
}

// Compile compiles every bar of stream under the effective context mctx.
func (c *Compiler) Compile(stream *ast.NoteStream, mctx values.MusicalContextData) values.SequenceData {
	ts := values.TimeSignatureData{Numerator: 4, Denominator: 4}
	if mctx.TimeSignature != nil {
		ts = *mctx.TimeSignature
	}
	var seq values.SequenceData
	for _, bar := range stream.Bars {
		compiled := c.compileBar(bar, ts, mctx)
		seq.Bars = append(seq.Bars, compiled)
		seq.TotalBeats += ts.Beats()
	}
	return seq
}

func (c *Compiler) contextVelocity(mctx values.MusicalContextData) float64 {
	if mctx.Velocity != nil {
		return *mctx.Velocity
	}
	return 0.63
}

// compileBar implements spec.md section 4.4's bar-compilation algorithm.
func (c *Compiler) compileBar(bar ast.Bar, ts values.TimeSignatureData, mctx values.MusicalContextData) values.BarData {
	if len(bar.Elements) == 0 {
		return values.BarData{
			TimeSignature: ts,
			Elements: []values.MusicalNoteData{{
				IsRest: true, Duration: values.DurationWhole, HasDuration: true,
				Velocity: c.contextVelocity(mctx),
			}},
		}
	}

	autofit, autofitDotted := c.autoFitDuration(bar.Elements, ts)

	var notes []values.MusicalNoteData
	for _, el := range bar.Elements {
		notes = append(notes, c.compileElement(el, autofit, autofitDotted, mctx)...)
	}

	interpolateVelocity(notes)

	return values.BarData{TimeSignature: ts, Elements: notes}
}

// autoFitDuration computes the note value implicit elements should take,
// per spec.md section 4.4 step 2. The second return value reports whether
// that value should be dotted (e.g. a single note filling a 3/4 bar fits
// a dotted half exactly, not the nearest undotted value).
func (c *Compiler) autoFitDuration(elems []ast.StreamElement, ts values.TimeSignatureData) (values.NoteDuration, bool) {
	explicitBeats := 0.0
	implicitCount := 0
	for _, el := range elems {
		if el.HasDuration {
			frac := durationFraction(el.Duration)
			if el.IsDotted {
				frac *= 1.5
			}
			explicitBeats += frac * float64(ts.Denominator)
		} else {
			implicitCount++
		}
	}
	if implicitCount == 0 {
		return values.DurationQuarter, false
	}
	remaining := float64(ts.Numerator) - explicitBeats
	if remaining <= 0 {
		remaining = float64(ts.Numerator)
		c.warn(elems[0].Loc, "note stream overflows its bar; using full bar for remaining notes")
	}
	beatsPerImplicit := remaining / float64(implicitCount)
	targetFraction := beatsPerImplicit / float64(ts.Denominator)
	return closestDuration(targetFraction)
}

func durationFraction(d ast.NoteDurationLit) float64 {
	switch d {
	case ast.DurWhole:
		return 1.0
	case ast.DurHalf:
		return 0.5
	case ast.DurQuarter:
		return 0.25
	case ast.DurEighth:
		return 0.125
	case ast.DurSixteenth:
		return 1.0 / 16
	case ast.DurThirtySecond:
		return 1.0 / 32
	}
	return 0.25
}

// durationCandidate is one plain or dotted note value considered by
// closestDuration's search.
type durationCandidate struct {
	Duration values.NoteDuration
	Dotted   bool
	Fraction float64
}

// closestDuration finds the note value (plain or dotted) whose fraction of
// a whole note is nearest targetFraction. Dotted values are included
// because a target like 3/4 (a single note filling a 3/4 bar) matches a
// dotted half exactly, not any plain value. Ties are broken toward the
// candidate that fits within the target rather than overflowing it.
func closestDuration(targetFraction float64) (values.NoteDuration, bool) {
	const epsilon = 1e-9
	var best durationCandidate
	bestDist := -1.0
	for _, d := range values.AllDurations {
		for _, dotted := range []bool{false, true} {
			frac := d.Fraction()
			if dotted {
				frac *= 1.5
			}
			dist := targetFraction - frac
			if dist < 0 {
				dist = -dist
			}
			cand := durationCandidate{Duration: d, Dotted: dotted, Fraction: frac}
			switch {
			case bestDist < 0 || dist < bestDist-epsilon:
				bestDist = dist
				best = cand
			case dist < bestDist+epsilon:
				if cand.Fraction <= targetFraction+epsilon && best.Fraction > targetFraction+epsilon {
					bestDist = dist
					best = cand
				}
			}
		}
	}
	return best.Duration, best.Dotted
}

func astToValuesDuration(d ast.NoteDurationLit) values.NoteDuration {
	switch d {
	case ast.DurWhole:
		return values.DurationWhole
	case ast.DurHalf:
		return values.DurationHalf
	case ast.DurQuarter:
		return values.DurationQuarter
	case ast.DurEighth:
		return values.DurationEighth
	case ast.DurSixteenth:
		return values.DurationSixteenth
	case ast.DurThirtySecond:
		return values.DurationThirtySecond
	}
	return values.DurationQuarter
}

func astToValuesArticulation(a ast.ArticulationLit) values.Articulation {
	switch a {
	case ast.ArtAccent:
		return values.ArticulationAccent
	case ast.ArtMarcato:
		return values.ArticulationMarcato
	case ast.ArtSforzando:
		return values.ArticulationSforzando
	case ast.ArtStaccato:
		return values.ArticulationStaccato
	}
	return values.ArticulationNone
}

// resolvedDuration picks explicit > auto-fit > quarter, along with whether
// that duration should be dotted.
func resolvedDuration(el ast.StreamElement, autofit values.NoteDuration, autofitDotted bool) (values.NoteDuration, bool) {
	if el.HasDuration {
		return astToValuesDuration(el.Duration), el.IsDotted
	}
	return autofit, autofitDotted
}

// applyArticulationBias implements spec.md section 4.4 step 3's velocity
// bias table, clamped to 1.0.
func applyArticulationBias(velocity float64, art values.Articulation) float64 {
	switch art {
	case values.ArticulationAccent:
		velocity += 0.2
	case values.ArticulationMarcato:
		velocity += 0.3
	case values.ArticulationSforzando:
		velocity = 0.95
	}
	if velocity > 1.0 {
		velocity = 1.0
	}
	return velocity
}

func (c *Compiler) warn(loc diag.Location, format string, args ...interface{}) {
	if c.Reporter != nil {
		c.Reporter.Warn(loc, diag.KindRange, format, args...)
	}
}

// compileElement expands one stream element into one or more compiled
// notes, per spec.md section 4.4 step 3.
func (c *Compiler) compileElement(el ast.StreamElement, autofit values.NoteDuration, autofitDotted bool, mctx values.MusicalContextData) []values.MusicalNoteData {
	dur, dotted := resolvedDuration(el, autofit, autofitDotted)
	baseVelocity := c.contextVelocity(mctx)

	switch el.Kind {
	case ast.ElemNote:
		v := applyArticulationBias(baseVelocity, astToValuesArticulation(el.Articulation))
		return []values.MusicalNoteData{{
			Name: el.Name, Octave: el.Octave, Alteration: el.Alteration,
			Duration: dur, HasDuration: true,
			IsDotted: dotted, IsTied: el.IsTied,
			CentOffset: el.Cents,
			Velocity: v,
		}}

	case ast.ElemRest:
		return []values.MusicalNoteData{{
			IsRest: true, Duration: dur, HasDuration: true, Velocity: baseVelocity,
		}}

	case ast.ElemBracketChord:
		var out []values.MusicalNoteData
		for _, n := range el.Notes {
			v := applyArticulationBias(baseVelocity, astToValuesArticulation(n.Articulation))
			out = append(out, values.MusicalNoteData{
				Name: n.Name, Octave: n.Octave, Alteration: n.Alteration,
				Duration: dur, HasDuration: true, Velocity: v,
			})
		}
		return out

	case ast.ElemNamedChord:
		chord, ok := theory.ParseChordSymbol(el.Symbol)
		if !ok {
			c.warn(el.Loc, "unrecognized chord symbol %q", el.Symbol)
			return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: baseVelocity}}
		}
		return c.expandChordNotes(chord, dur, baseVelocity)

	case ast.ElemRomanNumeral:
		key := ""
		if mctx.Key != nil {
			key = *mctx.Key
		}
		if key == "" {
			c.warn(el.Loc, "roman numeral %q used with no active key", el.Symbol)
			return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: baseVelocity}}
		}
		chord, ok := theory.ResolveNumeral(el.Symbol, key)
		if !ok {
			c.warn(el.Loc, "cannot resolve roman numeral %q in key %q", el.Symbol, key)
			return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: baseVelocity}}
		}
		return c.expandChordNotes(chord, dur, baseVelocity)

	case ast.ElemRandomChoice:
		choice := c.sampleChoice(el)
		if choice == nil {
			return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: baseVelocity}}
		}
		return c.compileElement(*choice, autofit, autofitDotted, mctx)

	case ast.ElemVariableRef:
		return c.expandVariableRef(el, dur, baseVelocity)

	case ast.ElemGhost:
		if len(el.Notes) == 0 {
			return nil
		}
		inner := c.compileElement(el.Notes[0], autofit, autofitDotted, mctx)
		for i := range inner {
			inner[i].Velocity = 0.15
		}
		return inner

	case ast.ElemGrace:
		if len(el.Notes) == 0 {
			return nil
		}
		inner := c.compileElement(el.Notes[0], values.DurationThirtySecond, false, mctx)
		for i := range inner {
			inner[i].Duration = values.DurationThirtySecond
			inner[i].HasDuration = true
			inner[i].Velocity = 0.5
		}
		return inner
	}
	return nil
}

func (c *Compiler) expandChordNotes(chord theory.Chord, dur values.NoteDuration, velocity float64) []values.MusicalNoteData {
	names := chord.Expand(4)
	var out []values.MusicalNoteData
	for _, n := range names {
		name, octave, alteration := splitNoteName(n)
		out = append(out, values.MusicalNoteData{
			Name: name, Octave: octave, Alteration: alteration,
			Duration: dur, HasDuration: true, Velocity: velocity,
		})
	}
	return out
}

// splitNoteName decodes a "C#4"/"Eb3"-style note name into letter/octave/
// alteration fields, mirroring theory.Chord.Expand's own naming scheme.
func splitNoteName(n string) (name byte, octave int, alteration int) {
	if len(n) == 0 {
		return 'C', 4, 0
	}
	name = n[0]
	i := 1
	for i < len(n) && (n[i] == '#' || n[i] == 'b') {
		if n[i] == '#' {
			alteration++
		} else {
			alteration--
		}
		i++
	}
	octave = 4
	if i < len(n) {
		sign := 1
		j := i
		if n[j] == '-' {
			sign = -1
			j++
		}
		val := 0
		for ; j < len(n); j++ {
			val = val*10 + int(n[j]-'0')
		}
		octave = sign * val
	}
	return name, octave, alteration
}

// sampleChoice picks one WeightedChoice from a random-choice element,
// normalizing weights per spec.md section 4.4 step 3 and using the
// ambient ("?") or seed-lockable ("??") RNG stream as requested.
func (c *Compiler) sampleChoice(el ast.StreamElement) *ast.StreamElement {
	if len(el.Choices) == 0 {
		return nil
	}
	weights := make([]float64, len(el.Choices))
	anyWeighted := false
	total := 0.0
	for i, ch := range el.Choices {
		if ch.HasWeight {
			anyWeighted = true
			weights[i] = ch.Weight
		} else {
			weights[i] = 1.0
		}
		total += weights[i]
	}
	if anyWeighted && total == 0 {
		c.warn(el.Loc, "random choice weights are all zero; rejecting the choice")
		return nil
	}
	if anyWeighted && total != 100 {
		c.warn(el.Loc, "random choice weights sum to %v, not 100; normalizing", total)
	}
	var idx int
	if el.Seeded {
		idx = c.RNG.WeightedSeeded(weights)
	} else {
		idx = c.RNG.WeightedFree(weights)
	}
	if idx < 0 || idx >= len(el.Choices) {
		idx = 0
	}
	return &el.Choices[idx].Value
}

// expandVariableRef resolves a stream-level identifier against the
// compiler's variable lookup, accepting a bound Note (string) or
// MusicalNote value, per spec.md section 4.4 step 3.
func (c *Compiler) expandVariableRef(el ast.StreamElement, dur values.NoteDuration, velocity float64) []values.MusicalNoteData {
	if c.Lookup == nil {
		c.warn(el.Loc, "undefined variable %q in note stream", el.VarName)
		return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: velocity}}
	}
	v, ok := c.Lookup(el.VarName)
	if !ok {
		c.warn(el.Loc, "undefined variable %q in note stream", el.VarName)
		return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: velocity}}
	}
	switch v.Type {
	case values.Note:
		s, _ := values.As[string](v, values.Note)
		name, octave, alteration := splitNoteName(s)
		return []values.MusicalNoteData{{
			Name: name, Octave: octave, Alteration: alteration,
			Duration: dur, HasDuration: true, Velocity: velocity,
		}}
	case values.MusicalNote:
		n, _ := values.As[values.MusicalNoteData](v, values.MusicalNote)
		if el.HasDuration {
			n.Duration = astToValuesDuration(el.Duration)
			n.HasDuration = true
		}
		if el.IsDotted {
			n.IsDotted = true
		}
		if el.IsTied {
			n.IsTied = true
		}
		if el.HasCents {
			n.CentOffset = el.Cents
		}
		return []values.MusicalNoteData{n}
	default:
		c.warn(el.Loc, "variable %q is not a Note or MusicalNote", el.VarName)
		return []values.MusicalNoteData{{IsRest: true, Duration: dur, HasDuration: true, Velocity: velocity}}
	}
}

// interpolateVelocity implements spec.md section 4.4 step 4: when at
// least two distinct explicit velocities are present, linearly
// interpolate intermediate non-rest notes between the first and last.
func interpolateVelocity(notes []values.MusicalNoteData) {
	var nonRest []int
	distinct := map[float64]bool{}
	for i, n := range notes {
		if !n.IsRest {
			nonRest = append(nonRest, i)
			distinct[n.Velocity] = true
		}
	}
	if len(nonRest) < 3 || len(distinct) < 2 {
		return
	}
	first := nonRest[0]
	last := nonRest[len(nonRest)-1]
	v0, v1 := notes[first].Velocity, notes[last].Velocity
	span := len(nonRest) - 1
	for i, idx := range nonRest {
		if idx == first || idx == last {
			continue
		}
		t := float64(i) / float64(span)
		notes[idx].Velocity = v0 + (v1-v0)*t
	}
}
