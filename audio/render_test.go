package audio

import (
	"testing"

	"canto/audio/synth"
	"canto/values"
)

func quarterC4() values.MusicalNoteData {
	return values.MusicalNoteData{Name: 'C', Octave: 4, Duration: values.DurationQuarter, Velocity: 0.8}
}

func restQuarter() values.MusicalNoteData {
	return values.MusicalNoteData{IsRest: true, Duration: values.DurationQuarter}
}

func oneNoteSequence(n values.MusicalNoteData) values.SequenceData {
	return values.SequenceData{Bars: []values.BarData{{Elements: []values.MusicalNoteData{n}}}}
}

func TestNoteBeatsQuarterNote(t *testing.T) {
	if got := noteBeats(quarterC4()); got != 1 {
		t.Errorf("noteBeats(quarter) = %v, want 1", got)
	}
}

func TestNoteBeatsDottedMultipliesByOnePointFive(t *testing.T) {
	n := quarterC4()
	n.IsDotted = true
	if got := noteBeats(n); got != 1.5 {
		t.Errorf("noteBeats(dotted quarter) = %v, want 1.5", got)
	}
}

func TestRenderSequenceProducesNonEmptyBufferForSoundingNotes(t *testing.T) {
	reg := synth.NewRegistry()
	inst := reg.Lookup("piano")
	buf := renderSequence(oneNoteSequence(quarterC4()), inst, 120, 44100)
	if buf.Frames == 0 || len(buf.Samples) != buf.Frames {
		t.Fatalf("renderSequence produced an empty buffer for a sounding note: %+v", buf)
	}
}

func TestRenderSectionMixesSequencesToCommonLength(t *testing.T) {
	reg := synth.NewRegistry()
	section := values.SectionData{
		Sequences: []values.NamedSequence{
			{Name: "lead", Sequence: oneNoteSequence(quarterC4())},
			{Name: "bass", Sequence: oneNoteSequence(restQuarter())},
		},
	}
	opts := RenderOptions{SampleRate: 44100, Instruments: map[string]string{"lead": "lead", "bass": "bass"}}
	buf := renderSection(section, reg, opts)
	if buf.Frames == 0 {
		t.Fatal("renderSection should produce a non-empty mix when at least one voice sounds")
	}
}

func TestRenderWalksSectionsInOrderAndRepeats(t *testing.T) {
	reg := synth.NewRegistry()
	section := values.SectionData{
		Sequences: []values.NamedSequence{
			{Name: "lead", Sequence: oneNoteSequence(quarterC4())},
		},
	}
	song := values.SongData{
		Registry: map[string]values.SectionData{"verse": section},
		Sections: []values.SongSectionRef{{SectionName: "verse", RepeatCount: 2}},
	}
	once := Render(song, reg, RenderOptions{SampleRate: 44100})
	song.Sections[0].RepeatCount = 1
	single := Render(song, reg, RenderOptions{SampleRate: 44100})

	// Restore RepeatCount to 2 for the actual comparison buffer.
	song.Sections[0].RepeatCount = 2
	doubled := Render(song, reg, RenderOptions{SampleRate: 44100})
	if len(doubled.Samples) != 2*len(single.Samples) {
		t.Errorf("repeating a section twice should double its sample count: got %d, want %d", len(doubled.Samples), 2*len(single.Samples))
	}
	_ = once
}

func TestRenderSkipsUnknownSectionReferences(t *testing.T) {
	reg := synth.NewRegistry()
	song := values.SongData{
		Registry: map[string]values.SectionData{},
		Sections: []values.SongSectionRef{{SectionName: "missing", RepeatCount: 1}},
	}
	buf := Render(song, reg, RenderOptions{SampleRate: 44100})
	if len(buf.Samples) != 0 {
		t.Errorf("referencing an unregistered section should contribute no samples, got %d", len(buf.Samples))
	}
}

func TestApplyEffectsNoOpWhenZeroValue(t *testing.T) {
	samples := []float32{0.1, -0.2, 0.3, -0.1}
	out := applyEffects(append([]float32{}, samples...), 44100, Effects{})
	if len(out) != len(samples) {
		t.Fatalf("applyEffects with a zero-value Effects should not change the sample count, got %d want %d", len(out), len(samples))
	}
	for i := range samples {
		if out[i] != samples[i] {
			t.Errorf("applyEffects with a zero-value Effects should pass samples through unchanged, sample[%d] = %v want %v", i, out[i], samples[i])
		}
	}
}

func TestApplyEffectsFilterStageRuns(t *testing.T) {
	samples := make([]float32, 256)
	samples[0] = 1
	out := applyEffects(samples, 44100, Effects{FilterCutoffHz: 500})
	if len(out) != len(samples) {
		t.Fatalf("applyEffects should preserve sample count, got %d want %d", len(out), len(samples))
	}
}
