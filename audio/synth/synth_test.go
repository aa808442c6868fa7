package synth

import (
	"testing"

	"canto/values"
)

func quarterNote(name byte, octave int) values.MusicalNoteData {
	return values.MusicalNoteData{
		Name: name, Octave: octave,
		Duration: values.DurationQuarter, HasDuration: true,
		Velocity: 0.8,
	}
}

func TestRegistryLookupFallsBackToPiano(t *testing.T) {
	r := NewRegistry()
	if r.Lookup("nonexistent") == nil {
		t.Fatal("Lookup of an unknown instrument should fall back to piano, not return nil")
	}
	for _, name := range []string{"piano", "lead", "pad", "bass", "pluck"} {
		if r.Lookup(name) == nil {
			t.Errorf("Lookup(%q) = nil, want a registered instrument", name)
		}
	}
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("piano", func(note values.MusicalNoteData, beats, tempo float64, sampleRate int) values.AudioBuffer {
		called = true
		return values.AudioBuffer{}
	})
	r.Lookup("piano")(quarterNote('C', 4), 1, 120, 44100)
	if !called {
		t.Error("Register should replace the existing instrument under the same name")
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	if len(names) != 5 {
		t.Fatalf("Names() = %v, want 5 default instruments", names)
	}
}

func TestOscillatorVoiceRestProducesSilence(t *testing.T) {
	inst := NewRegistry().Lookup("piano")
	rest := values.MusicalNoteData{IsRest: true, Duration: values.DurationQuarter, HasDuration: true}
	buf := inst(rest, 1, 120, 44100)
	for i, s := range buf.Samples {
		if s != 0 {
			t.Fatalf("rest buffer sample %d = %v, want 0", i, s)
		}
	}
}

func TestOscillatorVoiceFrameCountMatchesTempo(t *testing.T) {
	inst := NewRegistry().Lookup("piano")
	note := quarterNote('A', 4)
	buf := inst(note, 1, 120, 44100)
	want := framesFor(1, 120, 44100)
	if buf.Frames != want {
		t.Errorf("Frames = %d, want %d", buf.Frames, want)
	}
	if len(buf.Samples) != want {
		t.Errorf("len(Samples) = %d, want %d", len(buf.Samples), want)
	}
}

func TestOscillatorVoiceNonSilentForSoundingNote(t *testing.T) {
	inst := NewRegistry().Lookup("lead")
	note := quarterNote('A', 4)
	buf := inst(note, 1, 120, 44100)
	nonZero := false
	for _, s := range buf.Samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("a sounding note should produce a non-silent buffer")
	}
}

func TestPluckVoiceDecaysTowardZero(t *testing.T) {
	note := quarterNote('C', 5)
	buf := pluckVoice(note, 2, 120, 44100)
	if len(buf.Samples) == 0 {
		t.Fatal("pluckVoice produced an empty buffer")
	}
	// Compare RMS-ish peak magnitude across the first and last quarter of the
	// buffer: the exponential decay envelope should make the tail quieter.
	quarter := len(buf.Samples) / 4
	var headPeak, tailPeak float32
	for _, s := range buf.Samples[:quarter] {
		if abs(s) > headPeak {
			headPeak = abs(s)
		}
	}
	for _, s := range buf.Samples[len(buf.Samples)-quarter:] {
		if abs(s) > tailPeak {
			tailPeak = abs(s)
		}
	}
	if tailPeak >= headPeak {
		t.Errorf("pluckVoice tail peak %v should be quieter than head peak %v", tailPeak, headPeak)
	}
}

func TestMIDIToFreqA4(t *testing.T) {
	freq := midiToFreq(69)
	if freq < 439.9 || freq > 440.1 {
		t.Errorf("midiToFreq(69) = %v, want ~440", freq)
	}
}

func TestCentRatioZeroIsIdentity(t *testing.T) {
	if r := centRatio(0); r != 1 {
		t.Errorf("centRatio(0) = %v, want 1", r)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
