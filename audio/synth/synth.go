// Package synth renders values.MusicalNoteData into values.AudioBuffer via
// a registry of named instrument voices, grounded in the teacher's
// instrument-to-GM-program mapping (midi/generator.go's ProgramChange
// calls) but generating raw samples instead of MIDI program-change events,
// since SPEC_FULL.md's audio backend renders PCM rather than delegating
// entirely to an external sequencer.
package synth

import (
	"math"

	"canto/values"
)

const defaultSampleRate = 44100

// Instrument renders one note (or rest) to a buffer at the given tempo.
type Instrument func(note values.MusicalNoteData, beats float64, tempo float64, sampleRate int) values.AudioBuffer

// Registry maps an instrument name to its renderer.
type Registry struct {
	byName map[string]Instrument
}

// NewRegistry builds a registry pre-populated with the default oscillator
// voices; additional instruments can be added with Register.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Instrument)}
	r.Register("piano", oscillatorVoice(waveSine, 0.5))
	r.Register("lead", oscillatorVoice(waveSaw, 0.35))
	r.Register("pad", oscillatorVoice(waveTriangle, 0.8))
	r.Register("bass", oscillatorVoice(waveSquare, 0.5))
	r.Register("pluck", pluckVoice)
	return r
}

// Register adds or replaces the instrument under name.
func (r *Registry) Register(name string, inst Instrument) { r.byName[name] = inst }

// Lookup returns the instrument, falling back to "piano" if name is unknown.
func (r *Registry) Lookup(name string) Instrument {
	if inst, ok := r.byName[name]; ok {
		return inst
	}
	return r.byName["piano"]
}

// Names lists the registered instrument names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

func beatsToSeconds(beats, tempo float64) float64 { return beats * 60 / tempo }

func framesFor(beats, tempo float64, sampleRate int) int {
	return int(beatsToSeconds(beats, tempo) * float64(sampleRate))
}

func silentBuffer(frames, sampleRate int) values.AudioBuffer {
	return values.AudioBuffer{Samples: make([]float32, frames), Frames: frames, Channels: 1, SampleRate: sampleRate}
}

type waveform func(phase float64) float64

func waveSine(phase float64) float64 { return math.Sin(2 * math.Pi * phase) }

func waveSaw(phase float64) float64 { return 2*(phase-math.Floor(phase+0.5)) }

func waveSquare(phase float64) float64 {
	if math.Mod(phase, 1.0) < 0.5 {
		return 1
	}
	return -1
}

func waveTriangle(phase float64) float64 {
	p := math.Mod(phase, 1.0)
	return 4*math.Abs(p-0.5) - 1
}

// oscillatorVoice builds an Instrument from a waveform and a release-decay
// shape factor (0 = hard gate, 1 = long linear decay).
func oscillatorVoice(wave waveform, decay float64) Instrument {
	return func(note values.MusicalNoteData, beats, tempo float64, sampleRate int) values.AudioBuffer {
		frames := framesFor(beats, tempo, sampleRate)
		if note.IsRest || frames == 0 {
			return silentBuffer(frames, sampleRate)
		}
		freq := midiToFreq(note.MIDI()) * centRatio(note.CentOffset)
		amp := 0.25 + 0.5*note.Velocity
		samples := make([]float32, frames)
		for i := range samples {
			t := float64(i) / float64(sampleRate)
			env := envelope(i, frames, decay)
			samples[i] = float32(wave(freq*t) * amp * env)
		}
		return values.AudioBuffer{Samples: samples, Frames: frames, Channels: 1, SampleRate: sampleRate}
	}
}

// pluckVoice applies a fast exponential decay on top of a triangle wave to
// approximate a plucked-string attack/release shape.
func pluckVoice(note values.MusicalNoteData, beats, tempo float64, sampleRate int) values.AudioBuffer {
	frames := framesFor(beats, tempo, sampleRate)
	if note.IsRest || frames == 0 {
		return silentBuffer(frames, sampleRate)
	}
	freq := midiToFreq(note.MIDI()) * centRatio(note.CentOffset)
	amp := 0.25 + 0.5*note.Velocity
	samples := make([]float32, frames)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		decay := math.Exp(-4 * float64(i) / float64(frames))
		samples[i] = float32(waveTriangle(freq*t) * amp * decay)
	}
	return values.AudioBuffer{Samples: samples, Frames: frames, Channels: 1, SampleRate: sampleRate}
}

func envelope(i, frames int, decay float64) float64 {
	attack := int(float64(frames) * 0.02)
	if i < attack && attack > 0 {
		return float64(i) / float64(attack)
	}
	if decay <= 0 {
		return 1
	}
	release := int(float64(frames) * decay)
	if release <= 0 {
		return 1
	}
	tailStart := frames - release
	if i < tailStart {
		return 1
	}
	return math.Max(0, float64(frames-i)/float64(release))
}

func midiToFreq(midiNote int) float64 {
	return 440 * math.Pow(2, float64(midiNote-69)/12)
}

func centRatio(cents float64) float64 {
	if cents == 0 {
		return 1
	}
	return math.Pow(2, cents/1200)
}
