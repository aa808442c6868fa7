package audio

import (
	"canto/audio/dsp"
	"canto/audio/synth"
	"canto/values"
)

const defaultSampleRate = 44100

// Effects configures the post-processing chain applied to the final mixed
// buffer: a low-pass filter, a feedback delay, a compressor and a
// comb-filter reverb, each skipped at its zero value.
type Effects struct {
	FilterCutoffHz float64
	DelayMs        float64
	DelayFeedback  float32
	DelayMix       float32
	CompressorDb   float64
	CompressorRatio float64
	ReverbRoomSize float64
	ReverbMix      float64
}

// RenderOptions configures how a SongData is walked and rendered.
type RenderOptions struct {
	SampleRate int
	// Instruments maps a section's sequence name to an instrument name,
	// e.g. {"chords": "pad", "bass": "bass", "drums": "pluck"}; sequences
	// with no entry fall back to "piano".
	Instruments map[string]string
	Effects     Effects
}

// Render walks every section reference in song.Sections in order, renders
// each named sequence through its instrument, and mixes the resulting
// voices into one buffer per section repeat, concatenated end to end.
// This mirrors GenerateFromTrack's track-by-track walk, sorted-event
// merge, but the unit of work is a rendered voice, not a MIDI message.
func Render(song values.SongData, reg *synth.Registry, opts RenderOptions) values.AudioBuffer {
	if opts.SampleRate == 0 {
		opts.SampleRate = defaultSampleRate
	}
	var mixed values.AudioBuffer
	mixed.SampleRate = opts.SampleRate
	mixed.Channels = 1

	for _, ref := range song.Sections {
		section, ok := song.Registry[ref.SectionName]
		if !ok {
			continue
		}
		for rep := 0; rep < ref.RepeatCount; rep++ {
			sectionBuf := renderSection(section, reg, opts)
			mixed.Samples = append(mixed.Samples, sectionBuf.Samples...)
		}
	}
	mixed.Samples = applyEffects(mixed.Samples, opts.SampleRate, opts.Effects)
	mixed.Frames = len(mixed.Samples)
	return mixed
}

// applyEffects runs the post-processing chain over the mixed song buffer,
// skipping any stage whose knob is at its zero value.
func applyEffects(samples []float32, sampleRate int, fx Effects) []float32 {
	if fx.FilterCutoffHz > 0 {
		samples = dsp.Filter(samples, sampleRate, fx.FilterCutoffHz)
	}
	if fx.DelayMs > 0 {
		samples = dsp.Delay(samples, sampleRate, fx.DelayMs, fx.DelayFeedback, fx.DelayMix)
	}
	if fx.CompressorRatio > 1 {
		samples = dsp.Compressor(samples, fx.CompressorDb, fx.CompressorRatio)
	}
	if fx.ReverbMix > 0 {
		samples = dsp.Reverb(samples, sampleRate, fx.ReverbRoomSize, fx.ReverbMix)
	}
	return samples
}

func renderSection(section values.SectionData, reg *synth.Registry, opts RenderOptions) values.AudioBuffer {
	tempo := 120.0
	if section.Context.Tempo != nil {
		tempo = *section.Context.Tempo
	}

	var voices []values.Voice
	maxFrames := 0
	for _, named := range section.Sequences {
		instName := opts.Instruments[named.Name]
		inst := reg.Lookup(instName)
		buf := renderSequence(named.Sequence, inst, tempo, opts.SampleRate)
		voices = append(voices, values.Voice{Buffer: buf, Gain: 1.0})
		if buf.Frames > maxFrames {
			maxFrames = buf.Frames
		}
	}

	mix := make([]float32, maxFrames)
	for _, v := range voices {
		for i, s := range v.Buffer.Samples {
			if i >= len(mix) {
				break
			}
			mix[i] += s * float32(v.Gain)
		}
	}
	return values.AudioBuffer{Samples: mix, Frames: maxFrames, Channels: 1, SampleRate: opts.SampleRate}
}

func renderSequence(seq values.SequenceData, inst synth.Instrument, tempo float64, sampleRate int) values.AudioBuffer {
	var out []float32
	for _, bar := range seq.Bars {
		for _, note := range bar.Elements {
			beats := noteBeats(note)
			buf := inst(note, beats, tempo, sampleRate)
			out = append(out, buf.Samples...)
		}
	}
	return values.AudioBuffer{Samples: out, Frames: len(out), Channels: 1, SampleRate: sampleRate}
}

// noteBeats converts a duration fraction of a whole note into quarter-note
// beats (the unit renderSequence and synth.Instrument both work in).
func noteBeats(n values.MusicalNoteData) float64 {
	beats := n.Duration.Fraction() * 4
	if n.IsDotted {
		beats *= 1.5
	}
	return beats
}
