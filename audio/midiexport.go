package audio

import (
	"os"
	"sort"

	"canto/values"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// midiEvent pairs an absolute tick with the message to emit there, the
// same shape midi/generator.go sorts before converting to delta time.
type midiEvent struct {
	tick    uint32
	message midi.Message
}

const ticksPerQuarter = 480

// WriteMIDI exports song as a Standard MIDI File: one tempo/meta track,
// then one note track per sequence name across every section, assigning
// channels in the order sequence names are first seen (channel 9 reserved
// for any sequence named "drums", matching General MIDI convention).
func WriteMIDI(path string, song values.SongData, defaultTempo float64) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaTempo(defaultTempo))
	meta.Close(0)
	s.Add(meta)

	channels := assignChannels(song)
	events := make(map[string][]midiEvent)

	var tick uint32
	for _, ref := range song.Sections {
		section, ok := song.Registry[ref.SectionName]
		if !ok {
			continue
		}
		for rep := 0; rep < ref.RepeatCount; rep++ {
			sectionTicks := appendSectionEvents(events, section, tick, channels)
			tick += sectionTicks
		}
	}

	for name, ch := range channels {
		var track smf.Track
		track.Add(0, midi.ProgramChange(ch, 0))
		evts := events[name]
		sort.Slice(evts, func(i, j int) bool { return evts[i].tick < evts[j].tick })
		var prev uint32
		for _, e := range evts {
			track.Add(e.tick-prev, e.message)
			prev = e.tick
		}
		track.Close(0)
		s.Add(track)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.WriteTo(f)
	return err
}

func assignChannels(song values.SongData) map[string]uint8 {
	channels := make(map[string]uint8)
	next := uint8(0)
	// Visit sections in arrangement order, then any unreferenced ones by
	// name, so the first-seen order does not depend on map iteration.
	var order []string
	seen := make(map[string]bool)
	for _, ref := range song.Sections {
		if !seen[ref.SectionName] {
			seen[ref.SectionName] = true
			order = append(order, ref.SectionName)
		}
	}
	var rest []string
	for name := range song.Registry {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range append(order, rest...) {
		section, ok := song.Registry[name]
		if !ok {
			continue
		}
		for _, named := range section.Sequences {
			if _, ok := channels[named.Name]; ok {
				continue
			}
			if named.Name == "drums" {
				channels[named.Name] = 9
				continue
			}
			if next == 9 {
				next++
			}
			channels[named.Name] = next
			next++
		}
	}
	return channels
}

func appendSectionEvents(events map[string][]midiEvent, section values.SectionData, startTick uint32, channels map[string]uint8) uint32 {
	var sectionTicks uint32
	for _, named := range section.Sequences {
		seqTick := startTick
		for _, bar := range named.Sequence.Bars {
			for _, note := range bar.Elements {
				durTicks := uint32(noteBeats(note) * ticksPerQuarter)
				if !note.IsRest {
					ch := channels[named.Name]
					midiNote := uint8(note.MIDI())
					vel := uint8(note.Velocity * 127)
					events[named.Name] = append(events[named.Name],
						midiEvent{seqTick, midi.NoteOn(ch, midiNote, vel)},
						midiEvent{seqTick + durTicks, midi.NoteOff(ch, midiNote)},
					)
				}
				seqTick += durTicks
			}
		}
		if seqTick-startTick > sectionTicks {
			sectionTicks = seqTick - startTick
		}
	}
	return sectionTicks
}
