// Package audio renders a compiled values.SongData into PCM and plays or
// exports it, grounded in the teacher's player package (real-time/
// file-based FluidSynth playback) and midi/generator.go (MIDI export),
// generalized from a single hard-coded chord/bass/drum arrangement to an
// arbitrary section/sequence arrangement.
package audio

import "canto/values"

// Backend plays or persists a rendered buffer. The software backend is the
// default (no new runtime dependency); FluidSynthBackend additionally
// shells out to an installed fluidsynth binary, mirroring the teacher's
// player.PlayMIDIWithDisplay fallback chain.
type Backend interface {
	// Play renders buf to the system's audio output, blocking until done.
	Play(buf values.AudioBuffer) error
	// Name identifies the backend for CLI/REPL status reporting.
	Name() string
}
