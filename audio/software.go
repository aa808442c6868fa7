package audio

import (
	"fmt"
	"os"

	"canto/values"
)

// SoftwareBackend is the default backend: it writes the rendered buffer to
// a WAV file sink rather than opening a live audio device, so the engine
// has a working backend with zero new runtime audio dependencies (the
// teacher's only real playback path was always an external FluidSynth
// process; see FluidSynthBackend). Path defaults to a temp file when empty.
type SoftwareBackend struct {
	Path string
}

// NewSoftwareBackend constructs a file-sink backend writing to path (or a
// generated temp path if empty).
func NewSoftwareBackend(path string) *SoftwareBackend {
	return &SoftwareBackend{Path: path}
}

func (s *SoftwareBackend) Name() string { return "software" }

// Play writes buf as a WAV file and reports where it landed; there is no
// live device output in this backend.
func (s *SoftwareBackend) Play(buf values.AudioBuffer) error {
	path := s.Path
	if path == "" {
		f, err := os.CreateTemp("", "canto-render-*.wav")
		if err != nil {
			return err
		}
		path = f.Name()
		f.Close()
	}
	if err := WriteWAV(path, buf); err != nil {
		return err
	}
	fmt.Printf("rendered %d frames to %s\n", buf.Frames, path)
	return nil
}
