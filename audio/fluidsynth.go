package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"canto/values"
)

// FluidSynthBackend plays a rendered buffer by writing it to a temporary
// WAV file and handing it to an installed fluidsynth binary, adapted from
// the teacher's PlayMIDI/findSoundFont discovery chain (player/fluidsynth.go)
// but driving fluidsynth's own WAV-file render mode rather than a MIDI
// sequence, since SPEC_FULL.md's render pipeline already produces PCM.
type FluidSynthBackend struct {
	SoundFont string
}

// NewFluidSynthBackend locates an installed fluidsynth binary and a
// SoundFont file, failing the same way the teacher's PlayMIDI did when
// neither is present.
func NewFluidSynthBackend(customSoundFont string) (*FluidSynthBackend, error) {
	if _, err := exec.LookPath("fluidsynth"); err != nil {
		return nil, fmt.Errorf("fluidsynth not found: please install with 'apt install fluidsynth'")
	}
	sf, err := findSoundFont(customSoundFont)
	if err != nil {
		return nil, err
	}
	return &FluidSynthBackend{SoundFont: sf}, nil
}

func (f *FluidSynthBackend) Name() string { return "fluidsynth" }

// Play writes buf to a temporary WAV file, then lets fluidsynth render and
// play it through the system's audio device with its own output driver.
func (f *FluidSynthBackend) Play(buf values.AudioBuffer) error {
	tmp, err := os.CreateTemp("", "canto-render-*.wav")
	if err != nil {
		return err
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := WriteWAV(tmp.Name(), buf); err != nil {
		return err
	}
	cmd := exec.Command("fluidsynth", "-ni", "-q", f.SoundFont, tmp.Name(), "-r", fmt.Sprint(buf.SampleRate))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("fluidsynth error: %w", err)
	}
	return nil
}

// findSoundFont locates a usable SoundFont, preferring an explicit path,
// then well-known system locations, then a local ./soundfonts directory.
func findSoundFont(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("soundfont not found: %s", customPath)
	}
	candidates := []string{
		"/usr/share/sounds/sf2/FluidR3_GM.sf2",
		"/usr/share/sounds/sf2/default.sf2",
		"/usr/share/soundfonts/FluidR3_GM.sf2",
		"/usr/share/soundfonts/default-GM.sf2",
		"/usr/share/sounds/sf2/TimGM6mb.sf2",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	matches, _ := filepath.Glob("./soundfonts/*.sf2")
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", fmt.Errorf("no soundfont found: install one or pass --soundfont")
}
