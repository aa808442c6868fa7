// Package config loads canto.yaml, the engine's own configuration file:
// default playback device, default tempo, `use`-import search paths, and
// REPL color theme. Adapted from the teacher's BTML track-file loader
// (legacyconfig.go): same yaml.v3-backed load function and the same
// StringOrList lenient-unmarshal idiom the teacher used for
// ChordProgression.Pattern, now covering SearchPaths instead of a chord
// pattern string.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root of canto.yaml.
type Config struct {
	Device       string       `yaml:"device,omitempty"`
	DefaultTempo float64      `yaml:"default_tempo,omitempty"`
	SearchPaths  StringOrList `yaml:"search_paths,omitempty"`
	Theme        Theme        `yaml:"theme,omitempty"`
	Effects      Effects      `yaml:"effects,omitempty"`
}

// Effects configures the render post-processing chain; zero values leave
// the corresponding dsp stage skipped.
type Effects struct {
	FilterCutoffHz  float64 `yaml:"filter_cutoff_hz,omitempty"`
	DelayMs         float64 `yaml:"delay_ms,omitempty"`
	DelayFeedback   float32 `yaml:"delay_feedback,omitempty"`
	DelayMix        float32 `yaml:"delay_mix,omitempty"`
	CompressorDb    float64 `yaml:"compressor_threshold_db,omitempty"`
	CompressorRatio float64 `yaml:"compressor_ratio,omitempty"`
	ReverbRoomSize  float64 `yaml:"reverb_room_size,omitempty"`
	ReverbMix       float64 `yaml:"reverb_mix,omitempty"`
}

// Theme names the REPL's color palette; any other value falls back to the
// built-in defaults in the repl package.
type Theme struct {
	Name string `yaml:"name,omitempty"`
}

// StringOrList can be unmarshaled from either a single string or a YAML
// list of strings, joined with the OS path separator so search_paths can
// be written either way in canto.yaml.
type StringOrList string

func (s *StringOrList) UnmarshalYAML(node *yaml.Node) error {
	var str string
	if err := node.Decode(&str); err == nil {
		*s = StringOrList(str)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err == nil {
		*s = StringOrList(strings.Join(list, string(os.PathListSeparator)))
		return nil
	}
	return nil
}

// Paths splits SearchPaths back into individual directories.
func (s StringOrList) Paths() []string {
	if s == "" {
		return nil
	}
	return strings.Split(string(s), string(os.PathListSeparator))
}

// Default returns the configuration used when no canto.yaml is found.
func Default() Config {
	return Config{
		Device:       "software",
		DefaultTempo: 120,
		Theme:        Theme{Name: "default"},
	}
}

// Load reads and parses canto.yaml at path, falling back to Default()
// unmodified when the file does not exist (a missing config file is not
// an error, matching the teacher's lenient stance on optional fields).
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
