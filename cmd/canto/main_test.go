package main

import (
	"os"
	"path/filepath"
	"testing"

	"canto/ast"
	"canto/config"
	"canto/diag"
	"canto/eval"
	"canto/registry"
	"canto/rng"
	"canto/stdlib"
	"canto/values"
)

// withCleanFlags resets the package-level flag state before and after t,
// since parseArgs mutates devicePath/watchFile as a side effect.
func withCleanFlags(t *testing.T) {
	t.Helper()
	savedDevice, savedWatch := devicePath, watchFile
	devicePath, watchFile = "", ""
	t.Cleanup(func() { devicePath, watchFile = savedDevice, savedWatch })
}

func TestParseArgsExtractsDeviceFlag(t *testing.T) {
	withCleanFlags(t)
	rest := parseArgs([]string{"run", "--device", "fluidsynth", "song.canto"})
	if devicePath != "fluidsynth" {
		t.Errorf("devicePath = %q, want fluidsynth", devicePath)
	}
	if len(rest) != 2 || rest[0] != "run" || rest[1] != "song.canto" {
		t.Errorf("remaining args = %v, want [run song.canto]", rest)
	}
}

func TestParseArgsExtractsDeviceFlagEqualsForm(t *testing.T) {
	withCleanFlags(t)
	rest := parseArgs([]string{"--device=fluidsynth", "run"})
	if devicePath != "fluidsynth" {
		t.Errorf("devicePath = %q, want fluidsynth", devicePath)
	}
	if len(rest) != 1 || rest[0] != "run" {
		t.Errorf("remaining args = %v, want [run]", rest)
	}
}

func TestParseArgsExtractsWatchFlag(t *testing.T) {
	withCleanFlags(t)
	rest := parseArgs([]string{"run", "song.canto", "--watch", "song.canto"})
	if watchFile != "song.canto" {
		t.Errorf("watchFile = %q, want song.canto", watchFile)
	}
	if len(rest) != 2 {
		t.Errorf("remaining args = %v, want 2 positional args", rest)
	}
}

func TestParseArgsLeavesUnrecognizedArgsInPlace(t *testing.T) {
	withCleanFlags(t)
	rest := parseArgs([]string{"export", "song.canto", "out.mid"})
	if len(rest) != 3 {
		t.Fatalf("remaining args = %v, want 3 positional args", rest)
	}
	if rest[0] != "export" || rest[1] != "song.canto" || rest[2] != "out.mid" {
		t.Errorf("remaining args = %v, unexpected", rest)
	}
}

func TestToAudioEffectsCopiesAllFields(t *testing.T) {
	cfgEffects := config.Effects{
		FilterCutoffHz:  500,
		DelayMs:         200,
		DelayFeedback:   0.3,
		DelayMix:        0.4,
		CompressorDb:    -12,
		CompressorRatio: 4,
		ReverbRoomSize:  0.6,
		ReverbMix:       0.25,
	}
	got := toAudioEffects(cfgEffects)
	if got.FilterCutoffHz != 500 || got.DelayMs != 200 || got.DelayFeedback != 0.3 ||
		got.DelayMix != 0.4 || got.CompressorDb != -12 || got.CompressorRatio != 4 ||
		got.ReverbRoomSize != 0.6 || got.ReverbMix != 0.25 {
		t.Errorf("toAudioEffects(%+v) = %+v, fields did not carry over", cfgEffects, got)
	}
}

func TestSelectBackendDefaultsToSoftware(t *testing.T) {
	backend, err := selectBackend("")
	if err != nil {
		t.Fatalf("selectBackend(\"\") failed: %v", err)
	}
	if backend.Name() != "software" {
		t.Errorf("backend.Name() = %q, want software", backend.Name())
	}
}

func TestSelectBackendUnknownNameFallsBackToSoftware(t *testing.T) {
	backend, err := selectBackend("something-else")
	if err != nil {
		t.Fatalf("selectBackend should not error on an unrecognized device name: %v", err)
	}
	if backend.Name() != "software" {
		t.Errorf("backend.Name() = %q, want software", backend.Name())
	}
}

func newEvaluatorWithStdlib(reporter *diag.Reporter) *eval.Evaluator {
	reg := registry.NewRegistry()
	r := rng.NewEngine()
	stdlib.Register(reg, r, reporter)
	return eval.New(reporter, reg, r)
}

func TestLastSongReturnsNilWithoutSongDeclaration(t *testing.T) {
	reporter := diag.NewReporter()
	ev := newEvaluatorWithStdlib(reporter)
	program := []ast.Statement{
		&ast.Declaration{TypeName: "Int", Name: "x", Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
	}
	ev.Eval(program)
	if got := lastSong(program, ev); got != nil {
		t.Errorf("lastSong with no Song declaration = %+v, want nil", got)
	}
}

func TestLastSongReturnsLastDeclaredSong(t *testing.T) {
	reporter := diag.NewReporter()
	ev := newEvaluatorWithStdlib(reporter)
	ev.Sections["intro"] = values.SectionData{Name: "intro"}
	ev.Sections["outro"] = values.SectionData{Name: "outro"}
	program := []ast.Statement{
		&ast.Declaration{TypeName: "Song", Name: "s1", Value: &ast.SongLiteral{
			Refs: []ast.SongRef{{Name: "intro", RepeatCount: 1}},
		}},
		&ast.Declaration{TypeName: "Song", Name: "s2", Value: &ast.SongLiteral{
			Refs: []ast.SongRef{{Name: "outro", RepeatCount: 1}},
		}},
	}
	ev.Eval(program)
	if reporter.HasErrors() {
		t.Fatalf("unexpected evaluation errors: %v", reporter.Diagnostics())
	}
	got := lastSong(program, ev)
	if got == nil {
		t.Fatal("lastSong should resolve the last top-level Song declaration")
	}
	if len(got.Sections) != 1 || got.Sections[0].SectionName != "outro" {
		t.Errorf("lastSong = %+v, want a single outro reference", got)
	}
}

func TestEvalProgramReadsParsesAndEvaluatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.canto")
	if err := os.WriteFile(path, []byte("section verse {\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reporter := diag.NewReporter()
	song, sections, err := evalProgram(path, reporter)
	if err != nil {
		t.Fatalf("evalProgram failed: %v", err)
	}
	if song != nil {
		t.Error("a program with no Song literal should return a nil song")
	}
	if _, ok := sections["verse"]; !ok {
		t.Errorf("sections = %+v, want a registered verse section", sections)
	}
}

func TestEvalProgramMissingFileReturnsError(t *testing.T) {
	reporter := diag.NewReporter()
	_, _, err := evalProgram(filepath.Join(t.TempDir(), "missing.canto"), reporter)
	if err == nil {
		t.Error("evalProgram with a missing file should return an error")
	}
}
