// Command canto is the CLI entry point: `canto run <file>`, `canto repl`,
// `canto export <file> [out.mid]`, with `--device <name>` and
// `--watch <file>` flags. Structured the way the teacher's main.go is: a
// hand-rolled parseArgs flag scanner and a switch over the subcommand,
// no flag/pflag dependency (the teacher never carried one, so none is
// introduced here either).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"canto/ast"
	"canto/audio"
	"canto/audio/synth"
	"canto/config"
	"canto/diag"
	"canto/eval"
	"canto/lexer"
	"canto/parser"
	"canto/registry"
	"canto/repl"
	"canto/rng"
	"canto/stdlib"
	"canto/values"

	"golang.org/x/term"
)

var (
	devicePath string
	watchFile  string
)

func main() {
	args := parseArgs(os.Args[1:])
	if len(args) < 1 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			args = []string{"repl"}
		} else {
			printUsage()
			os.Exit(1)
		}
	}

	cfg, err := config.Load("canto.yaml")
	if err != nil {
		fmt.Printf("warning: failed to load canto.yaml: %v\n", err)
	}
	if devicePath == "" {
		devicePath = cfg.Device
	}

	switch args[0] {
	case "run":
		if len(args) < 2 {
			fmt.Println("Error: run requires a .canto file")
			printUsage()
			os.Exit(1)
		}
		runFile(args[1], cfg)
	case "repl":
		if err := repl.Run(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if len(args) < 2 {
			fmt.Println("Error: export requires a .canto file")
			printUsage()
			os.Exit(1)
		}
		out := ""
		if len(args) >= 3 {
			out = args[2]
		}
		exportFile(args[1], out, cfg)
	default:
		printUsage()
		os.Exit(1)
	}
}

// parseArgs extracts --device/--watch flags and returns the remaining
// positional arguments, following the teacher's manual scan-and-skip loop.
func parseArgs(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--device" || arg == "-d":
			if i+1 < len(args) {
				devicePath = args[i+1]
				i++
			} else {
				fmt.Println("Error: --device requires a name")
				os.Exit(1)
			}
		case strings.HasPrefix(arg, "--device="):
			devicePath = strings.TrimPrefix(arg, "--device=")
		case arg == "--watch" || arg == "-w":
			if i+1 < len(args) {
				watchFile = args[i+1]
				i++
			} else {
				fmt.Println("Error: --watch requires a file")
				os.Exit(1)
			}
		case strings.HasPrefix(arg, "--watch="):
			watchFile = strings.TrimPrefix(arg, "--watch=")
		case arg == "--help" || arg == "-h":
			printUsage()
			os.Exit(0)
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining
}

func runFile(path string, cfg config.Config) {
	if watchFile == "" {
		runOnce(path, cfg)
		return
	}
	var lastMod time.Time
	for {
		info, err := os.Stat(watchFile)
		if err == nil && info.ModTime().After(lastMod) {
			lastMod = info.ModTime()
			runOnce(path, cfg)
		}
		time.Sleep(300 * time.Millisecond)
	}
}

func runOnce(path string, cfg config.Config) {
	reporter := diag.NewReporter()
	song, sections, err := evalProgram(path, reporter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if reporter.HasErrors() || len(reporter.Diagnostics()) > 0 {
		fmt.Print(reporter.Render())
	}
	if song == nil {
		fmt.Printf("ok: %d section(s) defined, no Song arrangement to render\n", len(sections))
		return
	}

	reg := synth.NewRegistry()
	buf := audio.Render(*song, reg, audio.RenderOptions{Effects: toAudioEffects(cfg.Effects)})

	backend, err := selectBackend(devicePath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := backend.Play(buf); err != nil {
		fmt.Printf("Error playing: %v\n", err)
	}
}

func exportFile(path, out string, cfg config.Config) {
	reporter := diag.NewReporter()
	song, _, err := evalProgram(path, reporter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if reporter.HasErrors() {
		fmt.Print(reporter.Render())
		os.Exit(1)
	}
	if song == nil {
		fmt.Println("Error: program defines no Song arrangement to export")
		os.Exit(1)
	}
	if out == "" {
		base := filepath.Base(path)
		ext := filepath.Ext(base)
		out = strings.TrimSuffix(base, ext) + ".mid"
	}
	if err := audio.WriteMIDI(out, *song, cfg.DefaultTempo); err != nil {
		fmt.Printf("Error writing MIDI: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported to: %s\n", out)
}

// evalProgram lexes, parses, and evaluates the file, returning the last
// Song value assigned at top level (if any) and the evaluator's sections.
func evalProgram(path string, reporter *diag.Reporter) (*values.SongData, map[string]values.SectionData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	toks := lexer.New(string(data), path, reporter).Tokenize()
	p := parser.New(toks, reporter)
	program := p.Parse()

	reg := registry.NewRegistry()
	r := rng.NewEngine()
	stdlib.Register(reg, r, reporter)
	ev := eval.New(reporter, reg, r)
	ev.Eval(program)

	song := lastSong(program, ev)
	return song, ev.Sections, nil
}

// lastSong finds the last top-level `Song` declaration and resolves its
// value from the evaluator's root scope (declarations at top level are
// never popped, so the binding is still live once Eval returns).
func lastSong(program []ast.Statement, ev *eval.Evaluator) *values.SongData {
	var name string
	for _, stmt := range program {
		if decl, ok := stmt.(*ast.Declaration); ok && decl.TypeName == "Song" {
			name = decl.Name
		}
	}
	if name == "" {
		return nil
	}
	v, ok := ev.Stack.Lookup(name)
	if !ok || v.Type != values.Song {
		return nil
	}
	song, ok := values.As[values.SongData](v, values.Song)
	if !ok {
		return nil
	}
	return &song
}

// toAudioEffects carries the canto.yaml effects block into the renderer's
// own Effects type, keeping audio/render.go free of a config import.
func toAudioEffects(e config.Effects) audio.Effects {
	return audio.Effects{
		FilterCutoffHz:  e.FilterCutoffHz,
		DelayMs:         e.DelayMs,
		DelayFeedback:   e.DelayFeedback,
		DelayMix:        e.DelayMix,
		CompressorDb:    e.CompressorDb,
		CompressorRatio: e.CompressorRatio,
		ReverbRoomSize:  e.ReverbRoomSize,
		ReverbMix:       e.ReverbMix,
	}
}

func selectBackend(device string) (audio.Backend, error) {
	switch device {
	case "fluidsynth":
		return audio.NewFluidSynthBackend("")
	default:
		return audio.NewSoftwareBackend(""), nil
	}
}

func printUsage() {
	fmt.Println("canto — a musical-composition scripting language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  canto run <file.canto>               Run and play a program")
	fmt.Println("  canto repl                            Start the interactive shell")
	fmt.Println("  canto export <file.canto> [out.mid]   Export the program's Song to MIDI")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --device, -d <name>    Playback backend: software (default) or fluidsynth")
	fmt.Println("  --watch, -w <file>     Re-run on changes to <file>")
	fmt.Println("  --help, -h             Show this help")
}
