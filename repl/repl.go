// Package repl implements an interactive Canto shell: a bubbletea
// model/update/view program in the shape of the teacher's display.TUIModel
// (display/tui.go), but rendering an evaluator's live scope stack, last
// result, and diagnostics feed instead of a chord chart and fretboard.
package repl

import (
	"fmt"
	"strings"

	"canto/diag"
	"canto/eval"
	"canto/lexer"
	"canto/parser"
	"canto/registry"
	"canto/rng"
	"canto/stdlib"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6666"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
)

// historyLine is one rendered input/output pair kept for the scrollback.
type historyLine struct {
	input string
	value string
	isErr bool
}

// Model is the bubbletea model driving the REPL: accumulated evaluator
// state plus the current line being edited.
type Model struct {
	evaluator *eval.Evaluator
	reporter  *diag.Reporter
	registry  *registry.Registry
	rngEngine *rng.Engine

	input    string
	cursor   int
	history  []historyLine
	quitting bool
}

// New constructs a fresh REPL model with its own evaluator and registry,
// exactly as a single canto process owns one evaluator for its lifetime.
func New() *Model {
	reporter := diag.NewReporter()
	reg := registry.NewRegistry()
	r := rng.NewEngine()
	stdlib.Register(reg, r, reporter)
	return &Model{
		evaluator: eval.New(reporter, reg, r),
		reporter:  reporter,
		registry:  reg,
		rngEngine: r,
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.evalLine()
		case "backspace":
			if m.cursor > 0 {
				m.input = m.input[:m.cursor-1] + m.input[m.cursor:]
				m.cursor--
			}
		case "left":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right":
			if m.cursor < len(m.input) {
				m.cursor++
			}
		default:
			if len(msg.Runes) > 0 {
				r := string(msg.Runes)
				m.input = m.input[:m.cursor] + r + m.input[m.cursor:]
				m.cursor += len(r)
			}
		}
	}
	return m, nil
}

// evalLine lexes, parses and evaluates the current input line as a single
// program, recording the result or any diagnostics into the scrollback.
func (m *Model) evalLine() {
	line := m.input
	m.input = ""
	m.cursor = 0
	if strings.TrimSpace(line) == "" {
		return
	}

	toks := lexer.New(line, "<repl>", m.reporter).Tokenize()
	p := parser.New(toks, m.reporter)
	program := p.Parse()

	if m.reporter.HasErrors() {
		m.history = append(m.history, historyLine{input: line, value: m.reporter.Render(), isErr: true})
		m.reporter.Reset()
		return
	}

	m.evaluator.Eval(program)
	if m.reporter.HasErrors() {
		m.history = append(m.history, historyLine{input: line, value: m.reporter.Render(), isErr: true})
	} else {
		m.history = append(m.history, historyLine{input: line, value: "ok"})
	}
	m.reporter.Reset()
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("canto repl") + "\n")
	b.WriteString(dimStyle.Render("type a statement, enter to run, esc to quit") + "\n\n")

	for _, h := range m.history {
		b.WriteString(promptStyle.Render("> ") + h.input + "\n")
		if h.isErr {
			b.WriteString(errorStyle.Render(h.value) + "\n")
		} else {
			b.WriteString(valueStyle.Render(h.value) + "\n")
		}
	}

	b.WriteString(promptStyle.Render("> ") + m.input + "\n")
	b.WriteString(m.renderContext())
	return b.String()
}

// renderContext shows the evaluator's current top-level musical context
// and the number of sections defined so far, the live-state panel
// equivalent of the teacher's chord/fretboard columns.
func (m *Model) renderContext() string {
	ctx := m.evaluator.Stack.MusicalContext()
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"tempo=%.0f swing=%.2f sections=%d",
		deref(ctx.Tempo, 120), deref(ctx.Swing, 0.5), len(m.evaluator.Sections),
	)))
	return b.String()
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Run starts the bubbletea program in the alt-screen, matching the
// teacher's player.PlayMIDIWithDisplay invocation of tea.NewProgram.
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
