package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDerefReturnsDefaultWhenNil(t *testing.T) {
	if got := deref(nil, 120); got != 120 {
		t.Errorf("deref(nil, 120) = %v, want 120", got)
	}
}

func TestDerefReturnsPointedValue(t *testing.T) {
	v := 90.0
	if got := deref(&v, 120); got != 90 {
		t.Errorf("deref(&90, 120) = %v, want 90", got)
	}
}

func TestEvalLineAppendsOkOnSuccess(t *testing.T) {
	m := New()
	m.input = "Int x = 1"
	m.evalLine()
	if len(m.history) != 1 {
		t.Fatalf("history length = %d, want 1", len(m.history))
	}
	if m.history[0].isErr {
		t.Errorf("a valid statement should not be recorded as an error, got %q", m.history[0].value)
	}
	if m.history[0].value != "ok" {
		t.Errorf("history value = %q, want ok", m.history[0].value)
	}
	if m.input != "" || m.cursor != 0 {
		t.Error("evalLine should clear the input line and reset the cursor")
	}
}

func TestEvalLineRecordsParseErrorsAndResetsReporter(t *testing.T) {
	m := New()
	m.input = ")"
	m.evalLine()
	if len(m.history) != 1 || !m.history[0].isErr {
		t.Fatalf("a malformed line should be recorded as an error, got %+v", m.history)
	}
	if m.reporter.HasErrors() {
		t.Error("evalLine should reset the reporter after recording diagnostics into history")
	}
}

func TestEvalLineIgnoresBlankInput(t *testing.T) {
	m := New()
	m.input = "   "
	m.evalLine()
	if len(m.history) != 0 {
		t.Errorf("blank input should not produce a history entry, got %d entries", len(m.history))
	}
}

func TestEvalLineRecordsRuntimeErrors(t *testing.T) {
	m := New()
	m.input = "undefinedName"
	m.evalLine()
	if len(m.history) != 1 || !m.history[0].isErr {
		t.Fatalf("referencing an undefined name should be recorded as an error, got %+v", m.history)
	}
}

func TestUpdateTypingAppendsRunesAtCursor(t *testing.T) {
	m := New()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	if m.input != "ab" || m.cursor != 2 {
		t.Fatalf("input=%q cursor=%d, want input=ab cursor=2", m.input, m.cursor)
	}
}

func TestUpdateBackspaceRemovesCharBeforeCursor(t *testing.T) {
	m := New()
	m.input = "ab"
	m.cursor = 2
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.input != "a" || m.cursor != 1 {
		t.Fatalf("input=%q cursor=%d, want input=a cursor=1", m.input, m.cursor)
	}
}

func TestUpdateBackspaceAtStartIsNoOp(t *testing.T) {
	m := New()
	m.input = "ab"
	m.cursor = 0
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.input != "ab" || m.cursor != 0 {
		t.Fatalf("backspace at cursor 0 should be a no-op, got input=%q cursor=%d", m.input, m.cursor)
	}
}

func TestUpdateArrowKeysMoveCursorWithinBounds(t *testing.T) {
	m := New()
	m.input = "ab"
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.cursor != 0 {
		t.Errorf("left arrow at cursor 0 should not go negative, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.cursor != 2 {
		t.Errorf("right arrow should not move past len(input), got cursor=%d", m.cursor)
	}
}

func TestUpdateEscQuits(t *testing.T) {
	m := New()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting {
		t.Error("esc should set quitting")
	}
	if cmd == nil {
		t.Error("esc should return a quit command")
	}
}

func TestViewIncludesPromptAndHistory(t *testing.T) {
	m := New()
	m.input = "Int x = 1"
	m.evalLine()
	out := m.View()
	if !strings.Contains(out, "Int x = 1") {
		t.Error("View should echo the evaluated input line in the scrollback")
	}
	if !strings.Contains(out, "canto repl") {
		t.Error("View should render the header")
	}
}

func TestRenderContextShowsDefaultsWhenNoContextSet(t *testing.T) {
	m := New()
	out := m.renderContext()
	if !strings.Contains(out, "tempo=120") {
		t.Errorf("renderContext = %q, want it to include the default tempo=120", out)
	}
}
