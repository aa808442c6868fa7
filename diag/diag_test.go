package diag

import "testing"

func TestHasErrorsOnlyTrueForErrorLevel(t *testing.T) {
	r := NewReporter()
	r.Info(Location{}, "info message")
	r.Warn(Location{}, KindRange, "warn message")
	if r.HasErrors() {
		t.Fatal("HasErrors should be false with only info/warning diagnostics")
	}
	r.Error(Location{}, KindType, "error message")
	if !r.HasErrors() {
		t.Fatal("HasErrors should be true once an Error-level diagnostic is recorded")
	}
}

func TestDiagnosticsOrderPreserved(t *testing.T) {
	r := NewReporter()
	r.Info(Location{Line: 1}, "first")
	r.Warn(Location{Line: 2}, KindLex, "second")
	r.Error(Location{Line: 3}, KindParse, "third")
	got := r.Diagnostics()
	if len(got) != 3 {
		t.Fatalf("Diagnostics() length = %d, want 3", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" || got[2].Message != "third" {
		t.Error("Diagnostics() should preserve report order")
	}
}

func TestResetClearsDiagnostics(t *testing.T) {
	r := NewReporter()
	r.Error(Location{}, KindRuntime, "boom")
	r.Reset()
	if len(r.Diagnostics()) != 0 {
		t.Error("Reset should clear all diagnostics")
	}
	if r.HasErrors() {
		t.Error("HasErrors should be false after Reset")
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{File: "song.canto", Line: 5, Column: 10}
	if got := loc.String(); got != "song.canto:5:10" {
		t.Errorf("Location.String() = %q, want %q", got, "song.canto:5:10")
	}
}

func TestLocationStringDefaultsFileName(t *testing.T) {
	loc := Location{Line: 1, Column: 1}
	if got := loc.String(); got != "<input>:1:1" {
		t.Errorf("Location.String() with no file = %q, want %q", got, "<input>:1:1")
	}
}

func TestRenderAlignsLocationColumn(t *testing.T) {
	r := NewReporter()
	r.Error(Location{File: "a.canto", Line: 1, Column: 1}, KindType, "short")
	r.Error(Location{File: "longer_file.canto", Line: 100, Column: 20}, KindType, "long")
	out := r.Render()
	if out == "" {
		t.Fatal("Render produced no output for non-empty diagnostics")
	}
	lines := 0
	for _, c := range out {
		if c == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("Render produced %d lines, want 2", lines)
	}
}

func TestRenderEmptyReporter(t *testing.T) {
	r := NewReporter()
	if got := r.Render(); got != "" {
		t.Errorf("Render of an empty reporter = %q, want empty string", got)
	}
}
