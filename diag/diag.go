// Package diag accumulates and renders compiler/evaluator diagnostics.
package diag

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// Level is the severity of a diagnostic.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind classifies the diagnostic per the taxonomy in spec.md section 7.
type Kind string

const (
	KindLex        Kind = "lex"
	KindParse      Kind = "parse"
	KindType       Kind = "type"
	KindName       Kind = "name"
	KindOverload   Kind = "overload"
	KindRange      Kind = "range"
	KindRuntime    Kind = "runtime"
)

// Location identifies a position in source text.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Diagnostic is a single reported issue.
type Diagnostic struct {
	Level    Level
	Kind     Kind
	Message  string
	Location Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Level, d.Message)
}

// Reporter collects diagnostics during a single evaluation run.
// It never aborts on recoverable errors; evaluation continues and
// more diagnostics may be collected past the first one.
type Reporter struct {
	diagnostics []Diagnostic
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) add(level Level, kind Kind, loc Location, format string, args ...interface{}) {
	r.diagnostics = append(r.diagnostics, Diagnostic{
		Level:    level,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Info records an informational diagnostic.
func (r *Reporter) Info(loc Location, format string, args ...interface{}) {
	r.add(Info, KindRuntime, loc, format, args...)
}

// Warn records a warning; evaluation always continues after a warning.
func (r *Reporter) Warn(loc Location, kind Kind, format string, args ...interface{}) {
	r.add(Warning, kind, loc, format, args...)
}

// Error records an error. The caller decides whether to abort the
// current statement; the reporter itself never panics or exits.
func (r *Reporter) Error(loc Location, kind Kind, format string, args ...interface{}) {
	r.add(Error, kind, loc, format, args...)
}

// Diagnostics returns all collected diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// HasErrors reports whether any Error-level diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any Warning-level diagnostic was recorded.
func (r *Reporter) HasWarnings() bool {
	for _, d := range r.diagnostics {
		if d.Level == Warning {
			return true
		}
	}
	return false
}

// Render formats all diagnostics as file:line:column: level: message lines,
// with the location column padded to the widest one in the batch so the
// level/message columns line up in a terminal.
func (r *Reporter) Render() string {
	locWidth := 0
	locs := make([]string, len(r.diagnostics))
	for i, d := range r.diagnostics {
		locs[i] = d.Location.String()
		if w := visualWidth(locs[i]); w > locWidth {
			locWidth = w
		}
	}

	var b strings.Builder
	for i, d := range r.diagnostics {
		b.WriteString(padRight(locs[i], locWidth))
		b.WriteString(fmt.Sprintf(": %s: %s\n", d.Level, d.Message))
	}
	return b.String()
}

// visualWidth measures a string's terminal column width, accounting for
// wide (e.g. CJK) runes so padding stays aligned even if a file path
// contains them.
func visualWidth(s string) int {
	n := 0
	for _, r := range s {
		if width.LookupRune(r).Kind() == width.EastAsianWide {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func padRight(s string, w int) string {
	if n := w - visualWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// Reset clears all collected diagnostics, for reuse across REPL evaluations.
func (r *Reporter) Reset() {
	r.diagnostics = r.diagnostics[:0]
}
