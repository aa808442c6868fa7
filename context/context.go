// Package context implements the evaluator's lexical/musical scope stack,
// per spec.md section 4.6. Musical-context resolution mirrors the
// cascading-default style the teacher uses in GenerateChordRhythm, where
// style/swing/pattern fall back from a per-section override to package
// defaults — here generalized to an arbitrary stack depth instead of one
// fixed override level.
package context

import (
	"fmt"

	"canto/values"
)

// Frame is one lexical scope: a variable table plus an optional musical
// context layer contributed by an enclosing context block or proc call.
type Frame struct {
	vars    map[string]values.Value
	musical *values.MusicalContextData
}

func newFrame() *Frame {
	return &Frame{vars: make(map[string]values.Value)}
}

// Stack is the live chain of frames; the last entry is the innermost scope.
type Stack struct {
	frames []*Frame
}

// NewStack returns a stack with a single root frame.
func NewStack() *Stack {
	return &Stack{frames: []*Frame{newFrame()}}
}

// NewStackFrom returns a stack with a single root frame pre-populated
// from vars, used to seed a lambda invocation with its captured closure.
func NewStackFrom(vars map[string]values.Value) *Stack {
	f := newFrame()
	for k, v := range vars {
		f.vars[k] = v
	}
	return &Stack{frames: []*Frame{f}}
}

// Push enters a new scope, optionally carrying a musical-context layer.
func (s *Stack) Push(musical *values.MusicalContextData) {
	f := newFrame()
	f.musical = musical
	s.frames = append(s.frames, f)
}

// Pop exits the innermost scope. It is safe to call on any exit path
// (normal, early return, or error) since it only touches the frame slice.
func (s *Stack) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Declare binds name in the innermost frame.
func (s *Stack) Declare(name string, v values.Value) {
	s.top().vars[name] = v
}

// Assign rebinds name in the frame that owns it. It is an error to assign
// to a name that was never declared.
func (s *Stack) Assign(name string, v values.Value) error {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].vars[name]; ok {
			s.frames[i].vars[name] = v
			return nil
		}
	}
	return fmt.Errorf("undeclared name %q", name)
}

// Lookup walks the stack from innermost to outermost, returning the first
// binding found.
func (s *Stack) Lookup(name string) (values.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return values.Value{}, false
}

func (s *Stack) top() *Frame { return s.frames[len(s.frames)-1] }

// MusicalContext composes the logical view by walking frames top-down,
// adopting the first non-nil value seen per field and short-circuiting
// once every field is resolved, then filling any still-nil fields from
// the global defaults.
func (s *Stack) MusicalContext() values.MusicalContextData {
	var out values.MusicalContextData
	resolved := 0
	const fieldCount = 6
	for i := len(s.frames) - 1; i >= 0 && resolved < fieldCount; i-- {
		m := s.frames[i].musical
		if m == nil {
			continue
		}
		if out.TimeSignature == nil && m.TimeSignature != nil {
			out.TimeSignature = m.TimeSignature
			resolved++
		}
		if out.Tempo == nil && m.Tempo != nil {
			out.Tempo = m.Tempo
			resolved++
		}
		if out.Swing == nil && m.Swing != nil {
			out.Swing = m.Swing
			resolved++
		}
		if out.Key == nil && m.Key != nil {
			out.Key = m.Key
			resolved++
		}
		if out.Velocity == nil && m.Velocity != nil {
			out.Velocity = m.Velocity
			resolved++
		}
		if out.Dynamics == nil && m.Dynamics != nil {
			out.Dynamics = m.Dynamics
			resolved++
		}
	}
	defaults := values.DefaultContext()
	if out.TimeSignature == nil {
		out.TimeSignature = defaults.TimeSignature
	}
	if out.Tempo == nil {
		out.Tempo = defaults.Tempo
	}
	if out.Swing == nil {
		out.Swing = defaults.Swing
	}
	if out.Key == nil {
		out.Key = defaults.Key
	}
	if out.Velocity == nil {
		out.Velocity = defaults.Velocity
	}
	if out.Dynamics == nil {
		out.Dynamics = defaults.Dynamics
	}
	return out
}

// Snapshot flattens every visible binding into one map, with inner frames
// shadowing outer ones — used to capture a lambda's lexical closure at
// the point it is created.
func (s *Stack) Snapshot() map[string]values.Value {
	out := make(map[string]values.Value)
	for _, f := range s.frames {
		for k, v := range f.vars {
			out[k] = v
		}
	}
	return out
}

// SetMusical installs musical as the innermost frame's context layer,
// used when a context block mutates the current scope's own layer rather
// than pushing a child frame (e.g. a bare `tempo 140` assignment-style
// statement inside an existing block, if the grammar allows one).
func (s *Stack) SetMusical(musical *values.MusicalContextData) {
	s.top().musical = musical
}
