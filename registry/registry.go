// Package registry implements the built-in lookup table and the
// specificity-ranked overload resolver, per spec.md section 4.7.
package registry

import (
	"fmt"
	"strings"

	"canto/values"
)

// Builtin is one registered implementation of a named built-in.
type Builtin struct {
	Name       string
	ParamTypes []values.Type
	Variadic   bool // last ParamTypes entry repeats zero or more times
	ReturnType values.Type
	Func       func(args []values.Value) (values.Value, error)
}

func signature(name string, types []values.Type) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, t := range types {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Registry holds all registered builtins, grouped by name for resolution.
type Registry struct {
	byName map[string][]*Builtin
	bySig  map[string]*Builtin
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string][]*Builtin), bySig: make(map[string]*Builtin)}
}

// Register adds b, replacing any prior registration with the same
// (name, ParamTypes) signature — registration is idempotent per spec.md
// section 4.7.
func (r *Registry) Register(b *Builtin) {
	sig := signature(b.Name, b.ParamTypes)
	if old, ok := r.bySig[sig]; ok {
		list := r.byName[b.Name]
		for i, cand := range list {
			if cand == old {
				list[i] = b
				r.bySig[sig] = b
				return
			}
		}
	}
	r.bySig[sig] = b
	r.byName[b.Name] = append(r.byName[b.Name], b)
}

// match classifies how well argType satisfies paramType: 3 exact,
// 2 compatible, 1 convertible, 0 no match.
func match(argType, paramType values.Type) int {
	if argType == paramType {
		return 3
	}
	if values.IsCompatible(argType, paramType) {
		return 2
	}
	if values.IsConvertible(argType, paramType) {
		return 1
	}
	return 0
}

const (
	scoreExact       = 1000
	scoreCompatible  = 500
	scoreConvertible = 100
	scoreVarargs     = -10
)

// candidate pairs a Builtin with its computed specificity score for one
// particular call's argument types.
type candidate struct {
	b     *Builtin
	score int
}

// ErrNotFound reports that no built-in is registered under that name at all.
type ErrNotFound struct{ Name string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("no built-in named %q", e.Name) }

// ErrNoOverload reports that candidates exist for the name but none accept
// the given argument types.
type ErrNoOverload struct {
	Name     string
	ArgTypes []values.Type
}

func (e *ErrNoOverload) Error() string {
	return fmt.Sprintf("no overload of %q accepts argument types %v", e.Name, typeNames(e.ArgTypes))
}

// ErrAmbiguous reports a tie among the top-scoring candidates.
type ErrAmbiguous struct {
	Name     string
	ArgTypes []values.Type
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("ambiguous overload of %q for argument types %v", e.Name, typeNames(e.ArgTypes))
}

func typeNames(ts []values.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

// Resolve selects the best-matching Builtin for name called with argTypes,
// per spec.md section 4.7's ranking rule.
func (r *Registry) Resolve(name string, argTypes []values.Type) (*Builtin, error) {
	list, ok := r.byName[name]
	if !ok || len(list) == 0 {
		return nil, &ErrNotFound{Name: name}
	}

	var candidates []candidate
	for _, b := range list {
		if score, ok := scoreCall(b, argTypes); ok {
			candidates = append(candidates, candidate{b, score})
		}
	}
	if len(candidates) == 0 {
		return nil, &ErrNoOverload{Name: name, ArgTypes: argTypes}
	}

	best := candidates[0]
	tie := false
	for _, c := range candidates[1:] {
		switch {
		case c.score > best.score:
			best = c
			tie = false
		case c.score == best.score:
			tie = true
		}
	}
	if tie {
		return nil, &ErrAmbiguous{Name: name, ArgTypes: argTypes}
	}
	return best.b, nil
}

// scoreCall reports whether b can accept argTypes and, if so, its summed
// specificity score.
func scoreCall(b *Builtin, argTypes []values.Type) (int, bool) {
	if !b.Variadic {
		if len(argTypes) != len(b.ParamTypes) {
			return 0, false
		}
	} else if len(argTypes) < len(b.ParamTypes)-1 {
		return 0, false
	}

	fixedCount := len(b.ParamTypes)
	varargSlot := fixedCount - 1 // only meaningful when b.Variadic

	score := 0
	for i, argType := range argTypes {
		paramIdx := i
		isVararg := false
		if b.Variadic && i >= varargSlot {
			paramIdx = varargSlot
			isVararg = true
		}
		paramType := b.ParamTypes[paramIdx]
		m := match(argType, paramType)
		if m == 0 {
			return 0, false
		}
		switch m {
		case 3:
			score += scoreExact
		case 2:
			score += scoreCompatible
		case 1:
			score += scoreConvertible
		}
		if isVararg {
			score += scoreVarargs
		}
	}
	return score, true
}

// Names returns every registered built-in name, for diagnostics/completion.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

// Overloads returns the registered signatures for name.
func (r *Registry) Overloads(name string) []*Builtin {
	return r.byName[name]
}
