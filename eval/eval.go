// Package eval implements the tree-walking evaluator of spec.md section
// 4.8: sequential statement execution, context-block scoping via
// context.Stack, overload-resolved calls through registry.Registry, and
// note-stream compilation through compiler.Compiler.
package eval

import (
	"fmt"

	"canto/ast"
	"canto/compiler"
	"canto/context"
	"canto/diag"
	"canto/registry"
	"canto/rng"
	"canto/values"
)

// Closure is the runtime representation of a Function value: a lambda's
// parameter list, body, and the lexical bindings captured at creation.
type Closure struct {
	Params   []ast.Param
	Body     ast.Expression
	Captured map[string]values.Value
}

// execResult threads a possible `return` signal up through nested blocks
// without using panic/recover, matching the teacher's preference for
// explicit error returns over exceptions.
type execResult struct {
	returned bool
	value    values.Value
}

// Evaluator holds all the shared runtime state: the variable/context
// scope stack, the proc table, the builtin registry, RNG streams, and
// the diagnostic sink.
type Evaluator struct {
	Stack    *context.Stack
	Reporter *diag.Reporter
	Registry *registry.Registry
	RNG      *rng.Engine
	Sections map[string]values.SectionData
	procs    map[string]*ast.ProcDecl
}

// New constructs an Evaluator ready to run a Program.
func New(reporter *diag.Reporter, reg *registry.Registry, r *rng.Engine) *Evaluator {
	return &Evaluator{
		Stack:    context.NewStack(),
		Reporter: reporter,
		Registry: reg,
		RNG:      r,
		Sections: make(map[string]values.SectionData),
		procs:    make(map[string]*ast.ProcDecl),
	}
}

// Eval runs every top-level statement. Per spec.md section 7, a hard
// error aborts only the statement it occurred in; evaluation continues
// with the next top-level statement so diagnostics accumulate.
func (e *Evaluator) Eval(program []ast.Statement) {
	// Pre-register all top-level procs so forward references resolve,
	// mirroring how the parser already collects whole-file proc bodies.
	for _, stmt := range program {
		if proc, ok := stmt.(*ast.ProcDecl); ok {
			e.procs[proc.Name] = proc
		}
	}
	for _, stmt := range program {
		if _, ok := stmt.(*ast.ProcDecl); ok {
			continue
		}
		if _, err := e.execStatement(stmt); err != nil {
			e.Reporter.Error(stmt.Location(), diag.KindRuntime, "%v", err)
		}
	}
}

func (e *Evaluator) execBlock(stmts []ast.Statement) (execResult, error) {
	for _, stmt := range stmts {
		res, err := e.execStatement(stmt)
		if err != nil {
			return execResult{}, err
		}
		if res.returned {
			return res, nil
		}
	}
	return execResult{}, nil
}

func (e *Evaluator) execStatement(stmt ast.Statement) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.ImportStatement:
		// Imports are parsed but not resolved: neither the evaluator nor
		// the CLI/REPL loads or evaluates the named module, so a `use`
		// statement has no effect.
		return execResult{}, nil

	case *ast.ProcDecl:
		e.procs[s.Name] = s
		return execResult{}, nil

	case *ast.Declaration:
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		e.Stack.Declare(s.Name, v)
		return execResult{}, nil

	case *ast.Assignment:
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		if err := e.Stack.Assign(s.Name, v); err != nil {
			return execResult{}, err
		}
		return execResult{}, nil

	case *ast.ExpressionStatement:
		_, err := e.evalExpr(s.Expr)
		return execResult{}, err

	case *ast.ReturnStatement:
		if s.Value == nil {
			return execResult{returned: true, value: values.VoidValue()}, nil
		}
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		return execResult{returned: true, value: v}, nil

	case *ast.ContextBlock:
		return e.execContextBlock(s)

	case *ast.SectionDecl:
		return e.execSection(s)

	default:
		return execResult{}, fmt.Errorf("unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) execContextBlock(s *ast.ContextBlock) (execResult, error) {
	var layer values.MusicalContextData
	switch s.Kind {
	case ast.ContextTimeSig:
		if s.Denominator == 0 || s.Denominator&(s.Denominator-1) != 0 {
			e.Reporter.Error(s.Location(), diag.KindRange, "time signature denominator %d is not a power of two", s.Denominator)
		}
		ts := values.TimeSignatureData{Numerator: s.Numerator, Denominator: s.Denominator}
		layer.TimeSignature = &ts
	case ast.ContextTempo:
		v, err := e.evalExpr(s.ValueExpr)
		if err != nil {
			return execResult{}, err
		}
		tempo := numericValue(v)
		if tempo <= 0 {
			e.Reporter.Error(s.Location(), diag.KindRange, "tempo must be > 0, got %v", tempo)
		}
		layer.Tempo = &tempo
	case ast.ContextSwing:
		v, err := e.evalExpr(s.ValueExpr)
		if err != nil {
			return execResult{}, err
		}
		swing := numericValue(v)
		if swing < 0 || swing > 1 {
			e.Reporter.Error(s.Location(), diag.KindRange, "swing must be within [0,1], got %v", swing)
		}
		layer.Swing = &swing
	case ast.ContextKey:
		key := s.KeyName
		layer.Key = &key
	case ast.ContextDynamics:
		dyn := s.KeyName
		layer.Dynamics = &dyn
	}

	e.Stack.Push(&layer)
	res, err := e.execBlock(s.Body)
	e.Stack.Pop()
	return res, err
}

func (e *Evaluator) execSection(s *ast.SectionDecl) (execResult, error) {
	e.Stack.Push(nil)
	res, err := e.execBlock(s.Body)
	ctx := e.Stack.MusicalContext()

	var sequences []values.NamedSequence
	for _, stmt := range s.Body {
		decl, ok := stmt.(*ast.Declaration)
		if !ok || decl.TypeName != "Sequence" {
			continue
		}
		if v, ok := e.Stack.Lookup(decl.Name); ok {
			if seq, ok := values.As[values.SequenceData](v, values.Sequence); ok {
				sequences = append(sequences, values.NamedSequence{Name: decl.Name, Sequence: seq})
			}
		}
	}
	e.Stack.Pop()
	if err != nil {
		return execResult{}, err
	}
	e.Sections[s.Name] = values.SectionData{
		Name: s.Name, Sequences: sequences, Context: ctx, Location: s.Location().String(),
	}
	return res, nil
}

func numericValue(v values.Value) float64 {
	switch v.Type {
	case values.Int, values.Long:
		n, _ := values.As[int64](v, v.Type)
		return float64(n)
	case values.Float:
		f, _ := values.As[float32](v, values.Float)
		return float64(f)
	case values.Double:
		f, _ := values.As[float64](v, values.Double)
		return f
	}
	return 0
}
