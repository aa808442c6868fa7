package eval

import (
	"fmt"

	"canto/ast"
	"canto/compiler"
	"canto/context"
	"canto/values"
)

// evalExpr evaluates an expression node, per spec.md section 4.8's
// expression-evaluation rules.
func (e *Evaluator) evalExpr(expr ast.Expression) (values.Value, error) {
	switch ex := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(ex), nil

	case *ast.Identifier:
		if v, ok := e.Stack.Lookup(ex.Name); ok {
			return v, nil
		}
		return values.Value{}, fmt.Errorf("undefined name %q", ex.Name)

	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(ex)

	case *ast.Lambda:
		return values.FunctionValue(&Closure{
			Params:   ex.Params,
			Body:     ex.Body,
			Captured: e.Stack.Snapshot(),
		}), nil

	case *ast.Call:
		args := make([]values.Value, 0, len(ex.Args))
		for _, a := range ex.Args {
			v, err := e.evalExpr(a)
			if err != nil {
				return values.Value{}, err
			}
			args = append(args, v)
		}
		return e.invoke(ex.Callee, args)

	case *ast.Pipeline:
		receiver, err := e.evalExpr(ex.Receiver)
		if err != nil {
			return values.Value{}, err
		}
		args := make([]values.Value, 0, len(ex.Args)+1)
		args = append(args, receiver)
		for _, a := range ex.Args {
			v, err := e.evalExpr(a)
			if err != nil {
				return values.Value{}, err
			}
			args = append(args, v)
		}
		return e.invoke(ex.Func, args)

	case *ast.NoteStream:
		return e.evalNoteStream(ex)

	case *ast.SongLiteral:
		return e.evalSongLiteral(ex)

	default:
		return values.Value{}, fmt.Errorf("unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) values.Value {
	switch lit.Kind {
	case ast.LitInt:
		return values.IntValue(lit.Int)
	case ast.LitFloat:
		return values.DoubleValue(lit.Float)
	case ast.LitString:
		return values.StringValue(lit.Str)
	case ast.LitBool:
		return values.BoolValue(lit.Bool)
	case ast.LitSemitone:
		return values.SemitoneValue(int(lit.Int))
	case ast.LitCent:
		return values.CentValue(lit.Float)
	case ast.LitMillisecond:
		return values.MillisecondValue(lit.Float)
	case ast.LitSecond:
		return values.SecondValue(lit.Float)
	case ast.LitDecibel:
		return values.DecibelValue(lit.Float)
	}
	return values.VoidValue()
}

// evalArrayLiteral evaluates each element; the result element type is the
// most general common element type shared by every item, else Void, per
// spec.md section 4.8.
func (e *Evaluator) evalArrayLiteral(lit *ast.ArrayLiteral) (values.Value, error) {
	items := make([]values.Value, 0, len(lit.Elements))
	for _, elExpr := range lit.Elements {
		v, err := e.evalExpr(elExpr)
		if err != nil {
			return values.Value{}, err
		}
		items = append(items, v)
	}
	elemType := values.Void
	for i, v := range items {
		if i == 0 {
			elemType = v.Type
			continue
		}
		if v.Type != elemType {
			elemType = values.Void
			break
		}
	}
	return values.ArrayValue(elemType, items), nil
}

// invoke resolves and calls callee against already-evaluated args, per
// spec.md section 4.8: overload-resolve by argument types then invoke.
// Shared by plain prefix calls and pipeline calls, which differ only in
// how args was assembled.
func (e *Evaluator) invoke(callee ast.Expression, args []values.Value) (values.Value, error) {
	if ident, ok := callee.(*ast.Identifier); ok {
		if proc, ok := e.procs[ident.Name]; ok {
			return e.callProc(proc, args)
		}
		argTypes := make([]values.Type, len(args))
		for i, a := range args {
			argTypes[i] = a.Type
		}
		if b, err := e.Registry.Resolve(ident.Name, argTypes); err == nil {
			return b.Func(args)
		} else if v, ok := e.Stack.Lookup(ident.Name); ok && v.Type == values.Function {
			return e.callClosure(v, args)
		} else {
			return values.Value{}, err
		}
	}

	calleeVal, err := e.evalExpr(callee)
	if err != nil {
		return values.Value{}, err
	}
	return e.callClosure(calleeVal, args)
}

func (e *Evaluator) callProc(proc *ast.ProcDecl, args []values.Value) (values.Value, error) {
	e.Stack.Push(nil)
	defer e.Stack.Pop()
	for i, p := range proc.Params {
		if i < len(args) {
			e.Stack.Declare(p.Name, args[i])
		}
	}
	res, err := e.execBlock(proc.Body)
	if err != nil {
		return values.Value{}, err
	}
	if res.returned {
		return res.value, nil
	}
	return values.VoidValue(), nil
}

func (e *Evaluator) callClosure(fn values.Value, args []values.Value) (values.Value, error) {
	closure, ok := values.As[*Closure](fn, values.Function)
	if !ok {
		return values.Value{}, fmt.Errorf("value of type %s is not callable", fn.Type)
	}
	savedStack := e.Stack
	e.Stack = context.NewStackFrom(closure.Captured)
	defer func() { e.Stack = savedStack }()

	for i, p := range closure.Params {
		if i < len(args) {
			e.Stack.Declare(p.Name, args[i])
		}
	}
	return e.evalExpr(closure.Body)
}

// evalSongLiteral resolves each section reference against the evaluator's
// section registry, per spec.md section 3's "Song references resolve by
// registry lookup, not object identity" invariant.
func (e *Evaluator) evalSongLiteral(lit *ast.SongLiteral) (values.Value, error) {
	song := values.SongData{Registry: e.Sections}
	for _, ref := range lit.Refs {
		if _, ok := e.Sections[ref.Name]; !ok {
			return values.Value{}, fmt.Errorf("song references undefined section %q", ref.Name)
		}
		song.Sections = append(song.Sections, values.SongSectionRef{
			SectionName: ref.Name, RepeatCount: ref.RepeatCount,
		})
	}
	return values.SongValue(song), nil
}

// evalNoteStream compiles a NoteStream expression using the current
// musical context and a variable lookup bound to the live scope stack.
func (e *Evaluator) evalNoteStream(ns *ast.NoteStream) (values.Value, error) {
	mctx := e.Stack.MusicalContext()
	comp := compiler.New(e.RNG, e.Reporter, func(name string) (values.Value, bool) {
		return e.Stack.Lookup(name)
	})
	seq := comp.Compile(ns, mctx)
	return values.SequenceValue(seq), nil
}
