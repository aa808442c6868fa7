package parser

import (
	"testing"

	"canto/ast"
	"canto/diag"
	"canto/lexer"
)

func parse(t *testing.T, src string) ([]ast.Statement, *diag.Reporter) {
	t.Helper()
	reporter := diag.NewReporter()
	toks := lexer.New(src, "t", reporter).Tokenize()
	stmts := New(toks, reporter).Parse()
	return stmts, reporter
}

func TestParseIntDeclaration(t *testing.T) {
	stmts, reporter := parse(t, "Int x = 42")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	decl, ok := stmts[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Declaration", stmts[0])
	}
	if decl.TypeName != "Int" || decl.Name != "x" {
		t.Errorf("declaration = %+v, want TypeName=Int Name=x", decl)
	}
	lit, ok := decl.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.Int != 42 {
		t.Errorf("declaration value = %+v, want int literal 42", decl.Value)
	}
}

func TestParseAssignment(t *testing.T) {
	stmts, _ := parse(t, "Int x = 1\nx = 2")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	assign, ok := stmts[1].(*ast.Assignment)
	if !ok || assign.Name != "x" {
		t.Fatalf("second statement = %+v, want assignment to x", stmts[1])
	}
}

func TestParseReturnWithAndWithoutValue(t *testing.T) {
	stmts, _ := parse(t, "proc f()\nreturn 1\nend proc")
	proc := stmts[0].(*ast.ProcDecl)
	ret, ok := proc.Body[0].(*ast.ReturnStatement)
	if !ok || ret.Value == nil {
		t.Fatalf("expected a return with a value, got %+v", proc.Body[0])
	}

	stmts2, _ := parse(t, "proc g()\nreturn\nend proc")
	proc2 := stmts2[0].(*ast.ProcDecl)
	ret2, ok := proc2.Body[0].(*ast.ReturnStatement)
	if !ok || ret2.Value != nil {
		t.Fatalf("expected a bare return with nil value, got %+v", proc2.Body[0])
	}
}

func TestParseProcWithParams(t *testing.T) {
	stmts, reporter := parse(t, "proc add(Int: a, Int: b)\nreturn a\nend proc")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	proc, ok := stmts[0].(*ast.ProcDecl)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ProcDecl", stmts[0])
	}
	if proc.Name != "add" || len(proc.Params) != 2 {
		t.Fatalf("proc = %+v, want name=add with 2 params", proc)
	}
	if proc.Params[0].TypeName != "Int" || proc.Params[0].Name != "a" {
		t.Errorf("param[0] = %+v", proc.Params[0])
	}
}

func TestParseSongLiteral(t *testing.T) {
	stmts, reporter := parse(t, "Song s = [ intro verse*2 chorus ]")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	decl := stmts[0].(*ast.Declaration)
	song, ok := decl.Value.(*ast.SongLiteral)
	if !ok {
		t.Fatalf("value is %T, want *ast.SongLiteral", decl.Value)
	}
	if len(song.Refs) != 3 {
		t.Fatalf("song refs = %d, want 3", len(song.Refs))
	}
	if song.Refs[0].Name != "intro" || song.Refs[0].RepeatCount != 1 {
		t.Errorf("refs[0] = %+v, want intro*1", song.Refs[0])
	}
	if song.Refs[1].Name != "verse" || song.Refs[1].RepeatCount != 2 {
		t.Errorf("refs[1] = %+v, want verse*2", song.Refs[1])
	}
}

func TestParseTimeSigBlock(t *testing.T) {
	stmts, reporter := parse(t, "timesig 3/4 {\n}")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	block, ok := stmts[0].(*ast.ContextBlock)
	if !ok || block.Kind != ast.ContextTimeSig {
		t.Fatalf("statement = %+v, want a ContextTimeSig block", stmts[0])
	}
	if block.Numerator != 3 || block.Denominator != 4 {
		t.Errorf("time signature = %d/%d, want 3/4", block.Numerator, block.Denominator)
	}
}

func TestParseTempoBlock(t *testing.T) {
	stmts, _ := parse(t, "tempo 140 {\n}")
	block := stmts[0].(*ast.ContextBlock)
	if block.Kind != ast.ContextTempo {
		t.Fatalf("expected ContextTempo, got %v", block.Kind)
	}
	lit, ok := block.ValueExpr.(*ast.Literal)
	if !ok || lit.Int != 140 {
		t.Errorf("tempo value = %+v, want int literal 140", block.ValueExpr)
	}
}

func TestParseKeyBlock(t *testing.T) {
	stmts, _ := parse(t, "key Cmajor {\n}")
	block := stmts[0].(*ast.ContextBlock)
	if block.Kind != ast.ContextKey || block.KeyName != "Cmajor" {
		t.Fatalf("key block = %+v, want Cmajor", block)
	}
}

func TestParseSection(t *testing.T) {
	stmts, reporter := parse(t, "section verse {\n}")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	sec, ok := stmts[0].(*ast.SectionDecl)
	if !ok || sec.Name != "verse" {
		t.Fatalf("statement = %+v, want section named verse", stmts[0])
	}
}

func TestParseImport(t *testing.T) {
	stmts, reporter := parse(t, `use "lib/drums.canto"`)
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	imp, ok := stmts[0].(*ast.ImportStatement)
	if !ok || imp.Path != "lib/drums.canto" {
		t.Fatalf("statement = %+v, want import of lib/drums.canto", stmts[0])
	}
}

func TestParseExpressionStatementCall(t *testing.T) {
	stmts, reporter := parse(t, "(print 1 2)")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	es, ok := stmts[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExpressionStatement", stmts[0])
	}
	call, ok := es.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Call", es.Expr)
	}
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok || ident.Name != "print" {
		t.Errorf("callee = %+v, want identifier print", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Errorf("call args = %d, want 2", len(call.Args))
	}
}

func TestParsePipeline(t *testing.T) {
	stmts, reporter := parse(t, "x -> transpose 2")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	es := stmts[0].(*ast.ExpressionStatement)
	pipe, ok := es.Expr.(*ast.Pipeline)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Pipeline", es.Expr)
	}
	fn, ok := pipe.Func.(*ast.Identifier)
	if !ok || fn.Name != "transpose" {
		t.Errorf("pipeline func = %+v, want identifier transpose", pipe.Func)
	}
	if len(pipe.Args) != 1 {
		t.Errorf("pipeline args = %d, want 1", len(pipe.Args))
	}
}

func TestParseArrayLiteral(t *testing.T) {
	stmts, reporter := parse(t, "Array a = [1, 2, 3]")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	decl := stmts[0].(*ast.Declaration)
	arr, ok := decl.Value.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("value = %+v, want a 3-element array literal", decl.Value)
	}
}

func TestParseLambda(t *testing.T) {
	stmts, reporter := parse(t, "(apply fn Int x => x)")
	if len(reporter.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	es := stmts[0].(*ast.ExpressionStatement)
	call := es.Expr.(*ast.Call)
	lambda, ok := call.Args[0].(*ast.Lambda)
	if !ok {
		t.Fatalf("arg is %T, want *ast.Lambda", call.Args[0])
	}
	if len(lambda.Params) != 1 || lambda.Params[0].Name != "x" {
		t.Errorf("lambda params = %+v, want [{Int x}]", lambda.Params)
	}
}

func TestParseErrorRecoversAtNextStatement(t *testing.T) {
	// A malformed first statement should not prevent the well-formed
	// second statement from being parsed; the parser must make forward
	// progress and resynchronize.
	stmts, reporter := parse(t, ")\nInt x = 1")
	if len(reporter.Diagnostics()) == 0 {
		t.Error("expected at least one diagnostic for the stray ')'")
	}
	var found bool
	for _, s := range stmts {
		if decl, ok := s.(*ast.Declaration); ok && decl.Name == "x" {
			found = true
		}
	}
	if !found {
		t.Error("parser should recover and still parse the valid declaration that follows")
	}
}
