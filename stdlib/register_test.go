package stdlib

import (
	"testing"

	"canto/diag"
	"canto/registry"
	"canto/rng"
	"canto/values"
)

func TestRegisterInstallsCoreArithmeticAndTransforms(t *testing.T) {
	reg := registry.NewRegistry()
	Register(reg, rng.NewEngine(), diag.NewReporter())

	b, err := reg.Resolve("add", []values.Type{values.Int, values.Int})
	if err != nil {
		t.Fatalf("add(Int,Int) should resolve: %v", err)
	}
	result, err := b.Func([]values.Value{values.IntValue(2), values.IntValue(3)})
	if err != nil {
		t.Fatalf("add(2,3) failed: %v", err)
	}
	n, _ := values.As[int64](result, values.Int)
	if n != 5 {
		t.Errorf("add(2,3) = %v, want 5", n)
	}

	if _, err := reg.Resolve("transpose", []values.Type{values.Sequence, values.Semitone}); err != nil {
		t.Errorf("transpose(Sequence,Semitone) should resolve: %v", err)
	}
	if _, err := reg.Resolve("len", []values.Type{values.Array}); err != nil {
		t.Errorf("len(Array) should resolve: %v", err)
	}
}

func TestDivByZeroReturnsError(t *testing.T) {
	reg := registry.NewRegistry()
	Register(reg, rng.NewEngine(), diag.NewReporter())
	b, err := reg.Resolve("div", []values.Type{values.Int, values.Int})
	if err != nil {
		t.Fatalf("div(Int,Int) should resolve: %v", err)
	}
	if _, err := b.Func([]values.Value{values.IntValue(1), values.IntValue(0)}); err == nil {
		t.Error("div by zero should return an error")
	}
}

func TestNoteFromStringDecodesNameOctaveAlteration(t *testing.T) {
	n := noteFromString("C#5")
	if n.Name != 'C' || n.Octave != 5 || n.Alteration != 1 {
		t.Errorf("noteFromString(C#5) = %+v, want C octave 5 alteration 1", n)
	}
}

func TestNoteFromStringDefaultsOctaveFour(t *testing.T) {
	n := noteFromString("Bb")
	if n.Name != 'B' || n.Octave != 4 || n.Alteration != -1 {
		t.Errorf("noteFromString(Bb) = %+v, want B octave 4 alteration -1", n)
	}
}

func TestNoteFromStringEmptyDefaultsToC4(t *testing.T) {
	n := noteFromString("")
	if n.Name != 'C' || n.Octave != 4 {
		t.Errorf("noteFromString(\"\") = %+v, want C4", n)
	}
}

func TestResolveNumeralBuiltinErrorsOnUnknownNumeral(t *testing.T) {
	reg := registry.NewRegistry()
	Register(reg, rng.NewEngine(), diag.NewReporter())
	b, err := reg.Resolve("resolveNumeral", []values.Type{values.String, values.String})
	if err != nil {
		t.Fatalf("resolveNumeral(String,String) should resolve: %v", err)
	}
	if _, err := b.Func([]values.Value{values.StringValue("viii"), values.StringValue("Cmajor")}); err == nil {
		t.Error("resolveNumeral with an out-of-range numeral should return an error")
	}
}
