package context

import (
	"testing"

	"canto/values"
)

func TestDeclareAndLookup(t *testing.T) {
	s := NewStack()
	s.Declare("x", values.IntValue(5))
	v, ok := s.Lookup("x")
	if !ok {
		t.Fatal("Lookup(x) failed after Declare")
	}
	got, _ := values.As[int64](v, values.Int)
	if got != 5 {
		t.Errorf("Lookup(x) = %d, want 5", got)
	}
}

func TestLookupMissing(t *testing.T) {
	s := NewStack()
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup of an undeclared name should fail")
	}
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	s := NewStack()
	s.Declare("x", values.IntValue(1))
	s.Push(nil)
	s.Declare("x", values.IntValue(2))
	v, _ := s.Lookup("x")
	got, _ := values.As[int64](v, values.Int)
	if got != 2 {
		t.Errorf("inner x = %d, want 2 (shadowing outer)", got)
	}
	s.Pop()
	v, _ = s.Lookup("x")
	got, _ = values.As[int64](v, values.Int)
	if got != 1 {
		t.Errorf("after Pop, x = %d, want outer value 1", got)
	}
}

func TestPopNeverRemovesRootFrame(t *testing.T) {
	s := NewStack()
	s.Pop()
	s.Pop()
	s.Declare("x", values.IntValue(9))
	if _, ok := s.Lookup("x"); !ok {
		t.Error("Pop on a single-frame stack should be a no-op, root frame must survive")
	}
}

func TestAssignRebindsOwningFrame(t *testing.T) {
	s := NewStack()
	s.Declare("x", values.IntValue(1))
	s.Push(nil)
	if err := s.Assign("x", values.IntValue(42)); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	s.Pop()
	v, _ := s.Lookup("x")
	got, _ := values.As[int64](v, values.Int)
	if got != 42 {
		t.Errorf("x after Assign from inner scope = %d, want 42", got)
	}
}

func TestAssignUndeclaredFails(t *testing.T) {
	s := NewStack()
	if err := s.Assign("never", values.IntValue(1)); err == nil {
		t.Error("Assign to an undeclared name should return an error")
	}
}

func TestNewStackFromSeedsClosure(t *testing.T) {
	s := NewStackFrom(map[string]values.Value{"y": values.IntValue(7)})
	v, ok := s.Lookup("y")
	if !ok {
		t.Fatal("NewStackFrom should pre-populate the root frame")
	}
	got, _ := values.As[int64](v, values.Int)
	if got != 7 {
		t.Errorf("y = %d, want 7", got)
	}
}

func TestMusicalContextCascadesInnerBeforeOuter(t *testing.T) {
	s := NewStack()
	outerTempo := 100.0
	s.Push(&values.MusicalContextData{Tempo: &outerTempo})

	innerSwing := 0.7
	s.Push(&values.MusicalContextData{Swing: &innerSwing})

	ctx := s.MusicalContext()
	if ctx.Tempo == nil || *ctx.Tempo != 100 {
		t.Errorf("Tempo should cascade from the outer frame, got %v", ctx.Tempo)
	}
	if ctx.Swing == nil || *ctx.Swing != 0.7 {
		t.Errorf("Swing should come from the inner frame, got %v", ctx.Swing)
	}
	// Fields nobody set fall back to the global defaults.
	if ctx.Velocity == nil || *ctx.Velocity != 0.63 {
		t.Errorf("Velocity should fall back to the default 0.63, got %v", ctx.Velocity)
	}
}

func TestMusicalContextInnerOverridesOuterSameField(t *testing.T) {
	s := NewStack()
	outer := 100.0
	inner := 160.0
	s.Push(&values.MusicalContextData{Tempo: &outer})
	s.Push(&values.MusicalContextData{Tempo: &inner})
	ctx := s.MusicalContext()
	if ctx.Tempo == nil || *ctx.Tempo != 160 {
		t.Errorf("Tempo = %v, want the innermost value 160", ctx.Tempo)
	}
}

func TestMusicalContextAllDefaultsWhenEmpty(t *testing.T) {
	s := NewStack()
	ctx := s.MusicalContext()
	def := values.DefaultContext()
	if *ctx.Tempo != *def.Tempo || *ctx.Swing != *def.Swing || *ctx.Velocity != *def.Velocity {
		t.Error("an empty stack's musical context should equal the global defaults")
	}
	if ctx.Key != nil || ctx.Dynamics != nil {
		t.Error("Key and Dynamics have no global default and should stay nil")
	}
}

func TestSnapshotFlattensWithInnerShadowing(t *testing.T) {
	s := NewStack()
	s.Declare("a", values.IntValue(1))
	s.Push(nil)
	s.Declare("b", values.IntValue(2))
	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot length = %d, want 2", len(snap))
	}
	if _, ok := snap["a"]; !ok {
		t.Error("Snapshot missing outer-scope binding a")
	}
	if _, ok := snap["b"]; !ok {
		t.Error("Snapshot missing inner-scope binding b")
	}
}

func TestSetMusicalInstallsOnTopFrame(t *testing.T) {
	s := NewStack()
	tempo := 90.0
	s.SetMusical(&values.MusicalContextData{Tempo: &tempo})
	ctx := s.MusicalContext()
	if ctx.Tempo == nil || *ctx.Tempo != 90 {
		t.Errorf("Tempo = %v, want 90 after SetMusical on root frame", ctx.Tempo)
	}
}
