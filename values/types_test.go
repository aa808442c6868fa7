package values

import "testing"

func TestTypeStringKnownAndUnknown(t *testing.T) {
	if Int.String() != "Int" {
		t.Errorf("Int.String() = %q, want Int", Int.String())
	}
	if got := Type(9999).String(); got != "Unknown" {
		t.Errorf("unregistered Type.String() = %q, want Unknown", got)
	}
}

func TestSpecificityArrayAddsFiftyToElement(t *testing.T) {
	got := Array.Specificity(Int)
	want := Int.Specificity(Void) + 50
	if got != want {
		t.Errorf("Array.Specificity(Int) = %d, want %d", got, want)
	}
}

func TestSpecificityOrderingMatchesPromotionDirection(t *testing.T) {
	if Int.Specificity(Void) <= Float.Specificity(Void) {
		t.Errorf("Int (%d) should rank above Float (%d) in specificity", Int.Specificity(Void), Float.Specificity(Void))
	}
	if Song.Specificity(Void) <= Sequence.Specificity(Void) {
		t.Error("Song should be more specific than Sequence")
	}
}

func TestIsCompatibleSameTypeAlwaysTrue(t *testing.T) {
	if !IsCompatible(Int, Int) {
		t.Error("a type should always be compatible with itself")
	}
}

func TestIsCompatiblePromotionChain(t *testing.T) {
	cases := []struct {
		from, to Type
		want     bool
	}{
		{Int, Long, true},
		{Int, Double, true},
		{Int, Number, true},
		{Int, String, false},
		{Float, Double, true},
		{Millisecond, Second, true},
		{Second, Millisecond, true},
		{MusicalNote, Note, true},
		{Note, MusicalNote, true},
	}
	for _, c := range cases {
		if got := IsCompatible(c.from, c.to); got != c.want {
			t.Errorf("IsCompatible(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestIsConvertibleIncludesCompatibleAndNarrowingPaths(t *testing.T) {
	cases := []struct {
		from, to Type
		want     bool
	}{
		{Int, Long, true}, // compatible implies convertible
		{String, Note, true},
		{String, Chord, true},
		{Number, Double, true},
		{Double, Int, true},
		{Int, String, true},
		{Bool, String, true},
		{String, Int, false},
		{Bool, Int, false},
	}
	for _, c := range cases {
		if got := IsConvertible(c.from, c.to); got != c.want {
			t.Errorf("IsConvertible(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
