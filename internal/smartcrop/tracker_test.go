package smartcrop_test

import (
	"testing"

	"reframe/internal/smartcrop"
)

func TestGreedyMatcherPreservesPreviousOrder(t *testing.T) {
	prev := []smartcrop.Detection{face(100, 500), face(500, 500)}
	cur := []smartcrop.Detection{face(510, 500), face(110, 500)}

	got := smartcrop.NewGreedyMatcher().Match(prev, cur)
	if len(got) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(got))
	}
	if got[0].CX != 110 || got[1].CX != 510 {
		t.Fatalf("expected order [110 510], got [%v %v]", got[0].CX, got[1].CX)
	}
}

func TestGreedyMatcherAppendsUnmatched(t *testing.T) {
	prev := []smartcrop.Detection{face(100, 500)}
	cur := []smartcrop.Detection{face(900, 500), face(120, 500)}

	got := smartcrop.NewGreedyMatcher().Match(prev, cur)
	if got[0].CX != 120 {
		t.Fatalf("matched detection first: got %v want 120", got[0].CX)
	}
	if got[1].CX != 900 {
		t.Fatalf("unmatched detection appended: got %v want 900", got[1].CX)
	}
}

func TestGreedyMatcherEmptyPrevious(t *testing.T) {
	cur := []smartcrop.Detection{face(300, 300), face(700, 700)}
	got := smartcrop.NewGreedyMatcher().Match(nil, cur)
	if len(got) != 2 || got[0].CX != 300 || got[1].CX != 700 {
		t.Fatalf("expected input order preserved, got %+v", got)
	}
}

func TestMatchStreamThreadsOrdering(t *testing.T) {
	samples := []smartcrop.Sample{
		{T: 0, Faces: []smartcrop.Detection{face(100, 500), face(800, 500)}},
		{T: 0.1, Faces: []smartcrop.Detection{face(810, 500), face(110, 500)}},
		{T: 0.2, Faces: []smartcrop.Detection{face(820, 500), face(120, 500)}},
	}

	out := smartcrop.MatchStream(smartcrop.NewGreedyMatcher(), samples)
	for i, want := range []float64{100, 110, 120} {
		if got := out[i].Faces[0].CX; got != want {
			t.Fatalf("sample %d slot 0: got %v want %v", i, got, want)
		}
	}
	// Input untouched.
	if samples[1].Faces[0].CX != 810 {
		t.Fatal("MatchStream must not mutate its input")
	}
}
