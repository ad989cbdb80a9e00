package smartcrop_test

import (
	"testing"

	"reframe/internal/smartcrop"
)

// For a 1920x1080 source the crop is 606 wide, so x = cx - 303 clamped to
// [0, 1314].

func TestSelectorSpeakerBindingPinsLeft(t *testing.T) {
	turns := smartcrop.Turns{{Start: 0, End: 10, Speaker: "A"}}
	samples := []smartcrop.Sample{
		{T: 1, Faces: []smartcrop.Detection{face(1200, 540), face(400, 540)}},
	}
	sel := smartcrop.NewSelector(samples, turns, testInfo(), smartcrop.DefaultConfig())

	var state smartcrop.TrackState
	sample := smartcrop.Sample{T: 5, Faces: []smartcrop.Detection{face(1200, 540), face(400, 540)}}
	x, ok := sel.Select(sample, &state)
	if !ok {
		t.Fatal("expected a target")
	}
	if x != 97 {
		t.Fatalf("expected leftmost face (x=97), got %v", x)
	}

	// Same faces in reverse order resolve identically.
	sample.Faces[0], sample.Faces[1] = sample.Faces[1], sample.Faces[0]
	x, _ = sel.Select(sample, &state)
	if x != 97 {
		t.Fatalf("detection order changed the pick: got %v want 97", x)
	}
}

func TestSelectorBindingIsOneShot(t *testing.T) {
	// The binding is established from the first dual-face sample with a
	// resolvable speaker and never re-evaluated.
	turns := smartcrop.Turns{
		{Start: 0, End: 2, Speaker: "A"},
		{Start: 2, End: 10, Speaker: "B"},
	}
	samples := []smartcrop.Sample{
		{T: 1, Faces: []smartcrop.Detection{face(400, 540), face(1200, 540)}},
		{T: 3, Faces: []smartcrop.Detection{face(400, 540), face(1200, 540)}},
	}
	sel := smartcrop.NewSelector(samples, turns, testInfo(), smartcrop.DefaultConfig())

	// B speaks at t=3 but only A is bound; the pick falls through to the
	// continuity rule.
	state := smartcrop.TrackState{LastTrackedCenterX: 1200, HasTrackedCenter: true}
	x, ok := sel.Select(samples[1], &state)
	if !ok {
		t.Fatal("expected a target")
	}
	if x != 897 {
		t.Fatalf("expected continuity pick near 1200 (x=897), got %v", x)
	}
}

func TestSelectorBindingSkipsUnresolvedSamples(t *testing.T) {
	// The first dual-face sample falls outside every turn; the scan moves
	// on and binds from the next dual-face sample that resolves a speaker.
	turns := smartcrop.Turns{{Start: 4, End: 10, Speaker: "A"}}
	samples := []smartcrop.Sample{
		{T: 1, Faces: []smartcrop.Detection{face(400, 540), face(1200, 540)}},
		{T: 5, Faces: []smartcrop.Detection{face(400, 540), face(1200, 540)}},
	}
	sel := smartcrop.NewSelector(samples, turns, testInfo(), smartcrop.DefaultConfig())

	var state smartcrop.TrackState
	x, ok := sel.Select(samples[1], &state)
	if !ok {
		t.Fatal("expected a target")
	}
	if x != 97 {
		t.Fatalf("expected A bound left (x=97), got %v", x)
	}
}

func TestSelectorContinuityPrefersInterior(t *testing.T) {
	// The edge face is closer to the last tracked center but is excluded
	// by the interior margin (one crop width, 606 px).
	sel := smartcrop.NewSelector(nil, nil, testInfo(), smartcrop.DefaultConfig())
	state := smartcrop.TrackState{LastTrackedCenterX: 500, HasTrackedCenter: true}

	sample := smartcrop.Sample{T: 1, Faces: []smartcrop.Detection{face(550, 540), face(900, 540)}}
	x, ok := sel.Select(sample, &state)
	if !ok {
		t.Fatal("expected a target")
	}
	if x != 597 {
		t.Fatalf("expected interior face at 900 (x=597), got %v", x)
	}
}

func TestSelectorAllEdgesFallsBackToFullSet(t *testing.T) {
	sel := smartcrop.NewSelector(nil, nil, testInfo(), smartcrop.DefaultConfig())
	state := smartcrop.TrackState{LastTrackedCenterX: 400, HasTrackedCenter: true}

	sample := smartcrop.Sample{T: 1, Faces: []smartcrop.Detection{face(300, 540), face(1700, 540)}}
	x, ok := sel.Select(sample, &state)
	if !ok {
		t.Fatal("expected a target")
	}
	// cx=300 wins on distance; its crop origin clamps to the left edge.
	if x != 0 {
		t.Fatalf("expected clamped origin 0, got %v", x)
	}
}

func TestSelectorColdStartPicksLargestFace(t *testing.T) {
	sel := smartcrop.NewSelector(nil, nil, testInfo(), smartcrop.DefaultConfig())
	var state smartcrop.TrackState

	small := smartcrop.NewDetection(650, 490, 100, 100, nil)
	large := smartcrop.NewDetection(800, 440, 200, 200, nil)
	sample := smartcrop.Sample{T: 1, Faces: []smartcrop.Detection{small, large}}

	x, ok := sel.Select(sample, &state)
	if !ok {
		t.Fatal("expected a target")
	}
	if x != 597 {
		t.Fatalf("expected largest face at 900 (x=597), got %v", x)
	}
}

func TestSelectorEmptySample(t *testing.T) {
	sel := smartcrop.NewSelector(nil, nil, testInfo(), smartcrop.DefaultConfig())
	var state smartcrop.TrackState
	if _, ok := sel.Select(smartcrop.Sample{T: 1}, &state); ok {
		t.Fatal("expected no target for an empty sample")
	}
	if state.HasTrackedCenter {
		t.Fatal("state must not record a center for an empty sample")
	}
}

func TestSelectorUpdatesTrackedCenter(t *testing.T) {
	sel := smartcrop.NewSelector(nil, nil, testInfo(), smartcrop.DefaultConfig())
	var state smartcrop.TrackState

	sample := smartcrop.Sample{T: 1, Faces: []smartcrop.Detection{face(960, 540)}}
	if _, ok := sel.Select(sample, &state); !ok {
		t.Fatal("expected a target")
	}
	if !state.HasTrackedCenter || state.LastTrackedCenterX != 960 {
		t.Fatalf("expected tracked center 960, got %+v", state)
	}
}
