package ffmpeg

import (
	"fmt"
	"strings"
	"testing"

	"reframe/internal/smartcrop"
)

func TestPositionExprSingleKeyframe(t *testing.T) {
	coords := []smartcrop.Keyframe{{T: 0, X: 120, Y: 4}}
	if got := positionExpr(coords, 2.0, coordX); got != "120" {
		t.Fatalf("x expr: got %q want constant", got)
	}
	if got := positionExpr(coords, 2.0, coordY); got != "4" {
		t.Fatalf("y expr: got %q want constant", got)
	}
}

func TestPositionExprBetweenTerms(t *testing.T) {
	coords := []smartcrop.Keyframe{
		{T: 0, X: 100},
		{T: 0.5, X: 140},
		{T: 1.0, X: 180},
	}
	expr := positionExpr(coords, 1.5, coordX)

	parts := strings.Split(expr, "+")
	if len(parts) != 3 {
		t.Fatalf("expected 3 between() terms, got %d: %q", len(parts), expr)
	}
	if parts[0] != "between(t,0.000,0.499)*100" {
		t.Fatalf("first term: got %q", parts[0])
	}
	// The last term runs to the segment end.
	if parts[2] != "between(t,1.000,1.500)*180" {
		t.Fatalf("last term: got %q", parts[2])
	}
}

func TestPositionExprEmpty(t *testing.T) {
	if got := positionExpr(nil, 1.0, coordX); got != "0" {
		t.Fatalf("got %q want 0", got)
	}
}

func TestThinBoundsExpression(t *testing.T) {
	var coords []smartcrop.Keyframe
	for i := 0; i < 500; i++ {
		coords = append(coords, smartcrop.Keyframe{T: float64(i) * 0.033, X: i})
	}

	out := thin(coords, maxExprEntries)
	if len(out) > maxExprEntries+1 {
		t.Fatalf("thinned to %d entries, limit is %d", len(out), maxExprEntries)
	}
	if out[0].T != coords[0].T {
		t.Fatal("first coord must survive thinning")
	}
	if out[len(out)-1].T != coords[len(coords)-1].T {
		t.Fatal("last coord must survive thinning")
	}
}

func TestThinShortInputUntouched(t *testing.T) {
	coords := []smartcrop.Keyframe{{T: 0}, {T: 1}, {T: 2}}
	out := thin(coords, maxExprEntries)
	if len(out) != 3 {
		t.Fatalf("short input must pass through, got %d entries", len(out))
	}
}

func TestBuildMixedFilterShape(t *testing.T) {
	res := smartcrop.MixedResult{
		Segments: []smartcrop.Segment{
			{
				Kind:  smartcrop.SegmentTracked,
				Start: 0, End: 2,
				Keyframes: []smartcrop.Keyframe{
					{T: 0, X: 100, Y: 0, W: 606, H: 1080},
					{T: 1, X: 160, Y: 0, W: 606, H: 1080},
				},
			},
			{
				Kind:  smartcrop.SegmentUntracked,
				Start: 2, End: 4,
				Keyframes: []smartcrop.Keyframe{{T: 2, X: 100, W: 606, H: 1080}},
			},
		},
		CropW: 606,
		CropH: 1080,
	}

	filter := buildMixedFilter(res)

	if !strings.Contains(filter, "[0:v]split=2[v0][v1]") {
		t.Fatalf("missing split stage: %q", filter)
	}
	if !strings.Contains(filter, fmt.Sprintf("crop=w=%d:h=%d", 606, 1080)) {
		t.Fatalf("missing tracked crop: %q", filter)
	}
	if !strings.Contains(filter, "between(t,") {
		t.Fatalf("tracked segment must use a between() position: %q", filter)
	}
	if !strings.Contains(filter, "pad=1080:1920") {
		t.Fatalf("untracked segment must letterbox: %q", filter)
	}
	if !strings.Contains(filter, "concat=n=2:v=1:a=0[out]") {
		t.Fatalf("missing concat stage: %q", filter)
	}
	if !strings.Contains(filter, "trim=start=0.000:end=2.000") ||
		!strings.Contains(filter, "trim=start=2.000:end=4.000") {
		t.Fatalf("segments must be trimmed to their spans: %q", filter)
	}
}

func TestBuildMixedFilterSingleSegment(t *testing.T) {
	res := smartcrop.MixedResult{
		Segments: []smartcrop.Segment{
			{
				Kind:  smartcrop.SegmentTracked,
				Start: 0, End: 3,
				Keyframes: []smartcrop.Keyframe{{T: 0, X: 50, W: 606, H: 1080}},
			},
		},
		CropW: 606,
		CropH: 1080,
	}
	filter := buildMixedFilter(res)
	if strings.Contains(filter, "split=") {
		t.Fatalf("single segment must not split: %q", filter)
	}
	if !strings.Contains(filter, "[c0]null[out]") {
		t.Fatalf("single segment must pass through to [out]: %q", filter)
	}
}
