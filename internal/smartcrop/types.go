package smartcrop

import "math"

// Point is a pixel coordinate in source-frame space.
type Point struct {
	X float64
	Y float64
}

// Detection is one normalized face detection. CX prefers a keypoint-blended
// estimate over the raw bbox center because it follows gaze direction better.
type Detection struct {
	X    float64
	Y    float64
	W    float64
	H    float64
	CX   float64
	CY   float64
	Area float64
}

// NewDetection builds a Detection from a bounding box and optional facial
// keypoints ordered [leftEye, rightEye, nose, ...]. With three or more
// keypoints the horizontal center blends the eye midpoint with the nose
// position; with two it uses the eye midpoint; otherwise the bbox center.
func NewDetection(x, y, w, h float64, keypoints []Point) Detection {
	cx := x + w/2
	switch {
	case len(keypoints) >= 3:
		eyeMid := (keypoints[0].X + keypoints[1].X) / 2
		cx = 0.4*eyeMid + 0.6*keypoints[2].X
	case len(keypoints) == 2:
		cx = (keypoints[0].X + keypoints[1].X) / 2
	}
	return Detection{
		X:    x,
		Y:    y,
		W:    w,
		H:    h,
		CX:   cx,
		CY:   y + h/2,
		Area: w * h,
	}
}

// Sample is one analyzed instant with zero or more detections.
type Sample struct {
	T     float64
	Faces []Detection
}

// SpeakerTurn is one diarization interval.
type SpeakerTurn struct {
	Start   float64
	End     float64
	Speaker string
}

// Turns is the full diarization result for a clip, in provider order.
type Turns []SpeakerTurn

// SpeakerAt returns the speaker active at t. When turns overlap, the first
// turn in provider order wins; that ordering is not a guaranteed contract of
// the diarization collaborator, so callers must not rely on a stronger
// tie-break.
func (ts Turns) SpeakerAt(t float64) (string, bool) {
	for _, turn := range ts {
		if turn.Start <= t && t <= turn.End {
			return turn.Speaker, true
		}
	}
	return "", false
}

// VideoInfo is the probed source metadata.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
}

// CropSize returns the 9:16 crop window for the source, clamped to the source
// width and forced even for libx264.
func (v VideoInfo) CropSize() (w, h int) {
	w = v.Height * 9 / 16
	if w > v.Width {
		w = v.Width
	}
	w -= w % 2
	h = v.Height - v.Height%2
	return w, h
}

// TrackState is the smoothing state threaded sample-to-sample. Sample i+1 is
// only computable after sample i, so the whole stage is sequential.
type TrackState struct {
	SmoothedX          float64
	LastX              float64
	LastTrackedCenterX float64
	HasTrackedCenter   bool
	LastVelocity       float64
	HadFaceLastSample  bool
}

// Keyframe is a crop rectangle at one instant.
type Keyframe struct {
	T          float64 `json:"t"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	HasSubject bool    `json:"-"`
}

// SegmentKind mirrors the wire strings the rendering consumer expects.
type SegmentKind string

const (
	SegmentTracked   SegmentKind = "face"
	SegmentUntracked SegmentKind = "letterbox"
)

// Segment is a contiguous tracked or untracked run of keyframes. Segments
// partition [0, duration) with no gaps or overlaps.
type Segment struct {
	Kind      SegmentKind `json:"type"`
	Start     float64     `json:"start"`
	End       float64     `json:"end"`
	Keyframes []Keyframe  `json:"coords"`
}

// Duration of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Config holds the exposed tunables. Zero values are never meaningful; use
// DefaultConfig as the base.
type Config struct {
	SampleInterval     float64 // tracking sample spacing, seconds
	ClassifierSamples  int     // frames sampled for layout classification
	DeadZone           float64 // px delta below which smoothing holds still
	SnapZone           float64 // px delta above which smoothing snaps
	SceneCutThreshold  float64 // px keyframe jump rendered as hold-then-jump
	MinSegmentDuration float64 // seconds; shorter segments merge backward
	HeadroomFraction   float64 // crop-height fraction kept above the face top
	InsetPadding       float64 // inset bbox expansion, fraction of bbox width
	MinScreenWidth     int     // px floor for the split-screen content region
}

// DefaultConfig returns the tuned production defaults.
func DefaultConfig() Config {
	return Config{
		SampleInterval:     0.1,
		ClassifierSamples:  9,
		DeadZone:           80,
		SnapZone:           250,
		SceneCutThreshold:  150,
		MinSegmentDuration: 1.0,
		HeadroomFraction:   0.20,
		InsetPadding:       0.8,
		MinScreenWidth:     100,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func roundT(t float64) float64 {
	return math.Round(t*10000) / 10000
}
