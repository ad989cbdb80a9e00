package smartcrop

import (
	"errors"
	"log"
)

// ErrNoSamples is returned when a clip yields no analyzable samples at all,
// e.g. unreadable or zero-duration media. The smoothing stage requires at
// least one sample, so this is a distinct clip-level error rather than a
// silent skip.
var ErrNoSamples = errors.New("no samples produced for clip")

// TrackSubjects runs the full talking-head branch over the dense sample
// stream: identity matching, subject selection, gap prediction, smoothing,
// segmentation and per-frame interpolation. The returned shape is crop when
// every segment is tracked, mixed when tracked and untracked segments
// alternate, and skip when nothing was tracked at all.
func TrackSubjects(samples []Sample, turns Turns, info VideoInfo, cfg Config, matcher Matcher) (Result, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if matcher == nil {
		matcher = NewGreedyMatcher()
	}

	matched := MatchStream(matcher, samples)
	selector := NewSelector(matched, turns, info, cfg)

	state := TrackState{}
	targets := make([]Target, 0, len(matched))
	for _, s := range matched {
		x, ok := selector.Select(s, &state)
		tg := Target{T: s.T, HasSubject: ok}
		if ok {
			tg.X = x
			tg.TopY = minTopY(s.Faces)
		}
		targets = append(targets, tg)
	}

	keyframes := PredictAndSmooth(targets, info, cfg)
	log.Printf("[TRACK] %d keyframes from %d samples", len(keyframes), len(samples))

	segments := MergeSegments(BuildSegments(keyframes, info.Duration), cfg.MinSegmentDuration)

	frameInterval := 1.0 / 30.0
	if info.FPS > 0 {
		frameInterval = 1.0 / info.FPS
	}

	hasTracked, hasUntracked := false, false
	for _, seg := range segments {
		if seg.Kind == SegmentTracked {
			hasTracked = true
		} else {
			hasUntracked = true
		}
	}

	switch {
	case hasTracked && hasUntracked:
		out := make([]Segment, len(segments))
		for i, seg := range segments {
			out[i] = seg
			out[i].Keyframes = InterpolateFrames(seg.Keyframes, frameInterval, cfg.SceneCutThreshold)
		}
		cropW, cropH := info.CropSize()
		return MixedResult{Segments: out, CropW: cropW, CropH: cropH}, nil
	case hasTracked:
		coords := InterpolateFrames(keyframes, frameInterval, cfg.SceneCutThreshold)
		return CropResult{Coords: coords}, nil
	default:
		return SkipResult{}, nil
	}
}

func minTopY(faces []Detection) float64 {
	top := faces[0].Y
	for _, f := range faces[1:] {
		if f.Y < top {
			top = f.Y
		}
	}
	return top
}
