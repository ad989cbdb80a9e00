package smartcrop

// BuildSegments run-length encodes keyframes into tracked/untracked segments.
// Each segment ends where the next begins; the last segment ends at the clip
// duration, so the result partitions [0, duration) exactly.
func BuildSegments(keyframes []Keyframe, duration float64) []Segment {
	if len(keyframes) == 0 {
		return nil
	}

	var segments []Segment
	current := Segment{
		Kind:      kindOf(keyframes[0]),
		Start:     keyframes[0].T,
		Keyframes: []Keyframe{keyframes[0]},
	}
	for _, kf := range keyframes[1:] {
		if kindOf(kf) != current.Kind {
			current.End = kf.T
			segments = append(segments, current)
			current = Segment{Kind: kindOf(kf), Start: kf.T}
		}
		current.Keyframes = append(current.Keyframes, kf)
	}
	current.End = roundT(duration)
	segments = append(segments, current)
	return segments
}

// MergeSegments absorbs segments shorter than minDuration into their
// immediate predecessor, extending the predecessor's end and concatenating
// keyframes. A short first segment has no predecessor and is left alone;
// that asymmetry is intentional.
func MergeSegments(segments []Segment, minDuration float64) []Segment {
	if len(segments) == 0 {
		return segments
	}

	merged := []Segment{segments[0]}
	for _, seg := range segments[1:] {
		if seg.Duration() < minDuration {
			last := &merged[len(merged)-1]
			last.End = seg.End
			last.Keyframes = append(last.Keyframes, seg.Keyframes...)
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

func kindOf(kf Keyframe) SegmentKind {
	if kf.HasSubject {
		return SegmentTracked
	}
	return SegmentUntracked
}
