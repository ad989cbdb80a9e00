package smartcrop

import "math"

// Matcher stabilizes detection ordering between adjacent samples. It is a
// deliberately small seam: the default greedy matcher can later be swapped
// for a real multi-object tracker without touching the smoothing stage.
type Matcher interface {
	// Match reorders cur so that detections matched to prev appear in
	// prev's order, followed by unmatched detections in their original
	// order. It does not provide persistent identity across occlusion
	// gaps.
	Match(prev, cur []Detection) []Detection
}

// GreedyMatcher associates detections by nearest center, claiming each
// current detection at most once.
type GreedyMatcher struct{}

// NewGreedyMatcher returns the default matcher.
func NewGreedyMatcher() GreedyMatcher {
	return GreedyMatcher{}
}

// Match implements Matcher using Manhattan distance on detection centers.
func (GreedyMatcher) Match(prev, cur []Detection) []Detection {
	if len(prev) == 0 || len(cur) == 0 {
		return cur
	}

	claimed := make([]bool, len(cur))
	ordered := make([]Detection, 0, len(cur))

	for _, p := range prev {
		best := -1
		bestDist := math.Inf(1)
		for i, c := range cur {
			if claimed[i] {
				continue
			}
			d := math.Abs(c.CX-p.CX) + math.Abs(c.CY-p.CY)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		if best >= 0 {
			claimed[best] = true
			ordered = append(ordered, cur[best])
		}
	}
	for i, c := range cur {
		if !claimed[i] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// MatchStream applies the matcher across a whole sample stream, threading
// each sample's ordering into the next. The input is not mutated.
func MatchStream(m Matcher, samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	var prev []Detection
	for i, s := range samples {
		matched := m.Match(prev, s.Faces)
		out[i] = Sample{T: s.T, Faces: matched}
		prev = matched
	}
	return out
}
