package smartcrop

import "log"

// Selector picks the target horizontal position for each sample. It holds the
// clip-scoped speaker-to-side binding, which is frozen the first time it is
// established and never re-evaluated, even if the physical seating changes
// later in the clip. Known limitation, kept on purpose.
type Selector struct {
	info  VideoInfo
	cfg   Config
	turns Turns
	cropW int

	side map[string]string // speaker label -> "left" | "right"
}

// NewSelector builds a selector and performs the one-shot speaker binding:
// the first sample with at least two detections whose timestamp resolves to a
// known speaker binds that speaker to the left side for the rest of the clip.
func NewSelector(samples []Sample, turns Turns, info VideoInfo, cfg Config) *Selector {
	cropW, _ := info.CropSize()
	s := &Selector{
		info:  info,
		cfg:   cfg,
		turns: turns,
		cropW: cropW,
		side:  make(map[string]string),
	}
	for _, sample := range samples {
		if len(sample.Faces) < 2 {
			continue
		}
		if spk, ok := turns.SpeakerAt(sample.T); ok {
			s.side[spk] = "left"
			log.Printf("[TRACK] speaker mapping: %s -> left (t=%.2f)", spk, sample.T)
			break
		}
	}
	return s
}

// Select resolves the crop origin x for one sample. ok is false when the
// sample has no detections and the caller must predict through the gap.
// The prior tracked center in state is updated when a target is chosen.
func (s *Selector) Select(sample Sample, state *TrackState) (x float64, ok bool) {
	faces := sample.Faces
	if len(faces) == 0 {
		return 0, false
	}

	var target Detection
	if len(faces) == 1 {
		target = faces[0]
	} else {
		target = s.pickAmongMany(faces, sample.T, state)
	}

	state.LastTrackedCenterX = target.CX
	state.HasTrackedCenter = true

	srcW := float64(s.info.Width)
	return clamp(target.CX-float64(s.cropW)/2, 0, srcW-float64(s.cropW)), true
}

func (s *Selector) pickAmongMany(faces []Detection, t float64, state *TrackState) Detection {
	// 1. Speaker-assisted: a bound speaker pins the pick to one side.
	if spk, ok := s.turns.SpeakerAt(t); ok {
		if side, bound := s.side[spk]; bound {
			return extreme(faces, side)
		}
	}

	// 2. Continuity: prefer the interior detection closest to the last
	// tracked center. Interior excludes partially visible faces hugging
	// the frame edges (listeners, background walk-ins).
	candidates := s.interior(faces)
	if len(candidates) == 0 {
		candidates = faces
	}
	if state.HasTrackedCenter {
		best := candidates[0]
		bestDist := abs(best.CX - state.LastTrackedCenterX)
		for _, f := range candidates[1:] {
			if d := abs(f.CX - state.LastTrackedCenterX); d < bestDist {
				best, bestDist = f, d
			}
		}
		return best
	}

	// 3. Cold start: biggest area = closest to camera = main subject.
	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.Area > best.Area {
			best = f
		}
	}
	return best
}

// interior keeps detections whose center is more than one crop width away
// from both frame edges.
func (s *Selector) interior(faces []Detection) []Detection {
	margin := float64(s.cropW)
	srcW := float64(s.info.Width)
	var out []Detection
	for _, f := range faces {
		if f.CX > margin && f.CX < srcW-margin {
			out = append(out, f)
		}
	}
	return out
}

func extreme(faces []Detection, side string) Detection {
	best := faces[0]
	for _, f := range faces[1:] {
		if side == "left" && f.CX < best.CX {
			best = f
		}
		if side != "left" && f.CX > best.CX {
			best = f
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
