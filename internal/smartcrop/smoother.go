package smartcrop

import "math"

// Target is one sample's selected crop origin, or a gap that needs
// prediction. TopY is the highest detection top in the sample and is only
// meaningful when HasSubject is true.
type Target struct {
	T          float64
	X          float64
	HasSubject bool
	TopY       float64
}

// Smoothing parameters. The blend rate adapts to the position delta so fast
// motion gets a more responsive camera, not just a wider allowed deviation.
const (
	velocityDecay = 0.5
	alphaBase     = 0.1
	alphaPerPx    = 1.0 / 200.0
	alphaMax      = 0.9
)

// PredictAndSmooth runs the two sequential passes over the target stream:
// velocity extrapolation through detection gaps, then hysteresis-gated
// adaptive smoothing. Vertical position is computed per sample from that
// sample's detections and is not smoothed across time.
func PredictAndSmooth(targets []Target, info VideoInfo, cfg Config) []Keyframe {
	if len(targets) == 0 {
		return nil
	}

	cropW, cropH := info.CropSize()
	maxX := float64(info.Width - cropW)
	maxY := float64(info.Height - cropH)

	state := TrackState{
		// Default to a centered crop until the first detection.
		LastX: float64(info.Width-cropW) / 2,
	}

	// Pass 1: fill gaps by decayed velocity extrapolation. A sustained
	// occlusion converges toward a standstill instead of drifting off
	// frame.
	predicted := make([]float64, len(targets))
	for i, tg := range targets {
		if tg.HasSubject {
			state.LastVelocity = tg.X - state.LastX
			state.LastX = tg.X
		} else {
			state.LastX = clamp(state.LastX+state.LastVelocity*velocityDecay, 0, maxX)
			state.LastVelocity *= velocityDecay
		}
		predicted[i] = state.LastX
	}

	// Pass 2: adaptive smoothing with a dead zone against jitter, a snap
	// zone for scene cuts, and a hard snap on reacquisition so the camera
	// never lags behind a subject that just reappeared.
	state.SmoothedX = predicted[0]
	state.HadFaceLastSample = false

	keyframes := make([]Keyframe, 0, len(targets))
	for i, tg := range targets {
		x := predicted[i]
		delta := math.Abs(x - state.SmoothedX)
		switch {
		case tg.HasSubject && !state.HadFaceLastSample:
			state.SmoothedX = x
		case delta > cfg.SnapZone:
			state.SmoothedX = x
		case delta > cfg.DeadZone:
			alpha := math.Min(alphaMax, alphaBase+delta*alphaPerPx)
			state.SmoothedX = alpha*x + (1-alpha)*state.SmoothedX
		}
		state.HadFaceLastSample = tg.HasSubject

		y := 0.0
		if tg.HasSubject {
			y = clamp(tg.TopY-cfg.HeadroomFraction*float64(cropH), 0, maxY)
		}

		keyframes = append(keyframes, Keyframe{
			T:          tg.T,
			X:          int(math.Round(state.SmoothedX)),
			Y:          int(math.Round(y)),
			W:          cropW,
			H:          cropH,
			HasSubject: tg.HasSubject,
		})
	}
	return keyframes
}
