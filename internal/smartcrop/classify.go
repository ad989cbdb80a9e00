package smartcrop

import "log"

// Layout is the classified video mode.
type Layout int

const (
	LayoutNoSubject Layout = iota
	LayoutScreenInset
	LayoutTalkingHead
)

func (l Layout) String() string {
	switch l {
	case LayoutNoSubject:
		return "no_subject"
	case LayoutScreenInset:
		return "screen_inset"
	default:
		return "talking_head"
	}
}

// Classification margins. Side-mounted face cams sit on the left or right
// edge regardless of vertical position, so the side test only looks at cx.
const (
	sideLeftFrac    = 0.30
	sideRightFrac   = 0.65
	centerMinXFrac  = 0.25
	centerMaxXFrac  = 0.75
	centerMinYFrac  = 0.15
	centerMaxYFrac  = 0.85
	cornerFrac      = 0.35
	smallWidthRatio = 0.25
	sideCountMin    = 3
)

// ClassifierTimes returns the evenly spaced sampling instants used for layout
// classification: duration*i/(n+1) for i=1..n.
func ClassifierTimes(duration float64, n int) []float64 {
	times := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		times = append(times, duration*float64(i)/float64(n+1))
	}
	return times
}

// ClassifyLayout decides the video mode from the sparse classification
// samples. Evaluated in order: no detections anywhere wins, then the
// side-vs-centered vote, then talking head as the default.
func ClassifyLayout(samples []Sample, info VideoInfo) Layout {
	srcW := float64(info.Width)
	srcH := float64(info.Height)

	sideCount := 0
	centeredCount := 0
	faceSamples := 0

	for _, s := range samples {
		if len(s.Faces) > 0 {
			faceSamples++
		}
		centeredInSample := 0
		for _, f := range s.Faces {
			onSide := f.CX < srcW*sideLeftFrac || f.CX > srcW*sideRightFrac
			centered := f.CX > srcW*centerMinXFrac && f.CX < srcW*centerMaxXFrac &&
				f.CY > srcH*centerMinYFrac && f.CY < srcH*centerMaxYFrac
			if onSide {
				sideCount++
			} else if centered {
				centeredCount++
			}
			if f.CX > srcW*centerMinXFrac && f.CX < srcW*centerMaxXFrac {
				centeredInSample++
			}
		}
		// Two or more centered faces in one sample is a strong
		// two-person-talking-head signal.
		if centeredInSample >= 2 {
			centeredCount += 2
		}
	}

	var layout Layout
	switch {
	case faceSamples == 0:
		layout = LayoutNoSubject
	case sideCount > centeredCount && sideCount >= sideCountMin:
		layout = LayoutScreenInset
	default:
		layout = LayoutTalkingHead
	}

	log.Printf("[CLASSIFY] layout=%s (side=%d centered=%d faceSamples=%d/%d)",
		layout, sideCount, centeredCount, faceSamples, len(samples))
	return layout
}

// LocateInset finds the inset camera region for a screen-with-inset video and
// derives the complementary screen content region. The consumer renders a
// fixed 50/50 vertical split of the two rectangles.
func LocateInset(samples []Sample, info VideoInfo, cfg Config) SplitResult {
	srcW := float64(info.Width)
	srcH := float64(info.Height)
	cropW, _ := info.CropSize()

	// Default: bottom-right quadrant.
	pip := Rect{
		X: info.Width - info.Width/4,
		Y: info.Height - info.Height/4,
		W: info.Width / 4,
		H: info.Height / 4,
	}

scan:
	for _, s := range samples {
		for _, f := range s.Faces {
			inCorner := (f.CX < srcW*cornerFrac || f.CX > srcW*(1-cornerFrac)) &&
				(f.CY < srcH*cornerFrac || f.CY > srcH*(1-cornerFrac))
			isSmall := f.W/srcW < smallWidthRatio
			if !inCorner && !isSmall {
				continue
			}
			// Expand the face bbox to capture the full inset box.
			pad := f.W * cfg.InsetPadding
			px := clamp(f.X-pad, 0, srcW)
			py := clamp(f.Y-pad, 0, srcH)
			pip = Rect{
				X: int(px),
				Y: int(py),
				W: int(clamp(f.W+pad*2, 0, srcW-px)),
				H: int(clamp(f.H+pad*2, 0, srcH-py)),
			}
			break scan
		}
	}

	// Screen content is the half of the frame opposite the inset.
	pipCX := float64(pip.X) + float64(pip.W)/2
	var screenX, screenW int
	if pipCX > srcW*0.5 {
		screenX = 0
		screenW = pip.X
	} else {
		screenX = pip.X + pip.W
		screenW = info.Width - screenX
	}
	if screenW < cfg.MinScreenWidth {
		screenW = cropW
		if pipCX > srcW*0.5 {
			screenX = 0
		} else {
			screenX = info.Width - cropW
		}
	}

	log.Printf("[CLASSIFY] inset pip=%+v screen=(%d,0,%dx%d)", pip, screenX, screenW, info.Height)
	return SplitResult{
		Screen:     Rect{X: screenX, Y: 0, W: screenW, H: info.Height},
		PiP:        pip,
		SplitRatio: 50,
	}
}
