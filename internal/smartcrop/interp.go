package smartcrop

import "math"

// InterpolateFrames upsamples keyframes to one entry per output video frame.
// A pair of keyframes whose horizontal jump exceeds sceneCut is treated as a
// cut: the earlier position is held for every intermediate frame and the
// position switches at the first frame at or after the later keyframe. No
// emitted frame ever carries an x strictly between the two endpoints of a
// cut. The final keyframe is always appended verbatim.
func InterpolateFrames(keyframes []Keyframe, frameInterval, sceneCut float64) []Keyframe {
	if len(keyframes) == 0 {
		return nil
	}
	if len(keyframes) == 1 {
		return []Keyframe{keyframes[0]}
	}

	var frames []Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		a, b := keyframes[i], keyframes[i+1]
		steps := int(math.Round((b.T - a.T) / frameInterval))
		if steps < 1 {
			steps = 1
		}

		cut := math.Abs(float64(b.X-a.X)) > sceneCut
		for step := 0; step < steps; step++ {
			t := roundT(a.T + float64(step)*frameInterval)
			if cut {
				frames = append(frames, Keyframe{
					T: t, X: a.X, Y: a.Y, W: a.W, H: a.H, HasSubject: a.HasSubject,
				})
				continue
			}
			alpha := float64(step) / float64(steps)
			frames = append(frames, Keyframe{
				T:          t,
				X:          a.X + int(alpha*float64(b.X-a.X)),
				Y:          a.Y + int(alpha*float64(b.Y-a.Y)),
				W:          a.W,
				H:          a.H,
				HasSubject: a.HasSubject,
			})
		}
	}
	frames = append(frames, keyframes[len(keyframes)-1])
	return frames
}
