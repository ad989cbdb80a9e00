package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"reframe/internal/services/diarize"
	"reframe/internal/services/face"
	"reframe/internal/services/media"
	"reframe/internal/smartcrop"
)

// Pipeline wires the collaborators around the crop path engine and runs one
// clip end to end. Clips are independent: a Pipeline may be shared by
// concurrent workers because all per-clip state lives on the stack.
type Pipeline struct {
	detector face.Detector
	diarizer *diarize.Client
	cfg      smartcrop.Config
}

// New assembles a pipeline. diarizer may be nil to disable speaker-assisted
// selection.
func New(detector face.Detector, diarizer *diarize.Client, cfg smartcrop.Config) *Pipeline {
	return &Pipeline{detector: detector, diarizer: diarizer, cfg: cfg}
}

// AnalyzeClip fetches the clip, classifies its layout, runs the matching
// branch and writes the coords artifact to <tmpDir>/<clipID>_coords.json.
// It returns the result and the artifact path.
func (p *Pipeline) AnalyzeClip(videoURL, clipID, tmpDir string) (smartcrop.Result, string, error) {
	if err := os.MkdirAll(tmpDir, os.ModePerm); err != nil {
		return nil, "", fmt.Errorf("failed to create tmp dir: %w", err)
	}

	localVideo := filepath.Join(tmpDir, clipID+"_src.mp4")
	if err := media.Fetch(videoURL, localVideo); err != nil {
		return nil, "", err
	}
	defer os.Remove(localVideo)

	meta, err := media.Probe(localVideo)
	if err != nil {
		return nil, "", err
	}
	info := smartcrop.VideoInfo{
		Width:    meta.Width,
		Height:   meta.Height,
		FPS:      meta.FPS,
		Duration: meta.Duration,
	}
	log.Printf("[CORE] clip=%s video=%dx%d @%.1ffps %.1fs", clipID, info.Width, info.Height, info.FPS, info.Duration)

	if info.Duration <= 0 {
		return nil, "", fmt.Errorf("clip %s: %w", clipID, smartcrop.ErrNoSamples)
	}

	classSamples, err := p.classifierSamples(localVideo, clipID, tmpDir, info)
	if err != nil {
		return nil, "", err
	}

	var result smartcrop.Result
	switch smartcrop.ClassifyLayout(classSamples, info) {
	case smartcrop.LayoutNoSubject:
		result = smartcrop.SkipResult{}
	case smartcrop.LayoutScreenInset:
		result = smartcrop.LocateInset(classSamples, info, p.cfg)
	default:
		result, err = p.trackTalkingHead(localVideo, clipID, tmpDir, info)
		if err != nil {
			return nil, "", err
		}
	}

	coordsPath := filepath.Join(tmpDir, clipID+"_coords.json")
	data, err := json.Marshal(result)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode coords artifact: %w", err)
	}
	if err := os.WriteFile(coordsPath, data, 0o644); err != nil {
		return nil, "", fmt.Errorf("failed to write coords artifact: %w", err)
	}

	log.Printf("[CORE] clip=%s mode=%s coords=%s", clipID, result.Mode(), coordsPath)
	return result, coordsPath, nil
}

// classifierSamples detects faces on the sparse classification frames.
// Frames that cannot be extracted (e.g. timestamps past a truncated stream)
// are skipped, matching the seek-and-read behavior of the capture loop.
func (p *Pipeline) classifierSamples(videoPath, clipID, tmpDir string, info smartcrop.VideoInfo) ([]smartcrop.Sample, error) {
	times := smartcrop.ClassifierTimes(info.Duration, p.cfg.ClassifierSamples)
	samples := make([]smartcrop.Sample, 0, len(times))

	for i, t := range times {
		framePath := filepath.Join(tmpDir, fmt.Sprintf("%s_cls_%02d.jpg", clipID, i))
		if err := media.ExtractFrameAt(videoPath, t, framePath); err != nil {
			log.Printf("[CLASSIFY] skipping sample at %.2fs: %v", t, err)
			continue
		}

		detections, err := p.detector.Detect(framePath)
		os.Remove(framePath)
		if err != nil {
			return nil, fmt.Errorf("face detection failed at %.2fs: %w", t, err)
		}
		samples = append(samples, smartcrop.Sample{T: t, Faces: toCore(detections)})
	}
	return samples, nil
}

// trackTalkingHead runs the dense branch: diarization (best effort), dense
// face sampling and the full selection/smoothing engine.
func (p *Pipeline) trackTalkingHead(videoPath, clipID, tmpDir string, info smartcrop.VideoInfo) (smartcrop.Result, error) {
	var turns smartcrop.Turns
	if p.diarizer != nil {
		turns = p.speakerTurns(videoPath, clipID, tmpDir)
	}

	framesDir := filepath.Join(tmpDir, clipID+"_frames")
	frames, err := media.ExtractFrames(videoPath, p.cfg.SampleInterval, framesDir)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(framesDir)

	samples := make([]smartcrop.Sample, 0, len(frames))
	for i, framePath := range frames {
		detections, err := p.detector.Detect(framePath)
		if err != nil {
			return nil, fmt.Errorf("face detection failed on frame %d: %w", i, err)
		}
		t := math.Round(float64(i)*p.cfg.SampleInterval*100) / 100
		samples = append(samples, smartcrop.Sample{T: t, Faces: toCore(detections)})
	}

	detected := 0
	for _, s := range samples {
		if len(s.Faces) > 0 {
			detected++
		}
	}
	log.Printf("[TRACK] face detection done: %d/%d samples have faces", detected, len(samples))

	return smartcrop.TrackSubjects(samples, turns, info, p.cfg, smartcrop.NewGreedyMatcher())
}

// speakerTurns extracts audio and calls the diarization collaborator. Any
// failure here degrades to detection-only selection; it never aborts the
// clip.
func (p *Pipeline) speakerTurns(videoPath, clipID, tmpDir string) smartcrop.Turns {
	wavPath := filepath.Join(tmpDir, clipID+".wav")
	if err := media.ExtractAudio(videoPath, wavPath); err != nil {
		log.Printf("[TRACK] WARNING: audio extraction failed (%v) - face-only tracking", err)
		return nil
	}
	defer os.Remove(wavPath)

	raw, err := p.diarizer.Diarize(wavPath)
	if err != nil {
		log.Printf("[TRACK] WARNING: diarization failed (%v) - face-only tracking", err)
		return nil
	}

	turns := make(smartcrop.Turns, len(raw))
	for i, t := range raw {
		turns[i] = smartcrop.SpeakerTurn{Start: t.Start, End: t.End, Speaker: t.Speaker}
	}
	log.Printf("[TRACK] diarization done: %d turns", len(turns))
	return turns
}

// toCore normalizes provider detections into the engine's detection record,
// passing eye and nose keypoints through for center blending when available.
func toCore(detections []face.Detection) []smartcrop.Detection {
	out := make([]smartcrop.Detection, 0, len(detections))
	for _, d := range detections {
		n := len(d.Landmarks)
		if n > 3 {
			n = 3
		}
		keypoints := make([]smartcrop.Point, 0, n)
		for _, lm := range d.Landmarks[:n] {
			keypoints = append(keypoints, smartcrop.Point{X: float64(lm.X), Y: float64(lm.Y)})
		}
		out = append(out, smartcrop.NewDetection(
			float64(d.X), float64(d.Y), float64(d.Width), float64(d.Height), keypoints))
	}
	return out
}
