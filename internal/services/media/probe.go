package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"reframe/internal/utils"
)

// Metadata is the probed source description handed to the core.
type Metadata struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
}

// Probe reads width, height, frame rate and duration via ffprobe.
func Probe(videoPath string) (Metadata, error) {
	cmd := []string{
		"ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-print_format", "json",
		videoPath,
	}

	output, err := utils.Exec(cmd...)
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			FrameRate string `json:"r_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(output), &probe); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return Metadata{}, fmt.Errorf("no video stream in %s", videoPath)
	}

	meta := Metadata{
		Width:  probe.Streams[0].Width,
		Height: probe.Streams[0].Height,
		FPS:    parseFrameRate(probe.Streams[0].FrameRate),
	}
	if probe.Format.Duration != "" {
		meta.Duration, err = strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
		}
	}
	return meta, nil
}

// parseFrameRate handles ffprobe's rational form, e.g. "30000/1001".
func parseFrameRate(s string) float64 {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
