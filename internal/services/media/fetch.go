package media

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"reframe/internal/utils"
)

// Fetch downloads (or remuxes) the source media to a local file without
// re-encoding. Works for both remote URLs and local paths.
func Fetch(videoURL, dst string) error {
	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", videoURL,
		"-c", "copy",
		dst,
	}

	output, err := utils.Exec(cmd...)
	if err != nil {
		log.Printf("[MEDIA] fetch failed: %s", tail(output, 500))
		return fmt.Errorf("failed to fetch video: %w", err)
	}
	return nil
}

// ExtractAudio writes 16 kHz mono PCM audio for the diarization collaborator.
func ExtractAudio(videoPath, wavPath string) error {
	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		wavPath,
	}

	if _, err := utils.Exec(cmd...); err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}
	return nil
}

// ExtractFrameAt grabs a single frame at time t as a JPEG.
func ExtractFrameAt(videoPath string, t float64, outPath string) error {
	cmd := []string{
		"ffmpeg",
		"-y",
		"-ss", fmt.Sprintf("%.3f", t),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	}

	if _, err := utils.Exec(cmd...); err != nil {
		return fmt.Errorf("failed to extract frame at %.3fs: %w", t, err)
	}
	return nil
}

// ExtractFrames samples the video at a fixed interval and returns the frame
// paths in time order. The caller owns cleanup of the returned directory.
func ExtractFrames(videoPath string, interval float64, framesDir string) ([]string, error) {
	if err := os.MkdirAll(framesDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}

	outputPattern := filepath.Join(framesDir, "frame_%05d.jpg")
	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%f", 1.0/interval),
		"-q:v", "2",
		outputPattern,
	}

	if _, err := utils.Exec(cmd...); err != nil {
		return nil, fmt.Errorf("failed to extract frames: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(framesDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
