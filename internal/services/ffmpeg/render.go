package ffmpeg

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"reframe/internal/smartcrop"
	"reframe/internal/utils"
)

// Output geometry of the rendered vertical video.
const (
	outWidth    = 1080
	outHeight   = 1920
	panelHeight = outHeight / 2

	// Cap on between() terms per segment so the filter expression stays
	// within what ffmpeg parses comfortably.
	maxExprEntries = 40
)

// Render applies a coords artifact to the source video and writes the
// reframed output.
func Render(input, output string, result smartcrop.Result) error {
	switch r := result.(type) {
	case smartcrop.SkipResult:
		return renderSkip(input, output)
	case smartcrop.SplitResult:
		return RenderSplit(input, output, r)
	case smartcrop.CropResult:
		return RenderCrop(input, output, r.Coords)
	case smartcrop.MixedResult:
		return RenderMixed(input, output, r)
	default:
		return fmt.Errorf("unknown result mode %q", result.Mode())
	}
}

// renderSkip keeps the original framing.
func renderSkip(input, output string) error {
	cmd := []string{"ffmpeg", "-y", "-i", input, "-c", "copy", output}
	if out, err := utils.Exec(cmd...); err != nil {
		log.Printf("[RENDER] copy failed: %s", out)
		return fmt.Errorf("skip render failed: %w", err)
	}
	return nil
}

// RenderCrop drives a per-frame moving crop through a sendcmd file.
func RenderCrop(input, output string, coords []smartcrop.Keyframe) error {
	if len(coords) == 0 {
		return fmt.Errorf("coords are empty")
	}

	cmdFile, err := writeSendCmd(coords)
	if err != nil {
		return err
	}
	defer os.Remove(cmdFile)

	first := coords[0]
	vf := fmt.Sprintf("sendcmd=f=%s,crop=%d:%d,scale=%d:%d,setsar=1",
		cmdFile, first.W, first.H, outWidth, outHeight)

	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", input,
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		output,
	}

	log.Printf("[RENDER] dynamic crop: %d coords", len(coords))
	if out, err := utils.Exec(cmd...); err != nil {
		log.Printf("[RENDER] ffmpeg failed: %s", tail(out, 800))
		return fmt.Errorf("crop render failed: %w", err)
	}
	return nil
}

// RenderSplit stacks the screen content region over the inset camera region
// in a fixed 50/50 vertical split.
func RenderSplit(input, output string, res smartcrop.SplitResult) error {
	filter := fmt.Sprintf(
		"[0:v]split=2[s][p];"+
			"[s]crop=%d:%d:%d:%d,scale=%d:%d,setsar=1[top];"+
			"[p]crop=%d:%d:%d:%d,scale=%d:%d,setsar=1[bottom];"+
			"[top][bottom]vstack=inputs=2[out]",
		res.Screen.W, res.Screen.H, res.Screen.X, res.Screen.Y, outWidth, panelHeight,
		res.PiP.W, res.PiP.H, res.PiP.X, res.PiP.Y, outWidth, panelHeight,
	)

	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", input,
		"-filter_complex", filter,
		"-map", "[out]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-c:a", "aac",
		output,
	}

	log.Printf("[RENDER] split screen: screen=%+v pip=%+v", res.Screen, res.PiP)
	if out, err := utils.Exec(cmd...); err != nil {
		log.Printf("[RENDER] ffmpeg failed: %s", tail(out, 800))
		return fmt.Errorf("split render failed: %w", err)
	}
	return nil
}

// RenderMixed crops tracked segments and letterboxes untracked ones, then
// concatenates everything in order.
func RenderMixed(input, output string, res smartcrop.MixedResult) error {
	if len(res.Segments) == 0 {
		return fmt.Errorf("mixed result has no segments")
	}

	filter := buildMixedFilter(res)
	filterFile := filepath.Join(os.TempDir(), fmt.Sprintf("reframe_filter_%d.txt", os.Getpid()))
	if err := os.WriteFile(filterFile, []byte(filter), 0o644); err != nil {
		return fmt.Errorf("failed to write filter file: %w", err)
	}
	defer os.Remove(filterFile)

	cmd := []string{
		"ffmpeg",
		"-y",
		"-i", input,
		"-filter_complex_script", filterFile,
		"-map", "[out]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-c:a", "aac",
		output,
	}

	log.Printf("[RENDER] mixed: %d segments", len(res.Segments))
	if out, err := utils.Exec(cmd...); err != nil {
		log.Printf("[RENDER] ffmpeg failed: %s", tail(out, 800))
		return fmt.Errorf("mixed render failed: %w", err)
	}
	return nil
}

// buildMixedFilter produces the full filter graph for a mixed artifact.
func buildMixedFilter(res smartcrop.MixedResult) string {
	n := len(res.Segments)
	var filters []string
	var outputs []string

	if n > 1 {
		labels := make([]string, n)
		for i := range labels {
			labels[i] = fmt.Sprintf("[v%d]", i)
		}
		filters = append(filters, fmt.Sprintf("[0:v]split=%d%s", n, strings.Join(labels, "")))
	} else {
		filters = append(filters, "[0:v]copy[v0]")
	}

	for i, seg := range res.Segments {
		in := fmt.Sprintf("[v%d]", i)
		out := fmt.Sprintf("[c%d]", i)

		if seg.Kind == smartcrop.SegmentTracked {
			xExpr := positionExpr(seg.Keyframes, seg.End, coordX)
			yExpr := positionExpr(seg.Keyframes, seg.End, coordY)
			filters = append(filters, fmt.Sprintf(
				"%scrop=w=%d:h=%d:x='%s':y='%s',scale=%d:%d,setsar=1,"+
					"trim=start=%.3f:end=%.3f,setpts=PTS-STARTPTS%s",
				in, res.CropW, res.CropH, xExpr, yExpr, outWidth, outHeight,
				seg.Start, seg.End, out))
		} else {
			// Letterbox: full frame scaled into the vertical canvas.
			filters = append(filters, fmt.Sprintf(
				"%sscale=%d:-2,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,"+
					"trim=start=%.3f:end=%.3f,setpts=PTS-STARTPTS%s",
				in, outWidth, outWidth, outHeight,
				seg.Start, seg.End, out))
		}
		outputs = append(outputs, out)
	}

	if len(outputs) > 1 {
		filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[out]",
			strings.Join(outputs, ""), len(outputs)))
	} else {
		filters = append(filters, fmt.Sprintf("%snull[out]", outputs[0]))
	}
	return strings.Join(filters, ";")
}

type coordAxis int

const (
	coordX coordAxis = iota
	coordY
)

// positionExpr builds a sum of between(t,...) terms selecting the keyframe
// position active at each instant. Dense per-frame coords are thinned to
// keep the expression bounded.
func positionExpr(coords []smartcrop.Keyframe, segmentEnd float64, axis coordAxis) string {
	if len(coords) == 0 {
		return "0"
	}

	thinned := thin(coords, maxExprEntries)
	if len(thinned) == 1 {
		return fmt.Sprintf("%d", value(thinned[0], axis))
	}

	var parts []string
	for i, kf := range thinned {
		start := kf.T
		end := segmentEnd
		if i < len(thinned)-1 {
			end = thinned[i+1].T - 0.001
		}
		parts = append(parts, fmt.Sprintf("between(t,%.3f,%.3f)*%d", start, end, value(kf, axis)))
	}
	return strings.Join(parts, "+")
}

func value(kf smartcrop.Keyframe, axis coordAxis) int {
	if axis == coordX {
		return kf.X
	}
	return kf.Y
}

// thin keeps at most limit coords, always retaining the first and last.
func thin(coords []smartcrop.Keyframe, limit int) []smartcrop.Keyframe {
	if len(coords) <= limit {
		return coords
	}
	step := (len(coords) + limit - 1) / limit
	var out []smartcrop.Keyframe
	for i := 0; i < len(coords); i += step {
		out = append(out, coords[i])
	}
	if out[len(out)-1].T != coords[len(coords)-1].T {
		out = append(out, coords[len(coords)-1])
	}
	return out
}

// writeSendCmd emits the per-frame crop commands for the sendcmd filter.
func writeSendCmd(coords []smartcrop.Keyframe) (string, error) {
	var b strings.Builder
	for _, c := range coords {
		fmt.Fprintf(&b, "%.4f crop x %d;\n", c.T, c.X)
		fmt.Fprintf(&b, "%.4f crop y %d;\n", c.T, c.Y)
	}

	cmdFile := filepath.Join(os.TempDir(), fmt.Sprintf("reframe_sendcmd_%d.txt", os.Getpid()))
	if err := os.WriteFile(cmdFile, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write sendcmd file: %w", err)
	}
	return cmdFile, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
