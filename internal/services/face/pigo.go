package face

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	pigoMinSize          = 20   // minimum face size (pixels)
	pigoMaxSize          = 1000 // maximum face size (pixels)
	pigoShiftFactor      = 0.1  // shift factor for detection window
	pigoScaleFactor      = 1.1  // scale factor for image pyramid
	pigoIoUThreshold     = 0.2  // IoU threshold for cluster NMS
	pigoQualityThreshold = 5.0  // minimum quality score
)

// PigoDetector is the default pure-Go detection provider. It yields no
// landmarks, so downstream center estimation falls back to the bbox center.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads and unpacks the cascade file.
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	log.Printf("[FACE] pigo detector ready (minSize=%d quality=%.1f)", pigoMinSize, pigoQualityThreshold)
	return &PigoDetector{classifier: classifier}, nil
}

// Detect runs the cascade over a frame image.
func (d *PigoDetector) Detect(imagePath string) ([]Detection, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	gray := toGrayscale(img)
	params := pigo.CascadeParams{
		MinSize:     pigoMinSize,
		MaxSize:     pigoMaxSize,
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   img.Bounds().Dy(),
			Cols:   img.Bounds().Dx(),
			Dim:    img.Bounds().Dx(),
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, pigoIoUThreshold)

	var detections []Detection
	for _, det := range dets {
		if det.Q < pigoQualityThreshold {
			continue
		}
		// Pigo reports a center and radius; convert to a bbox.
		size := float32(det.Scale * 2)
		detections = append(detections, Detection{
			X:          float32(det.Col) - float32(det.Scale),
			Y:          float32(det.Row) - float32(det.Scale),
			Width:      size,
			Height:     size,
			Confidence: det.Q / 100.0,
		})
	}
	return detections, nil
}

// Close implements Detector; pigo holds no external resources.
func (d *PigoDetector) Close() {
	d.classifier = nil
}

func toGrayscale(img image.Image) []uint8 {
	bounds := img.Bounds()
	gray := make([]uint8, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			gray[(y-bounds.Min.Y)*bounds.Dx()+(x-bounds.Min.X)] = uint8((r*299 + g*587 + b*114) / 1000 >> 8)
		}
	}
	return gray
}
