package face

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sort"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	yunetInputWidth  = 640
	yunetInputHeight = 640
	yunetConfidence  = 0.7
	yunetIoU         = 0.7
	yunetStride      = 8
	yunetGridSize    = yunetInputWidth / yunetStride
	yunetAnchorCount = yunetGridSize * yunetGridSize
)

type anchor struct {
	cx float32
	cy float32
}

// YuNetDetector runs the YuNet face model in-process through ONNX Runtime.
// Detections are mapped back to source-image coordinates.
type YuNetDetector struct {
	session     *ort.AdvancedSession
	inputTensor *ort.Tensor[float32]
	clsTensor   *ort.Tensor[float32]
	bboxTensor  *ort.Tensor[float32]
	anchors     []anchor
}

// NewYuNetDetector initializes the ONNX Runtime environment and session.
func NewYuNetDetector(modelPath string) (*YuNetDetector, error) {
	libraryPath := "libonnxruntime.so"
	if os.PathSeparator == '\\' {
		libraryPath = "onnxruntime.dll"
	}
	ort.SetSharedLibraryPath(libraryPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	inputShape := ort.NewShape(1, 3, yunetInputHeight, yunetInputWidth)
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, 1*3*yunetInputHeight*yunetInputWidth))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	clsTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, yunetAnchorCount, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create cls tensor: %w", err)
	}
	bboxTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, yunetAnchorCount, 4))
	if err != nil {
		return nil, fmt.Errorf("failed to create bbox tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"cls_8", "bbox_8"},
		[]ort.Value{inputTensor},
		[]ort.Value{clsTensor, bboxTensor},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &YuNetDetector{
		session:     session,
		inputTensor: inputTensor,
		clsTensor:   clsTensor,
		bboxTensor:  bboxTensor,
		anchors:     generateAnchors(),
	}, nil
}

func generateAnchors() []anchor {
	anchors := make([]anchor, 0, yunetAnchorCount)
	for y := 0; y < yunetGridSize; y++ {
		for x := 0; x < yunetGridSize; x++ {
			anchors = append(anchors, anchor{
				cx: (float32(x) + 0.5) * yunetStride,
				cy: (float32(y) + 0.5) * yunetStride,
			})
		}
	}
	return anchors
}

// Detect runs inference on a frame image.
func (d *YuNetDetector) Detect(imagePath string) ([]Detection, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	d.preprocess(img)
	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("failed to run inference: %w", err)
	}

	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	detections := d.decode(float32(srcW)/yunetInputWidth, float32(srcH)/yunetInputHeight)
	return applyNMS(detections, yunetIoU), nil
}

// Close releases ONNX resources.
func (d *YuNetDetector) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	if d.clsTensor != nil {
		d.clsTensor.Destroy()
	}
	if d.bboxTensor != nil {
		d.bboxTensor.Destroy()
	}
	ort.DestroyEnvironment()
}

// preprocess resizes to model input and fills the tensor in BGR NCHW order.
func (d *YuNetDetector) preprocess(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := d.inputTensor.GetData()

	for y := 0; y < yunetInputHeight; y++ {
		for x := 0; x < yunetInputWidth; x++ {
			origX := bounds.Min.X + x*width/yunetInputWidth
			origY := bounds.Min.Y + y*height/yunetInputHeight
			r, g, b, _ := img.At(origX, origY).RGBA()

			data[0*yunetInputHeight*yunetInputWidth+y*yunetInputWidth+x] = float32(b >> 8)
			data[1*yunetInputHeight*yunetInputWidth+y*yunetInputWidth+x] = float32(g >> 8)
			data[2*yunetInputHeight*yunetInputWidth+y*yunetInputWidth+x] = float32(r >> 8)
		}
	}
}

// decode turns raw model outputs into detections in source-image space.
func (d *YuNetDetector) decode(scaleX, scaleY float32) []Detection {
	clsData := d.clsTensor.GetData()
	bboxData := d.bboxTensor.GetData()

	var detections []Detection
	for i := 0; i < yunetAnchorCount; i++ {
		confidence := sigmoid(clsData[i])
		if confidence < yunetConfidence {
			continue
		}

		dx := bboxData[i*4+0]
		dy := bboxData[i*4+1]
		dw := bboxData[i*4+2]
		dh := bboxData[i*4+3]

		a := d.anchors[i]
		cx := a.cx + dx*yunetStride
		cy := a.cy + dy*yunetStride
		w := float32(math.Abs(float64(dw * yunetStride)))
		h := float32(math.Abs(float64(dh * yunetStride)))

		x := cx - w/2
		y := cy - h/2

		const minSize = 10.0
		if w < minSize || h < minSize || w > yunetInputWidth || h > yunetInputHeight {
			continue
		}
		if x < 0 || y < 0 || x+w > yunetInputWidth || y+h > yunetInputHeight {
			continue
		}

		detections = append(detections, Detection{
			X:          x * scaleX,
			Y:          y * scaleY,
			Width:      w * scaleX,
			Height:     h * scaleY,
			Confidence: confidence,
		})
	}
	return detections
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func applyNMS(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	var keep []Detection
	used := make([]bool, len(detections))
	for i := 0; i < len(detections); i++ {
		if used[i] {
			continue
		}
		keep = append(keep, detections[i])
		used[i] = true
		for j := i + 1; j < len(detections); j++ {
			if !used[j] && iou(detections[i], detections[j]) > iouThreshold {
				used[j] = true
			}
		}
	}
	return keep
}

func iou(a, b Detection) float32 {
	x1 := max32(a.X, b.X)
	y1 := max32(a.Y, b.Y)
	x2 := min32(a.X+a.Width, b.X+b.Width)
	y2 := min32(a.Y+a.Height, b.Y+b.Height)
	if x2 < x1 || y2 < y1 {
		return 0
	}
	intersection := (x2 - x1) * (y2 - y1)
	union := a.Width*a.Height + b.Width*b.Height - intersection
	if union == 0 {
		return 0
	}
	return intersection / union
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
