package face

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// RemoteDetector talks to the Python YuNet sidecar over a unix socket. It is
// the only provider that yields the 5-point landmarks used for
// keypoint-blended center estimation.
type RemoteDetector struct {
	socketPath string
	timeout    time.Duration
}

type inferenceRequest struct {
	Height int    `msgpack:"h"`
	Width  int    `msgpack:"w"`
	Data   []byte `msgpack:"d"` // RGB uint8, row-major, shape (H, W, 3)
}

type remoteDetection struct {
	X          float32   `msgpack:"x"`
	Y          float32   `msgpack:"y"`
	Width      float32   `msgpack:"w"`
	Height     float32   `msgpack:"h"`
	Confidence float32   `msgpack:"c"`
	Landmarks  []float32 `msgpack:"l"` // 10 values: [x1,y1 .. x5,y5]
}

type inferenceResponse struct {
	Detections  []remoteDetection `msgpack:"detections"`
	InferenceMs float32           `msgpack:"inference_ms"`
}

// NewRemoteDetector creates a client for the sidecar socket.
func NewRemoteDetector(socketPath string) *RemoteDetector {
	return &RemoteDetector{
		socketPath: socketPath,
		timeout:    500 * time.Millisecond,
	}
}

// Detect decodes the frame image, ships raw RGB to the sidecar and converts
// the response.
func (d *RemoteDetector) Detect(imagePath string) ([]Detection, error) {
	rgb, width, height, err := loadRGB(imagePath)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("unix", d.socketPath, d.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to detection sidecar: %w", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set socket deadline: %w", err)
	}

	reqData, err := msgpack.Marshal(inferenceRequest{Height: height, Width: width, Data: rgb})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp inferenceResponse
	if err := msgpack.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	detections := make([]Detection, len(resp.Detections))
	for i, det := range resp.Detections {
		landmarks := make([]Point, 0, len(det.Landmarks)/2)
		for j := 0; j+1 < len(det.Landmarks); j += 2 {
			landmarks = append(landmarks, Point{X: det.Landmarks[j], Y: det.Landmarks[j+1]})
		}
		detections[i] = Detection{
			X:          det.X,
			Y:          det.Y,
			Width:      det.Width,
			Height:     det.Height,
			Confidence: det.Confidence,
			Landmarks:  landmarks,
		}
	}
	return detections, nil
}

// Close implements Detector; the connection is per-request.
func (d *RemoteDetector) Close() {}

func loadRGB(imagePath string) (rgb []byte, width, height int, err error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width = bounds.Dx()
	height = bounds.Dy()
	rgb = make([]byte, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return rgb, width, height, nil
}
