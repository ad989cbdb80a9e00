package face

import "fmt"

// Detector is the face-detection collaborator. Implementations are
// synchronous and blocking; failures are fatal for the clip being analyzed.
type Detector interface {
	// Detect runs detection on a still frame stored on disk.
	Detect(imagePath string) ([]Detection, error)
	// Close releases any model resources.
	Close()
}

// Options selects and configures a detection backend.
type Options struct {
	Backend     string // "pigo", "yunet" or "remote"
	CascadePath string // pigo cascade file
	ModelPath   string // YuNet ONNX model file
	SocketPath  string // unix socket of the remote YuNet sidecar
}

// New builds the configured detector backend.
func New(opts Options) (Detector, error) {
	switch opts.Backend {
	case "", "pigo":
		return NewPigoDetector(opts.CascadePath)
	case "yunet":
		return NewYuNetDetector(opts.ModelPath)
	case "remote":
		return NewRemoteDetector(opts.SocketPath), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", opts.Backend)
	}
}
