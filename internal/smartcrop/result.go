package smartcrop

import (
	"encoding/json"
	"fmt"
)

// Result is the per-clip coordinate artifact: exactly one of four shapes.
type Result interface {
	Mode() string
}

// Rect is a pixel rectangle with top-left origin.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// SkipResult means no usable subject was found; the caller keeps the
// original framing.
type SkipResult struct{}

func (SkipResult) Mode() string { return "skip" }

func (SkipResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"mode": "skip"})
}

// SplitResult describes a screen-with-inset video: the consumer renders a
// fixed vertical split of the two regions.
type SplitResult struct {
	Screen     Rect `json:"screen"`
	PiP        Rect `json:"pip"`
	SplitRatio int  `json:"splitRatio"`
}

func (SplitResult) Mode() string { return "split" }

func (r SplitResult) MarshalJSON() ([]byte, error) {
	type alias SplitResult
	return json.Marshal(struct {
		ModeTag string `json:"mode"`
		alias
	}{ModeTag: "split", alias: alias(r)})
}

// CropResult is a uniformly tracked clip: one crop rectangle per output
// frame.
type CropResult struct {
	Coords []Keyframe `json:"coords"`
}

func (CropResult) Mode() string { return "crop" }

func (r CropResult) MarshalJSON() ([]byte, error) {
	type alias CropResult
	return json.Marshal(struct {
		ModeTag string `json:"mode"`
		alias
	}{ModeTag: "crop", alias: alias(r)})
}

// MixedResult alternates tracked crop segments with letterboxed ones.
type MixedResult struct {
	Segments []Segment `json:"segments"`
	CropW    int       `json:"cropW"`
	CropH    int       `json:"cropH"`
}

func (MixedResult) Mode() string { return "mixed" }

func (r MixedResult) MarshalJSON() ([]byte, error) {
	type alias MixedResult
	return json.Marshal(struct {
		ModeTag string `json:"mode"`
		alias
	}{ModeTag: "mixed", alias: alias(r)})
}

// DecodeResult parses a coords artifact back into its concrete shape.
func DecodeResult(data []byte) (Result, error) {
	var envelope struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode coords artifact: %w", err)
	}

	switch envelope.Mode {
	case "skip":
		return SkipResult{}, nil
	case "split":
		var r SplitResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode split artifact: %w", err)
		}
		return r, nil
	case "crop":
		var r CropResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode crop artifact: %w", err)
		}
		return r, nil
	case "mixed":
		var r MixedResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode mixed artifact: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown artifact mode %q", envelope.Mode)
	}
}
