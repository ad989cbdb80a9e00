package diarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Turn is one speaker interval from the diarization collaborator.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Client calls the diarization HTTP service. A nil client (no URL configured)
// means diarization is disabled; callers treat any failure as non-fatal and
// fall back to detection-only subject selection.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns nil when baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		// Diarization of a long clip is slow; allow generous time.
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// Diarize submits the extracted audio and returns speaker turns in the order
// the service produced them. That ordering is not a stable contract.
func (c *Client) Diarize(audioPath string) ([]Turn, error) {
	payload, err := json.Marshal(map[string]string{"audio": audioPath})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/diarize", c.baseURL)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to call diarization service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization service returned status: %d", resp.StatusCode)
	}

	var turns []Turn
	if err := json.NewDecoder(resp.Body).Decode(&turns); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return turns, nil
}
