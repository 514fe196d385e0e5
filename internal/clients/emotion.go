package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

// EmotionScore is one detected facial emotion with its confidence.
type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// EmotionClient calls a facial-emotion inference service. The endpoint is
// deployment-specific and configured by URL.
type EmotionClient struct {
	endpoint string
	http     *http.Client
}

func NewEmotionClient(endpoint string) *EmotionClient {
	return &EmotionClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze submits a still frame and returns detected emotions sorted by
// the service, highest confidence first.
func (c *EmotionClient) Analyze(ctx context.Context, image []byte) ([]EmotionScore, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emotion analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion analysis returned status %d", resp.StatusCode)
	}

	var out struct {
		Emotions []EmotionScore `json:"emotions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode emotion analysis: %w", err)
	}
	return out.Emotions, nil
}
