package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsModel   = "eleven_flash_v2_5"

	// DefaultVoiceID is used when the caller does not pick a voice.
	DefaultVoiceID = "JBFqnCBsd6RMkjVDRZzb"
)

// ElevenLabsClient streams synthesized speech from the ElevenLabs
// text-to-speech API.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// NewElevenLabsClientWithBaseURL is used by tests to point at a stub server.
func NewElevenLabsClientWithBaseURL(apiKey, baseURL string) *ElevenLabsClient {
	c := NewElevenLabsClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Synthesize converts text to speech and returns the MP3 audio stream.
// The caller must close the returned reader.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	body, err := json.Marshal(map[string]interface{}{
		"text":     text,
		"model_id": elevenLabsModel,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=mp3_44100_128", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("speech synthesis returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
