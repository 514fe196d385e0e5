package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	groqBaseURL        = "https://api.groq.com/openai/v1"
	groqChatModel      = "mistral-saba-24b"
	groqWhisperModel   = "whisper-large-v3"
	groqRequestTimeout = 60 * time.Second
)

// ChatTurn is one message in a chat completion request.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GroqClient calls the Groq API for chat completion and Whisper
// speech-to-text. The vendor has no Go SDK; this wraps the two
// endpoints the AI mentor needs.
type GroqClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewGroqClient(apiKey string) *GroqClient {
	return &GroqClient{
		apiKey:  apiKey,
		baseURL: groqBaseURL,
		http:    &http.Client{Timeout: groqRequestTimeout},
	}
}

// NewGroqClientWithBaseURL is used by tests to point at a stub server.
func NewGroqClientWithBaseURL(apiKey, baseURL string) *GroqClient {
	c := NewGroqClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Complete runs a chat completion and returns the assistant reply.
func (c *GroqClient) Complete(ctx context.Context, turns []ChatTurn) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model":       groqChatModel,
		"messages":    turns,
		"temperature": 0.7,
		"max_tokens":  1000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Transcribe converts recorded audio to text with Whisper.
func (c *GroqClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", groqWhisperModel); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription returned status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcription: %w", err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("no transcription received")
	}
	return out.Text, nil
}
