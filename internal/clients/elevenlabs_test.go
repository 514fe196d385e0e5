package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeStreamsAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/voice-1/stream", r.URL.Path)
		assert.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := NewElevenLabsClientWithBaseURL("test-key", srv.URL)
	stream, err := c.Synthesize(context.Background(), "hello", "voice-1")
	require.NoError(t, err)
	defer stream.Close()

	audio, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(audio))
}

func TestSynthesizeFallsBackToDefaultVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/"+DefaultVoiceID+"/stream", r.URL.Path)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewElevenLabsClientWithBaseURL("test-key", srv.URL)
	stream, err := c.Synthesize(context.Background(), "hello", "")
	require.NoError(t, err)
	stream.Close()
}

func TestSynthesizeSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewElevenLabsClientWithBaseURL("test-key", srv.URL)
	_, err := c.Synthesize(context.Background(), "hello", "voice-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
