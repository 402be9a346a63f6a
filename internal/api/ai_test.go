package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.m4a")
	require.NoError(t, os.WriteFile(path, []byte("fake-audio-bytes"), 0644))
	return path
}

func TestTranscribe(t *testing.T) {
	t.Run("MultipartFirst", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			file, header, err := r.FormFile("audio")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "recording.m4a", header.Filename)

			w.Write(envelope(map[string]any{"text": "hello there", "confidence": 0.9}))
		})

		resp, err := c.Transcribe(context.Background(), writeAudioFile(t))
		require.NoError(t, err)
		assert.Equal(t, "hello there", resp.Text)
	})

	t.Run("FallsBackToBase64", func(t *testing.T) {
		var sawBase64 bool
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				// Reject the multipart attempt the way a mangling proxy does.
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
				return
			}
			var body struct {
				AudioBase64 string `json:"audioBase64"`
				FileName    string `json:"fileName"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			data, err := base64.StdEncoding.DecodeString(body.AudioBase64)
			require.NoError(t, err)
			assert.Equal(t, "fake-audio-bytes", string(data))
			assert.Equal(t, "recording.m4a", body.FileName)
			sawBase64 = true

			w.Write(envelope(map[string]any{"text": "fallback worked", "confidence": 0.8}))
		})

		resp, err := c.Transcribe(context.Background(), writeAudioFile(t))
		require.NoError(t, err)
		assert.True(t, sawBase64)
		assert.Equal(t, "fallback worked", resp.Text)
	})

	t.Run("MissingFile", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		_, err := c.Transcribe(context.Background(), "/nonexistent/audio.m4a")
		require.Error(t, err)
	})

	t.Run("BarePayload", func(t *testing.T) {
		// Some deployments skip the envelope on the STT route.
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"text": "bare", "confidence": 0.7})
		})
		resp, err := c.Transcribe(context.Background(), writeAudioFile(t))
		require.NoError(t, err)
		assert.Equal(t, "bare", resp.Text)
	})
}

func TestTTSDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "us", body["accent"])
		assert.Equal(t, "female", body["gender"])
		w.Write(envelope(map[string]string{"audio": "QUJD", "mime": "audio/mpeg"}))
	})

	resp, err := c.TTS(context.Background(), "Hello!", "", "")
	require.NoError(t, err)
	assert.Equal(t, "QUJD", resp.Audio)
}

func TestExampleReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "How was your weekend?", body["ai_text"])
		assert.Equal(t, "s-1", body["sessionId"])
		w.Write(envelope(map[string]string{"reply_example": "It was great, I went hiking."}))
	})

	resp, err := c.ExampleReply(context.Background(), "How was your weekend?", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "It was great, I went hiking.", resp.ReplyExample)
}

func TestFeedbackContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(map[string]any{
			"natural":      false,
			"corrected_en": "I went to the park.",
			"reason_ko":    "과거형 동사를 사용해야 합니다.",
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	resp, err := c.Feedback(context.Background(), "I go to the park yesterday")
	require.NoError(t, err)
	assert.False(t, resp.Natural)
	assert.Equal(t, "I went to the park.", resp.CorrectedEN)
	assert.NotEmpty(t, resp.ReasonKO)
}
