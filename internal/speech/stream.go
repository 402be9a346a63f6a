// Package speech streams audio to the backend's speech-to-text endpoint over
// a websocket and surfaces interim and final transcription results.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lingomate/lingomate-cli/internal/api"
)

// chunkSize is how much audio goes into each binary frame.
const chunkSize = 4096

// Result is one transcription update from the stream.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
}

// serverMessage covers the message types the STT stream emits.
type serverMessage struct {
	Type       string  `json:"type"` // "stt_result" or "error"
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
	Message    string  `json:"message"`
}

// StreamClient holds the connection settings for the streaming STT endpoint.
type StreamClient struct {
	url    string
	tokens api.TokenSource
	dialer *websocket.Dialer
	logger *log.Logger
}

// NewStreamClient creates a streaming STT client for the given ws:// or
// wss:// URL.
func NewStreamClient(url string, tokens api.TokenSource) *StreamClient {
	return &StreamClient{
		url:    url,
		tokens: tokens,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: log.WithPrefix("speech"),
	}
}

// Stream sends the audio to the backend in binary frames and invokes onResult
// for every transcription update until the server closes the stream. It
// returns once the stream ends or ctx is canceled.
func (c *StreamClient) Stream(ctx context.Context, audio io.Reader, onResult func(Result)) error {
	header := http.Header{}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to STT stream (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to STT stream: %w", err)
	}
	defer conn.Close()

	// Cancellation closes the connection, which unblocks both the writer
	// and the read loop below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- c.sendAudio(conn, audio)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return <-writeErr
			}
			return fmt.Errorf("failed to read STT result: %w", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("ignoring malformed STT message", "error", err)
			continue
		}
		switch msg.Type {
		case "stt_result":
			if onResult != nil {
				onResult(Result{Text: msg.Text, Confidence: msg.Confidence, IsFinal: msg.IsFinal})
			}
			if msg.IsFinal {
				return <-writeErr
			}
		case "error":
			return fmt.Errorf("STT stream error: %s", msg.Message)
		default:
			c.logger.Debug("unhandled STT message", "type", msg.Type)
		}
	}
}

// sendAudio writes the audio as binary frames and then signals end of input.
func (c *StreamClient) sendAudio(conn *websocket.Conn, audio io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return fmt.Errorf("failed to send audio: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
	}
	if err := conn.WriteJSON(map[string]string{"type": "end_of_audio"}); err != nil {
		return fmt.Errorf("failed to end audio stream: %w", err)
	}
	return nil
}

// Transcribe streams the audio and returns the final transcript text,
// assembled from the final results in order.
func (c *StreamClient) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	var finals []string
	err := c.Stream(ctx, audio, func(r Result) {
		if r.IsFinal && r.Text != "" {
			finals = append(finals, r.Text)
		}
	})
	if err != nil {
		return "", err
	}
	return strings.Join(finals, " "), nil
}
