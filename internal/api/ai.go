package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Chat sends one user utterance and returns the AI tutor's reply.
func (c *Client) Chat(ctx context.Context, text string) (*AIChatResponse, error) {
	var out AIChatResponse
	if err := c.post(ctx, "/api/ai/chat", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feedback requests grammar feedback for a user sentence.
func (c *Client) Feedback(ctx context.Context, text string) (*AIFeedbackResponse, error) {
	var out AIFeedbackResponse
	if err := c.post(ctx, "/api/ai/feedback", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExampleReply asks for a suggested response to an AI utterance.
func (c *Client) ExampleReply(ctx context.Context, aiText, sessionID string) (*ExampleReplyResponse, error) {
	body := map[string]any{"ai_text": aiText}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	var out ExampleReplyResponse
	if err := c.post(ctx, "/api/ai/example-reply", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TTS synthesizes speech for the given text.
func (c *Client) TTS(ctx context.Context, text, accent, gender string) (*TTSResponse, error) {
	if accent == "" {
		accent = "us"
	}
	if gender == "" {
		gender = "female"
	}
	var out TTSResponse
	body := map[string]string{"text": text, "accent": accent, "gender": gender}
	if err := c.post(ctx, "/api/ai/tts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe uploads an audio file for speech-to-text. The primary path is a
// multipart upload with field name "audio"; when that fails the audio is
// re-sent as a base64 JSON payload, which some deployments accept where
// multipart does not survive the proxy chain.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*STTResponse, error) {
	out, err := c.transcribeMultipart(ctx, audioPath)
	if err == nil {
		return out, nil
	}
	c.logger.Warn("multipart upload failed, falling back to base64", "err", err)
	return c.transcribeBase64(ctx, audioPath)
}

func (c *Client) transcribeMultipart(ctx context.Context, audioPath string) (*STTResponse, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/stt", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeSTT(resp)
}

func (c *Client) transcribeBase64(ctx context.Context, audioPath string) (*STTResponse, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	body := map[string]string{
		"audioBase64": base64.StdEncoding.EncodeToString(data),
		"fileName":    filepath.Base(audioPath),
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/stt", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeSTT(resp)
}

// decodeSTT tolerates both enveloped and bare STT payloads.
func decodeSTT(resp *http.Response) (*STTResponse, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err == nil && len(env.Data) > 0 {
		var out STTResponse
		if err := json.Unmarshal(env.Data, &out); err == nil {
			return &out, nil
		}
	}

	var out STTResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode STT response: %w", err)
	}
	return &out, nil
}
