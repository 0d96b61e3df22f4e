package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultTranscriptionModel = "whisper-1"

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Transcribe uploads audio bytes to the transcription endpoint and returns
// the recognized text. filename carries the format hint (extension); language
// is an ISO 639-1 code or empty for auto-detection.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("openai transcribe: empty audio")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "audio.ogg"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", defaultTranscriptionModel); err != nil {
		return "", err
	}
	if language = strings.TrimSpace(language); language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var out transcriptionResponse
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("openai transcribe http %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("openai transcribe http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return strings.TrimSpace(out.Text), nil
}
