package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.groq.com/openai/v1/audio/transcriptions"
	defaultAPIModel   = "whisper-large-v3"
)

// whisperAPI implements Backend against a hosted OpenAI-compatible
// transcription endpoint.
type whisperAPI struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func newWhisperAPI(cfg Config) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcription API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultAPIModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &whisperAPI{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Transcribe uploads the wav as multipart form data and returns the
// recognized text.
func (w *whisperAPI) Transcribe(ctx context.Context, wavPath string) (string, error) {
	file, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	if err = form.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err = form.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err = form.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Text, nil
}
