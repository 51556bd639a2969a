package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okhrimenko/kasabot/internal/model"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel   = "llama-3.1-8b-instant"

	plainSystemPrompt = `Ти — парсер витрат. З тексту користувача витягни суму та категорію витрати.
Категорії: продукти, кафе, покупки, ком послуги, спорт, канцтовари, транспорт, здоров'я, розваги, інше.
Відповідай РІВНО одним рядком у форматі: <число>, <категорія>
Без пояснень, без markdown. Приклад: 250, продукти`

	structuredSystemPrompt = `Ти — парсер витрат. З тексту користувача витягни суму та категорію витрати.
Категорії: продукти, кафе, покупки, ком послуги, спорт, канцтовари, транспорт, здоров'я, розваги, інше.
Відповідай ТІЛЬКИ валідним JSON обʼєктом такої форми:
{"amount": <число або null>, "category": "<категорія>"}
Починай відповідь одразу з { і закінчуй }. Без пояснень, без markdown.`
)

// llmBackend implements Backend against an OpenAI-compatible
// chat-completions endpoint.
type llmBackend struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newLLMBackend creates a chat-completions extraction backend.
func newLLMBackend(cfg Config) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extraction API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 150
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &llmBackend{
		apiKey:      cfg.APIKey,
		model:       modelName,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Extract asks the service for the plain "<number>, <category>" shape
// first, then retries with a structured JSON request when the reply does
// not parse. A transport failure on either call is returned as-is; two
// unparsable replies surface ErrUnparsableReply so the caller can apply
// the rule fallback.
func (b *llmBackend) Extract(ctx context.Context, text string) (model.Draft, error) {
	reply, err := b.complete(ctx, plainSystemPrompt, text)
	if err != nil {
		return model.Draft{}, err
	}

	if draft, ok := parsePlainReply(reply, text); ok {
		return draft, nil
	}

	reply, err = b.complete(ctx, structuredSystemPrompt, text)
	if err != nil {
		return model.Draft{}, err
	}

	if draft, ok := parseStructuredReply(reply, text); ok {
		return draft, nil
	}

	return model.Draft{}, fmt.Errorf("%w: %q", ErrUnparsableReply, reply)
}

// complete performs one chat-completions call and returns the raw
// assistant message content.
func (b *llmBackend) complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	requestBody := map[string]any{
		"model": b.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userText},
		},
		"temperature": b.temperature,
		"max_tokens":  b.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

// chatCompletionResponse is the OpenAI-compatible API response structure.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}
