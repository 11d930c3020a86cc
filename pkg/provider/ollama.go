package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel   = "llama3"
	defaultTimeout = 60 * time.Second
)

// ErrEmptyResponse is returned when the model answered with no content.
var ErrEmptyResponse = errors.New("model returned empty response")

// Ollama talks to a local or remote Ollama server over its chat API.
type Ollama struct {
	baseURL string
	models  []string
	client  *http.Client
	logger  *slog.Logger
}

// OllamaOption customizes an Ollama provider.
type OllamaOption func(*Ollama)

// WithModels sets the model preference order. The first model is primary;
// the rest are fallbacks tried in order when a request fails.
func WithModels(models ...string) OllamaOption {
	return func(o *Ollama) {
		if len(models) > 0 {
			o.models = models
		}
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) OllamaOption {
	return func(o *Ollama) {
		o.client = client
	}
}

// NewOllama creates a provider for the given base URL (e.g.
// "http://localhost:11434").
func NewOllama(baseURL string, logger *slog.Logger, opts ...OllamaOption) *Ollama {
	ollama := &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		models:  []string{defaultModel},
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger.With("module", "ollama_provider"),
	}

	for _, opt := range opts {
		opt(ollama)
	}

	return ollama
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate sends the prompt to each configured model in order until one
// succeeds. The last error is returned when all models fail.
func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var lastErr error

	for _, model := range o.models {
		content, err := o.chat(ctx, model, prompt, opts)
		if err == nil {
			return content, nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		o.logger.WarnContext(ctx, "Model request failed, trying fallback",
			"model", model, "error", err)

		lastErr = err
	}

	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (o *Ollama) chat(ctx context.Context, model, prompt string, opts Options) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.System})
	}

	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	options := make(map[string]any)
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}

	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	payload, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", fmt.Errorf("chat request returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse

	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	return content, nil
}

// HealthCheck probes the model listing endpoint.
func (o *Ollama) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("provider unhealthy: status %d", resp.StatusCode)
	}

	return nil
}
