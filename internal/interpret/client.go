// Package interpret calls the DeepSeek-compatible chat completion service
// that produces plain-language interpretations of paper content.
//
// A missing credential and an empty service response degrade to fixed
// message text so the job pipeline treats them as content. Transport and
// non-2xx failures are returned as errors: the orchestrator decides whether
// to retry the job.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/ansium/paperdigest/internal/config"
)

const (
	// ContentCap bounds how much extracted content is sent to the service.
	ContentCap = 5000

	truncationNotice = "\n[Note: content was truncated due to length]"

	// NotConfiguredMessage is returned when no API key is set. Callers treat
	// this as a successful completion with degraded content.
	NotConfiguredMessage = "Interpretation service is not configured: no API key is set."

	// NoResultMessage is returned when the service answers 2xx with an
	// empty or malformed body.
	NoResultMessage = "The interpretation service returned no result."
)

// Client produces an interpretation for extracted paper content.
type Client interface {
	Interpret(ctx context.Context, content string) (string, error)
}

// HTTPClient implements Client against a DeepSeek-compatible
// /chat/completions endpoint.
type HTTPClient struct {
	cfg    config.InterpreterConfig
	client *http.Client
}

// NewHTTPClient creates a new interpretation client.
func NewHTTPClient(cfg config.InterpreterConfig) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Interpret sends the content to the interpretation service and returns the
// generated text. An unset API key and an empty service response yield fixed
// placeholder text with a nil error; only transport and non-2xx failures
// return an error.
func (c *HTTPClient) Interpret(ctx context.Context, content string) (string, error) {
	if c.cfg.APIKey == "" {
		return NotConfiguredMessage, nil
	}

	if len(content) > ContentCap {
		content = truncate(content, ContentCap) + truncationNotice
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(content)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal interpretation request: %w", err)
	}

	u := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building interpretation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("interpretation request failed", "error", err)
		return "", fmt.Errorf("interpretation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("interpretation request rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("interpretation request failed: status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		slog.Warn("interpretation response malformed", "error", err)
		return NoResultMessage, nil
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return NoResultMessage, nil
	}

	return chatResp.Choices[0].Message.Content, nil
}

// --- chat completion wire types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// truncate shortens s to maxBytes without splitting UTF-8 runes.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
