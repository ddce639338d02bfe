// Package ai generates profile text suggestions through a completions provider.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/config"
)

const temperature = 0.7

// Client calls {base}/completions.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg config.AIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), apiKey: cfg.APIKey, model: cfg.Model, http: httpClient}
}

type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Complete returns the generated text for prompt.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.baseURL == "" || c.apiKey == "" {
		return "", apperr.New(apperr.ErrUpstream, "AI service not configured")
	}
	payload, err := json.Marshal(completionRequest{Model: c.model, Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "AI service request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperr.Wrap(apperr.ErrUpstream, "AI service error",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "AI service returned an unreadable response", err)
	}
	return strings.TrimSpace(out.Text), nil
}
