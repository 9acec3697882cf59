package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
)

const maxRetries = 3

// Client talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, OpenRouter, local gateways).
type Client struct {
	APIKey      string
	BaseURL     string
	http        *http.Client
	backoffFunc func(attempt int) time.Duration
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		APIKey:      apiKey,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 60 * time.Second},
		backoffFunc: defaultBackoff,
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []ai.Message      `json:"messages"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ai.Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) Chat(ctx context.Context, model, system string, messages []ai.Message, opts ai.Options) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("openai: missing OPENAI_API_KEY")
	}
	req := chatRequest{Model: model, Temperature: opts.Temperature, MaxTokens: opts.MaxTokens}
	if system != "" {
		req.Messages = append(req.Messages, ai.Message{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, messages...)
	if opts.JSON {
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Response, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.APIKey)
		r.Header.Set("Content-Type", "application/json")
		return c.http.Do(r)
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func (c *Client) doWithRetry(ctx context.Context, do func(context.Context) (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffFunc(attempt - 1)):
			}
		}

		resp, err := do(ctx)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode/100 == 2 {
			return resp, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if !isRetryable(resp.StatusCode) {
			return nil, lastErr
		}

		// Retry-After adds to the backoff; zero backoff means tests
		if ra := resp.Header.Get("Retry-After"); ra != "" && resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 && c.backoffFunc(0) > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(secs) * time.Second):
				}
			}
		}
	}
	return nil, lastErr
}
