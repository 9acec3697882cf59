package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/ai"
)

type Client struct {
	Host string
	http *http.Client
}

func New(host string) *Client {
	if host == "" {
		host = "http://localhost:11434"
	}
	return &Client{Host: strings.TrimRight(host, "/"), http: &http.Client{Timeout: 120 * time.Second}}
}

func (c *Client) Chat(ctx context.Context, model, system string, messages []ai.Message, opts ai.Options) (string, error) {
	msgs := make([]ai.Message, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, ai.Message{Role: "system", Content: system})
	}
	msgs = append(msgs, messages...)
	payload := map[string]any{
		"model":    model,
		"messages": msgs,
		"stream":   false,
	}
	if opts.JSON {
		payload["format"] = "json"
	}
	if opts.Temperature > 0 {
		payload["options"] = map[string]any{"temperature": opts.Temperature}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ollama: status %d", resp.StatusCode)
	}
	var out struct {
		Message ai.Message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return strings.TrimSpace(out.Message.Content), nil
}
