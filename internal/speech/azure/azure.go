package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
)

const DefaultLanguage = "en-IN"

// Client calls the Azure Speech short-audio REST API.
type Client struct {
	Key      string
	Region   string
	Language string
	BaseURL  string
	http     *http.Client
}

func New(key, region, language string) *Client {
	if language == "" {
		language = DefaultLanguage
	}
	return &Client{
		Key:      key,
		Region:   region,
		Language: language,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) endpoint() string {
	base := c.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.stt.speech.microsoft.com", c.Region)
	}
	q := url.Values{"language": {c.Language}, "format": {"simple"}}
	return strings.TrimRight(base, "/") + "/speech/recognition/conversation/cognitiveservices/v1?" + q.Encode()
}

type recognitionResult struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
}

func (c *Client) Transcribe(ctx context.Context, audio speech.Audio) (string, error) {
	if c.Key == "" || (c.Region == "" && c.BaseURL == "") {
		return "", errors.New("azure: speech key and region are required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(speech.EncodeWAV(audio)))
	if err != nil {
		return "", fmt.Errorf("azure: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)
	req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", audio.SampleRate))
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("azure: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out recognitionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("azure: %w", err)
	}
	switch out.RecognitionStatus {
	case "Success":
		if strings.TrimSpace(out.DisplayText) == "" {
			return "", speech.ErrNoSpeech
		}
		return out.DisplayText, nil
	case "NoMatch", "InitialSilenceTimeout", "BabbleTimeout":
		return "", speech.ErrNoSpeech
	}
	return "", fmt.Errorf("azure: recognition status %s", out.RecognitionStatus)
}
