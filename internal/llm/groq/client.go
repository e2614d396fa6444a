package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docquery-backend/internal/llm"
)

// Client implements llm.Client using an OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient constructs a Groq client. Configuration is validated per call
// so an unconfigured client fails fast without a network attempt.
func NewClient(apiKey, endpoint, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   strings.TrimSpace(endpoint),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a single chat completion request and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: GROQ_API_KEY is required", llm.ErrNotConfigured)
	}
	if c.endpoint == "" {
		return "", fmt.Errorf("%w: GROQ_ENDPOINT is required", llm.ErrNotConfigured)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	}
	if opts.JSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", llm.TransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &llm.BackendError{Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: missing choices", llm.ErrMalformedResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ llm.Client = (*Client)(nil)
