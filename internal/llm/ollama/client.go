package ollama

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

// Client implements llm.Client against a local Ollama generation endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient constructs an Ollama client. Configuration is validated per call
// so an unconfigured client fails fast without a network attempt.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Generate sends a single non-streaming generation request.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("%w: OLLAMA_BASE_URL is required", llm.ErrNotConfigured)
	}

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	if opts.JSON {
		reqBody.Format = "json"
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
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

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if parsed.Response == nil {
		return "", fmt.Errorf("%w: missing response field", llm.ErrMalformedResponse)
	}
	return *parsed.Response, nil
}

var _ llm.Client = (*Client)(nil)
