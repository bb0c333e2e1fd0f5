// Package ollama implements a review provider backed by a local
// Ollama server's Generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	llmhttp "github.com/techn4r/ai-code-reviewer/internal/adapter/llm/http"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

const (
	providerName = "ollama"

	// DefaultBaseURL is where a locally running Ollama listens.
	DefaultBaseURL = "http://localhost:11434"

	// Local models can be slow, especially on first load.
	defaultTimeout = 120 * time.Second
)

// GenerateRequest is a request to the Generate API.
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse is the non-streaming Generate API response.
type GenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Client calls a local Ollama server.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	retry   llmhttp.RetryConfig
}

var _ review.Provider = (*Client)(nil)

// NewClient creates an Ollama client. An empty baseURL uses the local
// default.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
		retry: llmhttp.RetryConfig{
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     8 * time.Second,
			Multiplier:     2.0,
		},
	}
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Name identifies this provider.
func (c *Client) Name() string { return providerName }

// Complete generates a non-streamed completion from the local model.
func (c *Client) Complete(ctx context.Context, req review.CompletionRequest) (string, error) {
	genReq := GenerateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}
	if req.Temperature > 0 {
		genReq.Options = map[string]interface{}{"temperature": req.Temperature}
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var parsed GenerateResponse
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/generate", bytes.NewReader(body))
		if reqErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: reqErr.Error(), Provider: providerName}
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, doErr := c.client.Do(httpReq)
		if doErr != nil {
			return llmhttp.NewTransportError(providerName, doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return llmhttp.NewTransportError(providerName, readErr)
		}

		if resp.StatusCode >= 400 {
			return llmhttp.MapStatus(providerName, resp.StatusCode, string(respBody))
		}

		if unmarshalErr := json.Unmarshal(respBody, &parsed); unmarshalErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown,
				Message: "parse response: " + unmarshalErr.Error(), Provider: providerName}
		}
		return nil
	}, c.retry)
	if err != nil {
		return "", err
	}

	return parsed.Response, nil
}
