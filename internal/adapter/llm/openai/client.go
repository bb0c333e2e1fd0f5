// Package openai implements a review provider backed by the OpenAI
// Chat Completions API.
package openai

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
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 60 * time.Second
)

// Client calls the OpenAI Chat Completions API.
type Client struct {
	apiKey string
	model  string

	baseURL string
	client  *http.Client
	retry   llmhttp.RetryConfig
	logger  llmhttp.Logger
}

var _ review.Provider = (*Client)(nil)

// NewClient creates an OpenAI client for the given model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL overrides the API endpoint (tests, proxies).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetLogger attaches a request logger.
func (c *Client) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Name identifies this provider.
func (c *Client) Name() string { return providerName }

// Complete sends a system+user message pair and returns the assistant
// text. Rate limits and 5xx responses are retried with backoff.
func (c *Client) Complete(ctx context.Context, req review.CompletionRequest) (string, error) {
	body, err := json.Marshal(ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(req.Prompt),
			APIKey:      c.apiKey,
		})
	}

	var parsed ChatCompletionResponse
	var statusCode int
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
		if reqErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: reqErr.Error(), Provider: providerName}
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, doErr := c.client.Do(httpReq)
		if doErr != nil {
			return llmhttp.NewTransportError(providerName, doErr)
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return llmhttp.NewTransportError(providerName, readErr)
		}

		if resp.StatusCode >= 400 {
			var errResp ErrorResponse
			_ = json.Unmarshal(respBody, &errResp)
			return llmhttp.MapStatus(providerName, resp.StatusCode, errResp.Error.Message)
		}

		if unmarshalErr := json.Unmarshal(respBody, &parsed); unmarshalErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown,
				Message: "parse response: " + unmarshalErr.Error(), Provider: providerName}
		}
		return nil
	}, c.retry)

	if err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:   providerName,
				Model:      c.model,
				Timestamp:  time.Now(),
				Duration:   time.Since(start),
				Error:      err,
				StatusCode: statusCode,
			})
		}
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", &llmhttp.Error{Type: llmhttp.ErrTypeUnknown,
			Message: "no choices in response", Provider: providerName}
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:   providerName,
			Model:      c.model,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			TokensIn:   parsed.Usage.PromptTokens,
			TokensOut:  parsed.Usage.CompletionTokens,
			StatusCode: statusCode,
		})
	}

	return parsed.Choices[0].Message.Content, nil
}
