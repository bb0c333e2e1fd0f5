package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/techn4r/ai-code-reviewer/internal/adapter/llm/http"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

func fastClient(url string) *Client {
	c := NewClient(url, "codellama")
	c.retry = llmhttp.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
	return c
}

func TestComplete(t *testing.T) {
	var gotReq GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(GenerateResponse{
			Model:    "codellama",
			Response: `{"issues": []}`,
			Done:     true,
		})
	}))
	defer server.Close()

	text, err := fastClient(server.URL).Complete(context.Background(), review.CompletionRequest{
		System:      "sys",
		Prompt:      "review",
		Temperature: 0.2,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"issues": []}`, text)
	assert.Equal(t, "codellama", gotReq.Model)
	assert.Equal(t, "sys", gotReq.System)
	assert.False(t, gotReq.Stream)
	assert.Equal(t, 0.2, gotReq.Options["temperature"])
}

func TestComplete_ServerErrorRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "model loading", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(GenerateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	text, err := fastClient(server.URL).Complete(context.Background(), review.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", "llama3")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
