// Package static provides a canned review provider for dry runs and
// tests. It never makes network calls.
package static

import (
	"context"

	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

const defaultResponse = `{
    "issues": [],
    "positive_feedback": ["No issues detected by the static provider."],
    "summary": "Dry run: no analysis performed."
}`

// Provider returns a fixed response for every completion.
type Provider struct {
	response string
}

var _ review.Provider = (*Provider)(nil)

// NewProvider creates a static provider. An empty response uses a
// clean-review default.
func NewProvider(response string) *Provider {
	if response == "" {
		response = defaultResponse
	}
	return &Provider{response: response}
}

// Name identifies this provider.
func (p *Provider) Name() string { return "static" }

// Complete returns the canned response, honoring cancellation.
func (p *Provider) Complete(ctx context.Context, _ review.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.response, nil
}
