// Package json renders review results into machine-readable reports.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

type clock func() string

// Artifact encapsulates the JSON generation inputs.
type Artifact struct {
	OutputDir string
	Source    string
	Results   []domain.ReviewResult
}

// Writer renders review results into JSON files.
type Writer struct {
	now clock
}

// NewWriter constructs a JSON writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a JSON artifact to disk and returns the path.
func (w *Writer) Write(_ context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("review_%s_%s.json", sanitise(artifact.Source), w.now())
	path := filepath.Join(artifact.OutputDir, filename)

	data, err := Render(artifact.Results)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write json: %w", err)
	}
	return path, nil
}

// Render marshals results with indentation for human inspection.
func Render(results []domain.ReviewResult) ([]byte, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return data, nil
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
