// Package markdown renders review results into Markdown report files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

type clock func() string

// Artifact encapsulates the Markdown generation inputs.
type Artifact struct {
	OutputDir string
	Source    string // what was reviewed: a file path, "staged", a ref pair
	Results   []domain.ReviewResult
}

// Writer renders review results into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk and returns the path.
func (w *Writer) Write(_ context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("review_%s_%s.md", sanitise(artifact.Source), w.now())
	path := filepath.Join(artifact.OutputDir, filename)

	if err := os.WriteFile(path, []byte(Render(artifact.Results)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return path, nil
}

// Render builds the Markdown report for a set of results.
func Render(results []domain.ReviewResult) string {
	var b strings.Builder
	caser := cases.Title(language.English)

	b.WriteString("# Code Review Report\n\n")

	for _, result := range results {
		if result.FilePath != "" {
			b.WriteString(fmt.Sprintf("## %s\n\n", result.FilePath))
		} else {
			b.WriteString("## Review\n\n")
		}

		b.WriteString(fmt.Sprintf("- Language: %s\n", result.Language))
		b.WriteString(fmt.Sprintf("- Issues: %d\n", result.Summary.TotalIssues))
		b.WriteString(fmt.Sprintf("- Quality Score: %.1f/10\n\n", result.Summary.QualityScore))

		if result.Summary.RawFeedback != "" {
			b.WriteString("### Feedback\n\n")
			b.WriteString(result.Summary.RawFeedback)
			b.WriteString("\n\n")
			continue
		}

		if len(result.Issues) == 0 {
			b.WriteString("No issues found.\n\n")
		} else {
			b.WriteString("### Issues\n\n")
			for _, issue := range result.Issues {
				b.WriteString(fmt.Sprintf("#### %s: %s (line %d)\n",
					caser.String(string(issue.Severity)), issue.Message, issue.Line))
				b.WriteString(fmt.Sprintf("- Type: %s\n", issue.Type))
				if issue.Suggestion != "" {
					b.WriteString(fmt.Sprintf("- Suggestion: %s\n", issue.Suggestion))
				}
				if issue.CodeSuggestion != "" {
					b.WriteString("\n```\n")
					b.WriteString(issue.CodeSuggestion)
					b.WriteString("\n```\n")
				}
				b.WriteString("\n")
			}
		}

		if len(result.PositiveFeedback) > 0 {
			b.WriteString("### Positive Feedback\n\n")
			for _, fb := range result.PositiveFeedback {
				b.WriteString(fmt.Sprintf("- %s\n", fb))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
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
