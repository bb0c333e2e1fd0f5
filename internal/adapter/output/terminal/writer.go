// Package terminal renders review results for interactive console
// output, with ANSI colors keyed to issue severity.
package terminal

import (
	"fmt"
	"strings"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

const (
	reset     = "\033[0m"
	separator = "──────────────────────────────────────────────────"
)

// Render formats a single review result. Colors are applied only when
// requested, so piped output stays clean.
func Render(result domain.ReviewResult, colors bool) string {
	var b strings.Builder

	b.WriteString("Code Review Results\n")
	b.WriteString(separator + "\n\n")

	if result.FilePath != "" {
		fmt.Fprintf(&b, "File: %s (%s)\n\n", result.FilePath, result.Language)
	}

	if result.Summary.RawFeedback != "" {
		b.WriteString(result.Summary.RawFeedback)
		b.WriteString("\n\n")
	} else if len(result.Issues) == 0 {
		b.WriteString("No issues found.\n\n")
	} else {
		for _, issue := range result.Issues {
			b.WriteString(formatIssue(issue, colors))
			b.WriteString("\n\n")
		}
	}

	if len(result.PositiveFeedback) > 0 {
		b.WriteString("Positive feedback:\n")
		for _, fb := range result.PositiveFeedback {
			fmt.Fprintf(&b, "  • %s\n", fb)
		}
		b.WriteString("\n")
	}

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Summary: %d bugs, %d security, %d style | Quality Score: %.1f/10\n",
		result.Summary.Bugs,
		result.Summary.SecurityIssues,
		result.Summary.StyleIssues,
		result.Summary.QualityScore,
	)

	return b.String()
}

// RenderAll formats multiple results separated by blank lines.
func RenderAll(results []domain.ReviewResult, colors bool) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, Render(r, colors))
	}
	return strings.Join(parts, "\n")
}

func formatIssue(issue domain.Issue, colors bool) string {
	var color, end string
	if colors {
		color = issue.Severity.Color()
		end = reset
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s (Line %d)%s\n",
		color, strings.ToUpper(string(issue.Severity)), strings.ToUpper(string(issue.Type)), issue.Line, end)
	fmt.Fprintf(&b, "   %s", issue.Message)

	if issue.Suggestion != "" {
		fmt.Fprintf(&b, "\n   Suggestion: %s", issue.Suggestion)
	}
	if issue.CodeSuggestion != "" {
		fmt.Fprintf(&b, "\n   ```\n   %s\n   ```", issue.CodeSuggestion)
	}
	return b.String()
}
