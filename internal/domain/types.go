package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// Severity classifies how urgent an issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity maps a string onto a known severity, defaulting to medium.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s)
	default:
		return SeverityMedium
	}
}

// Rank orders severities from low (0) to critical (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// Weight is the quality-score penalty a single issue of this severity carries.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 0.5
	case SeverityMedium:
		return 1.0
	case SeverityHigh:
		return 2.0
	case SeverityCritical:
		return 3.0
	default:
		return 1.0
	}
}

// Color returns the ANSI escape used when rendering to a terminal.
func (s Severity) Color() string {
	switch s {
	case SeverityLow:
		return "\033[94m"
	case SeverityMedium:
		return "\033[93m"
	case SeverityHigh:
		return "\033[91m"
	case SeverityCritical:
		return "\033[95m"
	default:
		return ""
	}
}

// IssueType categorizes what kind of problem an issue reports.
type IssueType string

const (
	IssueBug             IssueType = "bug"
	IssueSecurity        IssueType = "security"
	IssuePerformance     IssueType = "performance"
	IssueStyle           IssueType = "style"
	IssueMaintainability IssueType = "maintainability"
	IssueDocumentation   IssueType = "documentation"
	IssueBestPractice    IssueType = "best_practice"
	IssueTypeError       IssueType = "type_error"
)

// IssueTypes lists every known issue category in display order.
var IssueTypes = []IssueType{
	IssueBug,
	IssueSecurity,
	IssuePerformance,
	IssueStyle,
	IssueMaintainability,
	IssueDocumentation,
	IssueBestPractice,
	IssueTypeError,
}

// ParseIssueType maps a string onto a known issue type, defaulting to bug.
func ParseIssueType(s string) IssueType {
	for _, t := range IssueTypes {
		if IssueType(s) == t {
			return t
		}
	}
	return IssueBug
}

// Issue is a single problem flagged in reviewed code. Line numbers refer
// to the post-change file.
type Issue struct {
	ID             string    `json:"id,omitempty"`
	Type           IssueType `json:"type"`
	Severity       Severity  `json:"severity"`
	Line           int       `json:"line"`
	EndLine        *int      `json:"end_line,omitempty"`
	Column         *int      `json:"column,omitempty"`
	Message        string    `json:"message"`
	Suggestion     string    `json:"suggestion,omitempty"`
	CodeSuggestion string    `json:"code_suggestion,omitempty"`
	RuleID         string    `json:"rule_id,omitempty"`
}

// IssueInput captures the information required to create an Issue.
type IssueInput struct {
	Type           IssueType
	Severity       Severity
	Line           int
	EndLine        *int
	Column         *int
	Message        string
	Suggestion     string
	CodeSuggestion string
	RuleID         string
}

// NewIssue constructs an Issue with a deterministic ID so repeated runs
// over the same code produce stable identifiers.
func NewIssue(input IssueInput) Issue {
	return Issue{
		ID:             hashIssue(input),
		Type:           input.Type,
		Severity:       input.Severity,
		Line:           input.Line,
		EndLine:        input.EndLine,
		Column:         input.Column,
		Message:        input.Message,
		Suggestion:     input.Suggestion,
		CodeSuggestion: input.CodeSuggestion,
		RuleID:         input.RuleID,
	}
}

func hashIssue(input IssueInput) string {
	payload := fmt.Sprintf("%s|%s|%d|%s|%s",
		input.Type,
		input.Severity,
		input.Line,
		input.Message,
		input.RuleID,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Summary aggregates the issues of one review.
type Summary struct {
	TotalIssues       int     `json:"total_issues"`
	Bugs              int     `json:"bugs"`
	SecurityIssues    int     `json:"security_issues"`
	PerformanceIssues int     `json:"performance_issues"`
	StyleIssues       int     `json:"style_issues"`
	QualityScore      float64 `json:"quality_score"`
	RawFeedback       string  `json:"raw_feedback,omitempty"`
}

// SummarizeIssues derives counts and a 0-10 quality score. Each issue
// subtracts its severity weight from a perfect 10; the score is clamped
// and rounded to one decimal.
func SummarizeIssues(issues []Issue) Summary {
	s := Summary{TotalIssues: len(issues)}

	penalty := 0.0
	for _, issue := range issues {
		penalty += issue.Severity.Weight()
		switch issue.Type {
		case IssueBug:
			s.Bugs++
		case IssueSecurity:
			s.SecurityIssues++
		case IssuePerformance:
			s.PerformanceIssues++
		case IssueStyle:
			s.StyleIssues++
		}
	}

	score := 10 - penalty
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	s.QualityScore = math.Round(score*10) / 10

	return s
}

// ReviewResult is the complete outcome of reviewing one piece of code.
type ReviewResult struct {
	Code             string   `json:"-"`
	Language         string   `json:"language"`
	FilePath         string   `json:"file_path,omitempty"`
	Issues           []Issue  `json:"issues"`
	Summary          Summary  `json:"summary"`
	PositiveFeedback []string `json:"positive_feedback,omitempty"`
}

// FilterBySeverity returns issues at or above the given severity.
func (r ReviewResult) FilterBySeverity(min Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity.Rank() >= min.Rank() {
			out = append(out, issue)
		}
	}
	return out
}

// FilterByType returns issues of exactly the given type.
func (r ReviewResult) FilterByType(t IssueType) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}
