package review

import (
	"encoding/json"
	"regexp"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// responsePayload mirrors the JSON schema the system prompt asks for.
type responsePayload struct {
	Issues           []issuePayload `json:"issues"`
	PositiveFeedback []string       `json:"positive_feedback"`
	Summary          string         `json:"summary"`
}

type issuePayload struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Line           int    `json:"line"`
	EndLine        *int   `json:"end_line"`
	Column         *int   `json:"column"`
	Message        string `json:"message"`
	Suggestion     string `json:"suggestion"`
	CodeSuggestion string `json:"code_suggestion"`
	RuleID         string `json:"rule_id"`
}

// DecodeResult turns a raw provider response into a ReviewResult.
// It tries a fenced ```json block first, then the whole response as
// JSON. Responses that parse as neither are preserved verbatim as raw
// feedback with a neutral score.
func DecodeResult(response, code, lang string) domain.ReviewResult {
	if m := jsonFencePattern.FindStringSubmatch(response); m != nil {
		if result, ok := decodePayload(m[1], code, lang); ok {
			return result
		}
	}

	if result, ok := decodePayload(response, code, lang); ok {
		return result
	}

	return domain.ReviewResult{
		Code:     code,
		Language: lang,
		Summary: domain.Summary{
			QualityScore: 5.0,
			RawFeedback:  response,
		},
	}
}

func decodePayload(text, code, lang string) (domain.ReviewResult, bool) {
	var payload responsePayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.ReviewResult{}, false
	}

	issues := make([]domain.Issue, 0, len(payload.Issues))
	for _, p := range payload.Issues {
		line := p.Line
		if line < 1 {
			line = 1
		}
		issues = append(issues, domain.NewIssue(domain.IssueInput{
			Type:           domain.ParseIssueType(p.Type),
			Severity:       domain.ParseSeverity(p.Severity),
			Line:           line,
			EndLine:        p.EndLine,
			Column:         p.Column,
			Message:        p.Message,
			Suggestion:     p.Suggestion,
			CodeSuggestion: p.CodeSuggestion,
			RuleID:         p.RuleID,
		}))
	}

	return domain.ReviewResult{
		Code:             code,
		Language:         lang,
		Issues:           issues,
		Summary:          domain.SummarizeIssues(issues),
		PositiveFeedback: payload.PositiveFeedback,
	}, true
}

// encodeResult serializes a result for persistence.
func encodeResult(result domain.ReviewResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
