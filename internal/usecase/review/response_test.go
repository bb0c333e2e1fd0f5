package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

const validPayload = `{
	"issues": [
		{"type": "bug", "severity": "high", "line": 3, "message": "off-by-one in loop bound", "suggestion": "use <= instead of <"},
		{"type": "style", "severity": "low", "line": 7, "message": "inconsistent naming"}
	],
	"positive_feedback": ["clear function decomposition"],
	"summary": "mostly solid"
}`

func TestDecodeResult_FencedJSON(t *testing.T) {
	response := "Here is my review:\n```json\n" + validPayload + "\n```\nHope that helps."

	result := DecodeResult(response, "code", "go")
	assert.Len(t, result.Issues, 2)
	assert.Equal(t, domain.IssueBug, result.Issues[0].Type)
	assert.Equal(t, domain.SeverityHigh, result.Issues[0].Severity)
	assert.Equal(t, 3, result.Issues[0].Line)
	assert.Equal(t, []string{"clear function decomposition"}, result.PositiveFeedback)
	assert.Empty(t, result.Summary.RawFeedback)
	// 10 - (2 + 0.5)
	assert.Equal(t, 7.5, result.Summary.QualityScore)
}

func TestDecodeResult_BareJSON(t *testing.T) {
	result := DecodeResult(validPayload, "code", "python")
	assert.Len(t, result.Issues, 2)
	assert.Equal(t, "python", result.Language)
}

func TestDecodeResult_UnparseableKeepsRawFeedback(t *testing.T) {
	response := "The code looks fine to me, nothing to report."

	result := DecodeResult(response, "code", "go")
	assert.Empty(t, result.Issues)
	assert.Equal(t, response, result.Summary.RawFeedback)
	assert.Equal(t, 5.0, result.Summary.QualityScore)
}

func TestDecodeResult_MalformedFenceFallsThrough(t *testing.T) {
	response := "```json\n{not valid json}\n```"

	result := DecodeResult(response, "code", "go")
	assert.Empty(t, result.Issues)
	assert.Equal(t, response, result.Summary.RawFeedback)
}

func TestDecodeResult_IssueDefaults(t *testing.T) {
	response := `{"issues": [{"message": "something", "line": 0, "type": "mystery", "severity": "unheard"}]}`

	result := DecodeResult(response, "code", "go")
	assert.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, domain.IssueBug, issue.Type)
	assert.Equal(t, domain.SeverityMedium, issue.Severity)
	assert.Equal(t, 1, issue.Line)
	assert.NotEmpty(t, issue.ID)
}
