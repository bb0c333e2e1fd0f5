package json

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(func() string { return "20260826T120000" })

	issues := []domain.Issue{{Type: domain.IssueSecurity, Severity: domain.SeverityCritical, Line: 4, Message: "hardcoded secret"}}
	path, err := w.Write(context.Background(), Artifact{
		OutputDir: dir,
		Source:    "staged",
		Results: []domain.ReviewResult{{
			FilePath: "config.go",
			Language: "go",
			Issues:   issues,
			Summary:  domain.SummarizeIssues(issues),
		}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []domain.ReviewResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "config.go", decoded[0].FilePath)
	require.Len(t, decoded[0].Issues, 1)
	assert.Equal(t, domain.IssueSecurity, decoded[0].Issues[0].Type)
	assert.Equal(t, 7.0, decoded[0].Summary.QualityScore)
}

func TestRender_Empty(t *testing.T) {
	data, err := Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
