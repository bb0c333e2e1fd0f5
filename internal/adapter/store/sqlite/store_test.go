package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveResultAndRecentRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, file := range []string{"a.go", "b.py", "c.rs"} {
		require.NoError(t, s.SaveResult(ctx, review.StoreRecord{
			FilePath:     file,
			Language:     "go",
			Provider:     "static",
			Model:        "test-model",
			Mode:         "standard",
			TotalIssues:  i,
			QualityScore: 10 - float64(i),
			ResultJSON:   `{"issues":[]}`,
		}))
	}

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, "c.rs", runs[0].FilePath)
	assert.Equal(t, "a.go", runs[2].FilePath)
	assert.Equal(t, 2, runs[0].TotalIssues)
	assert.Equal(t, 8.0, runs[0].QualityScore)
	assert.Equal(t, "static", runs[0].Provider)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestRecentRuns_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveResult(ctx, review.StoreRecord{Language: "go", Provider: "p", Model: "m", Mode: "quick"}))
	}

	runs, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Non-positive limit falls back to the default.
	runs, err = s.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestRecentRuns_Empty(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestResultJSON(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, review.StoreRecord{
		Language: "go", Provider: "p", Model: "m", Mode: "deep",
		ResultJSON: `{"issues":[{"line":3}]}`,
	}))

	runs, err := s.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	doc, err := s.ResultJSON(ctx, runs[0].ReviewID)
	require.NoError(t, err)
	assert.Contains(t, doc, `"line":3`)
}

func TestResultJSON_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ResultJSON(context.Background(), 999)
	assert.Error(t, err)
}

func TestNewStore_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(context.Background(), review.StoreRecord{Language: "go", Provider: "p", Model: "m", Mode: "standard"}))
	require.NoError(t, s.Close())

	// Reopen and confirm persistence.
	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
