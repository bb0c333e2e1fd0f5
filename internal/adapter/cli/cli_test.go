package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techn4r/ai-code-reviewer/internal/adapter/store/sqlite"
	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

type fakeReviewer struct {
	fileResult  domain.ReviewResult
	diffResults []domain.ReviewResult
	err         error
	lastFile    string
	lastDiff    string
	lastRepo    string
	lastBase    string
	lastTarget  string
}

func (f *fakeReviewer) ReviewFile(_ context.Context, path string) (domain.ReviewResult, error) {
	f.lastFile = path
	return f.fileResult, f.err
}

func (f *fakeReviewer) ReviewDiff(_ context.Context, diffText string, _ map[string]string) ([]domain.ReviewResult, error) {
	f.lastDiff = diffText
	return f.diffResults, f.err
}

func (f *fakeReviewer) ReviewStaged(_ context.Context, repoPath string) ([]domain.ReviewResult, error) {
	f.lastRepo = repoPath
	return f.diffResults, f.err
}

func (f *fakeReviewer) ReviewRef(_ context.Context, repoPath, baseRef, targetRef string) ([]domain.ReviewResult, error) {
	f.lastRepo = repoPath
	f.lastBase = baseRef
	f.lastTarget = targetRef
	return f.diffResults, f.err
}

func sampleResult() domain.ReviewResult {
	issue := domain.NewIssue(domain.IssueInput{
		Type:     "bug",
		Severity: "high",
		Line:     3,
		Message:  "possible nil dereference",
	})
	return domain.ReviewResult{
		FilePath: "main.go",
		Language: "go",
		Issues:   []domain.Issue{issue},
		Summary:  domain.SummarizeIssues([]domain.Issue{issue}),
	}
}

type cliHarness struct {
	reviewer *fakeReviewer
	opts     ReviewerOptions
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	deps     Dependencies
}

func newHarness() *cliHarness {
	h := &cliHarness{
		reviewer: &fakeReviewer{},
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
	}
	h.deps = Dependencies{
		NewReviewer: func(opts ReviewerOptions) (Reviewer, error) {
			h.opts = opts
			return h.reviewer, nil
		},
		Args:    Arguments{OutWriter: h.out, ErrWriter: h.errOut},
		Version: "v1.2.3",
	}
	return h
}

func (h *cliHarness) run(args ...string) error {
	root := NewRootCommand(h.deps)
	root.SetArgs(args)
	return root.Execute()
}

func TestVersionFlag(t *testing.T) {
	h := newHarness()
	err := h.run("--version")
	assert.ErrorIs(t, err, ErrVersionRequested)
	assert.Contains(t, h.out.String(), "v1.2.3")
}

func TestReviewCommand(t *testing.T) {
	h := newHarness()
	h.reviewer.fileResult = sampleResult()

	err := h.run("review", "main.go", "--provider", "anthropic", "--model", "claude-3-5-sonnet-20241022", "--mode", "deep")
	require.NoError(t, err)

	assert.Equal(t, "main.go", h.reviewer.lastFile)
	assert.Equal(t, "anthropic", h.opts.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", h.opts.Model)
	assert.Equal(t, "deep", h.opts.Mode)

	out := h.out.String()
	assert.Contains(t, out, "Code Review Results")
	assert.Contains(t, out, "possible nil dereference")
	assert.Contains(t, out, "Quality Score")
	assert.NotContains(t, out, "\033[", "colors should be off without a TTY")
}

func TestReviewCommand_JSONOutput(t *testing.T) {
	h := newHarness()
	h.reviewer.fileResult = sampleResult()

	err := h.run("review", "main.go", "--output", "json")
	require.NoError(t, err)

	assert.Contains(t, h.out.String(), `"message": "possible nil dereference"`)
}

func TestReviewCommand_UnknownOutput(t *testing.T) {
	h := newHarness()
	h.reviewer.fileResult = sampleResult()

	err := h.run("review", "main.go", "--output", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestReviewCommand_PropagatesError(t *testing.T) {
	h := newHarness()
	h.reviewer.err = fmt.Errorf("provider openai: rate limit exceeded")

	err := h.run("review", "main.go")
	assert.ErrorContains(t, err, "rate limit exceeded")
}

func TestReviewCommand_Artifacts(t *testing.T) {
	h := newHarness()
	h.reviewer.fileResult = sampleResult()
	dir := t.TempDir()

	err := h.run("review", "main.go", "--artifacts", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, h.errOut.String(), "Reports written to")
}

func TestDiffCommand(t *testing.T) {
	h := newHarness()
	h.reviewer.diffResults = []domain.ReviewResult{sampleResult()}

	patch := filepath.Join(t.TempDir(), "change.patch")
	require.NoError(t, os.WriteFile(patch, []byte("--- a/main.go\n+++ b/main.go\n"), 0o644))

	err := h.run("diff", patch)
	require.NoError(t, err)
	assert.Contains(t, h.reviewer.lastDiff, "+++ b/main.go")
	assert.Contains(t, h.out.String(), "Code Review Results")
}

func TestDiffCommand_MissingFile(t *testing.T) {
	h := newHarness()
	err := h.run("diff", filepath.Join(t.TempDir(), "nope.patch"))
	assert.Error(t, err)
}

func TestDiffCommand_NoChanges(t *testing.T) {
	h := newHarness()

	patch := filepath.Join(t.TempDir(), "empty.patch")
	require.NoError(t, os.WriteFile(patch, []byte("nothing here"), 0o644))

	err := h.run("diff", patch)
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "No reviewable changes")
}

func TestStagedCommand(t *testing.T) {
	h := newHarness()
	h.deps.DefaultRepo = "/repo"
	h.reviewer.diffResults = []domain.ReviewResult{sampleResult()}

	err := h.run("staged")
	require.NoError(t, err)
	assert.Equal(t, "/repo", h.reviewer.lastRepo)
}

func TestStagedCommand_NothingStaged(t *testing.T) {
	h := newHarness()

	err := h.run("staged", "--repo", "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", h.reviewer.lastRepo)
	assert.Contains(t, h.out.String(), "No staged changes")
}

func TestBranchCommand(t *testing.T) {
	h := newHarness()
	h.deps.DefaultRepo = "/repo"
	h.reviewer.diffResults = []domain.ReviewResult{sampleResult()}

	err := h.run("branch", "feature/login", "--base", "develop")
	require.NoError(t, err)

	assert.Equal(t, "/repo", h.reviewer.lastRepo)
	assert.Equal(t, "develop", h.reviewer.lastBase)
	assert.Equal(t, "feature/login", h.reviewer.lastTarget)
	assert.Contains(t, h.out.String(), "Code Review Results")
}

func TestBranchCommand_NoTargetDetectsBranch(t *testing.T) {
	h := newHarness()
	h.reviewer.diffResults = []domain.ReviewResult{sampleResult()}

	err := h.run("branch")
	require.NoError(t, err)
	assert.Equal(t, "", h.reviewer.lastTarget)
	assert.Equal(t, "main", h.reviewer.lastBase)
}

func TestBranchCommand_NoChanges(t *testing.T) {
	h := newHarness()

	err := h.run("branch", "feature/empty")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "No changes between main")
}

type fakeHistory struct {
	runs []sqlite.Run
	docs map[int64]string
	err  error
}

func (f *fakeHistory) ResultJSON(_ context.Context, reviewID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	doc, ok := f.docs[reviewID]
	if !ok {
		return "", fmt.Errorf("review %d not found", reviewID)
	}
	return doc, nil
}

func (f *fakeHistory) RecentRuns(_ context.Context, limit int) ([]sqlite.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness()
	h.deps.History = &fakeHistory{runs: []sqlite.Run{
		{
			ReviewID:     7,
			CreatedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			FilePath:     "pkg/parser.go",
			Language:     "go",
			Provider:     "openai",
			Model:        "gpt-4",
			Mode:         "standard",
			TotalIssues:  2,
			QualityScore: 7.5,
		},
	}}

	err := h.run("history")
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "#7")
	assert.Contains(t, out, "pkg/parser.go")
	assert.Contains(t, out, "score=7.5")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	h := newHarness()
	err := h.run("history")
	assert.ErrorContains(t, err, "history store is disabled")
}

func TestHistoryCommand_Empty(t *testing.T) {
	h := newHarness()
	h.deps.History = &fakeHistory{}

	err := h.run("history")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "No reviews recorded")
}

func TestHistoryCommand_Show(t *testing.T) {
	h := newHarness()
	h.deps.History = &fakeHistory{docs: map[int64]string{
		7: `{"issues":[],"summary":"clean"}`,
	}}

	err := h.run("history", "--show", "7")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), `"summary":"clean"`)
}

func TestHistoryCommand_ShowUnknownID(t *testing.T) {
	h := newHarness()
	h.deps.History = &fakeHistory{}

	err := h.run("history", "--show", "42")
	assert.ErrorContains(t, err, "review 42 not found")
}

func TestServeCommand_NotConfigured(t *testing.T) {
	h := newHarness()
	err := h.run("serve")
	assert.ErrorContains(t, err, "server not configured")
}

func TestServeCommand(t *testing.T) {
	h := newHarness()
	called := false
	h.deps.Serve = func(ctx context.Context) error {
		called = true
		return nil
	}

	err := h.run("serve")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	h := newHarness()
	require.NoError(t, h.run("init"))

	data, err := os.ReadFile(filepath.Join(dir, "acr.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: openai")

	// A second init without --force must refuse to clobber.
	err = h.run("init")
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, h.run("init", "--force"))
}
