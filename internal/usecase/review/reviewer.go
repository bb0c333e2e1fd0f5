// Package review implements the code review use case: assembling
// prompts from source code or parsed diffs, calling an LLM provider,
// and decoding its feedback into structured results.
package review

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/techn4r/ai-code-reviewer/internal/diff"
	"github.com/techn4r/ai-code-reviewer/internal/domain"
	"github.com/techn4r/ai-code-reviewer/internal/language"
)

// Mode selects how thorough a review should be.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeStandard Mode = "standard"
	ModeDeep     Mode = "deep"
)

// ParseMode maps a string onto a known mode, defaulting to standard.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeQuick, ModeStandard, ModeDeep:
		return Mode(s)
	default:
		return ModeStandard
	}
}

// CompletionRequest describes one LLM call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider defines the outbound port for LLM completions.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// GitEngine abstracts the git operations the reviewer needs.
type GitEngine interface {
	// StagedDiff returns the unified diff of the index against HEAD.
	StagedDiff(ctx context.Context, repoPath string) (string, error)

	// RefDiff returns the unified diff between two refs.
	RefDiff(ctx context.Context, repoPath, baseRef, targetRef string) (string, error)

	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context, repoPath string) (string, error)

	// FileAtHead returns a file's content at HEAD.
	FileAtHead(ctx context.Context, repoPath, filePath string) (string, error)
}

// Tokenizer estimates prompt sizes so oversized code can be trimmed
// before it reaches the provider.
type Tokenizer interface {
	EstimateTokens(text string) int
}

// Redactor scrubs secrets from prompt text before it is sent to a
// provider.
type Redactor interface {
	Redact(input string) string
}

// Store defines the outbound port for persisting review history.
type Store interface {
	SaveResult(ctx context.Context, rec StoreRecord) error
	Close() error
}

// StoreRecord is one persisted review outcome.
type StoreRecord struct {
	FilePath     string
	Language     string
	Provider     string
	Model        string
	Mode         string
	TotalIssues  int
	QualityScore float64
	ResultJSON   string
}

// Config controls reviewer behavior.
type Config struct {
	Model             string
	Temperature       float64
	MaxTokens         int
	Mode              Mode
	SeverityThreshold domain.Severity
	MaxIssues         int
	IncludePositive   bool
	ContextLines      int
	Rules             map[string]map[string]bool // language -> rule -> enabled
}

// DefaultConfig mirrors the built-in defaults used when no
// configuration file is present.
func DefaultConfig() Config {
	return Config{
		Model:             "gpt-4",
		Temperature:       0.1,
		MaxTokens:         4096,
		Mode:              ModeStandard,
		SeverityThreshold: domain.SeverityLow,
		MaxIssues:         20,
		IncludePositive:   true,
		ContextLines:      10,
	}
}

// Deps captures the reviewer's collaborators. Provider is required;
// the rest are optional.
type Deps struct {
	Provider  Provider
	Git       GitEngine
	Tokenizer Tokenizer
	Redactor  Redactor
	Store     Store
	Logger    Logger
}

// Reviewer runs code reviews against a single LLM provider.
type Reviewer struct {
	cfg     Config
	deps    Deps
	prompts *PromptBuilder
}

// NewReviewer wires a reviewer from config and dependencies.
func NewReviewer(cfg Config, deps Deps) (*Reviewer, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("reviewer requires a provider")
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = 20
	}
	if cfg.ContextLines <= 0 {
		cfg.ContextLines = 10
	}
	return &Reviewer{cfg: cfg, deps: deps, prompts: NewPromptBuilder()}, nil
}

// maxPromptTokens caps prompt size before code gets trimmed. Roughly
// half a typical 32k context window, leaving room for the response.
const maxPromptTokens = 16000

// Review reviews a block of code. Language is detected from the
// filename and content when empty; context is optional surrounding
// code shown to the provider but not reviewed directly.
func (r *Reviewer) Review(ctx context.Context, code, lang, contextText, filename string) (domain.ReviewResult, error) {
	if lang == "" {
		lang = language.Detect(code, filename)
	}

	code = r.fitToBudget(ctx, code)

	prompt := r.prompts.BuildReviewPrompt(PromptInput{
		Code:     code,
		Language: lang,
		Context:  contextText,
		Mode:     r.cfg.Mode,
		Rules:    r.cfg.Rules[lang],
	})

	raw, err := r.complete(ctx, prompt)
	if err != nil {
		return domain.ReviewResult{}, err
	}

	result := DecodeResult(raw, code, lang)
	result.FilePath = filename
	r.finalize(ctx, &result)
	return result, nil
}

// ReviewFile reads a file from disk and reviews its contents.
func (r *Reviewer) ReviewFile(ctx context.Context, path string) (domain.ReviewResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Review(ctx, string(data), "", "", path)
}

// ReviewDiff parses a unified diff and reviews each changed file.
// baseContent optionally maps file paths to their full post-change
// contents, used to give the provider surrounding context.
func (r *Reviewer) ReviewDiff(ctx context.Context, diffText string, baseContent map[string]string) ([]domain.ReviewResult, error) {
	files := diff.Parse(diffText)

	var results []domain.ReviewResult
	for _, fd := range files {
		var fileContext string
		if content, ok := baseContent[fd.Path]; ok {
			fileContext = r.fitToBudget(ctx, ExtractContext(content, fd.Hunks, r.cfg.ContextLines))
		}

		prompt := r.prompts.BuildDiffReviewPrompt(DiffPromptInput{
			FilePath: fd.Path,
			Hunks:    fd.Hunks,
			Context:  fileContext,
			Mode:     r.cfg.Mode,
		})

		raw, err := r.complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", fd.Path, err)
		}

		result := DecodeResult(raw, fd.NewContent(), language.Detect("", fd.Path))
		result.FilePath = fd.Path
		r.finalize(ctx, &result)
		results = append(results, result)
	}
	return results, nil
}

// ReviewStaged reviews whatever is staged in the git index. Returns
// an empty slice when nothing is staged.
func (r *Reviewer) ReviewStaged(ctx context.Context, repoPath string) ([]domain.ReviewResult, error) {
	if r.deps.Git == nil {
		return nil, fmt.Errorf("no git engine configured")
	}

	diffText, err := r.deps.Git.StagedDiff(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}
	return r.ReviewDiff(ctx, diffText, nil)
}

// ReviewRef reviews the changes a target ref introduces over a base
// ref. An empty target falls back to the checked-out branch. Returns
// an empty slice when the refs do not differ.
func (r *Reviewer) ReviewRef(ctx context.Context, repoPath, baseRef, targetRef string) ([]domain.ReviewResult, error) {
	if r.deps.Git == nil {
		return nil, fmt.Errorf("no git engine configured")
	}

	current, err := r.deps.Git.CurrentBranch(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if targetRef == "" {
		targetRef = current
	}

	diffText, err := r.deps.Git.RefDiff(ctx, repoPath, baseRef, targetRef)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}

	// Surrounding context comes from HEAD, which only matches the
	// diff's line numbers when the target is the checked-out branch.
	var baseContent map[string]string
	if targetRef == current {
		baseContent = make(map[string]string)
		for _, fd := range diff.Parse(diffText) {
			if content, err := r.deps.Git.FileAtHead(ctx, repoPath, fd.Path); err == nil {
				baseContent[fd.Path] = content
			}
		}
	}

	return r.ReviewDiff(ctx, diffText, baseContent)
}

func (r *Reviewer) complete(ctx context.Context, prompt string) (string, error) {
	// Redaction runs on the assembled prompt so secrets in code,
	// diffs, and surrounding context are all covered.
	if r.deps.Redactor != nil {
		prompt = r.deps.Redactor.Redact(prompt)
	}

	raw, err := r.deps.Provider.Complete(ctx, CompletionRequest{
		System:      r.prompts.SystemPrompt(),
		Prompt:      prompt,
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", r.deps.Provider.Name(), err)
	}
	return raw, nil
}

// fitToBudget trims code that would blow the prompt token budget.
func (r *Reviewer) fitToBudget(ctx context.Context, code string) string {
	if r.deps.Tokenizer == nil {
		return code
	}

	tokens := r.deps.Tokenizer.EstimateTokens(code)
	if tokens <= maxPromptTokens {
		return code
	}

	// Assume roughly 4 bytes per token when shrinking.
	trimmed := language.Sanitize(code, maxPromptTokens*4)
	if r.deps.Logger != nil {
		r.deps.Logger.LogWarning(ctx, "code trimmed to fit token budget", map[string]interface{}{
			"estimatedTokens": tokens,
			"budget":          maxPromptTokens,
		})
	}
	return trimmed
}

// finalize applies the severity threshold and issue cap, recomputes
// the summary, and persists the result when a store is configured.
func (r *Reviewer) finalize(ctx context.Context, result *domain.ReviewResult) {
	// Unparseable responses keep their neutral summary untouched.
	if result.Summary.RawFeedback == "" {
		issues := result.FilterBySeverity(r.cfg.SeverityThreshold)
		if len(issues) > r.cfg.MaxIssues {
			issues = issues[:r.cfg.MaxIssues]
		}
		result.Issues = issues
		result.Summary = domain.SummarizeIssues(issues)
	}

	if !r.cfg.IncludePositive {
		result.PositiveFeedback = nil
	}

	if r.deps.Store != nil {
		rec := StoreRecord{
			FilePath:     result.FilePath,
			Language:     result.Language,
			Provider:     r.deps.Provider.Name(),
			Model:        r.cfg.Model,
			Mode:         string(r.cfg.Mode),
			TotalIssues:  result.Summary.TotalIssues,
			QualityScore: result.Summary.QualityScore,
		}
		if data, err := encodeResult(*result); err == nil {
			rec.ResultJSON = data
		}
		if err := r.deps.Store.SaveResult(ctx, rec); err != nil && r.deps.Logger != nil {
			r.deps.Logger.LogWarning(ctx, "failed to persist review", map[string]interface{}{
				"error": err.Error(),
				"file":  result.FilePath,
			})
		}
	}
}
