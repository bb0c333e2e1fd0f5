// Package git implements the reviewer's GitEngine port. Repository
// inspection goes through go-git; diff generation shells out to the
// git binary, whose unified output is what the diff parser expects.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

// Engine runs git operations against a repository directory.
type Engine struct{}

var _ review.GitEngine = (*Engine)(nil)

// NewEngine constructs a git engine.
func NewEngine() *Engine {
	return &Engine{}
}

// StagedDiff returns the unified diff of the index against HEAD.
// Empty output means nothing is staged.
func (e *Engine) StagedDiff(ctx context.Context, repoPath string) (string, error) {
	return runGitCommand(ctx, repoPath, "diff", "--cached")
}

// RefDiff returns the unified diff between two refs (branches,
// tags, or commits), computed with go-git.
func (e *Engine) RefDiff(ctx context.Context, repoPath, baseRef, targetRef string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(repoPath, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return "", fmt.Errorf("resolve base ref: %w", err)
	}
	targetCommit, err := resolveCommit(repo, targetRef)
	if err != nil {
		return "", fmt.Errorf("resolve target ref: %w", err)
	}

	patch, err := baseCommit.PatchContext(ctx, targetCommit)
	if err != nil {
		return "", fmt.Errorf("compute patch: %w", err)
	}
	return patch.String(), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(_ context.Context, repoPath string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(repoPath, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

// FileAtHead returns a file's contents at HEAD, used to give the
// reviewer surrounding context for diff hunks.
func (e *Engine) FileAtHead(_ context.Context, repoPath, filePath string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(repoPath, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("resolve HEAD commit: %w", err)
	}
	file, err := commit.File(filePath)
	if err != nil {
		return "", fmt.Errorf("file %s at HEAD: %w", filePath, err)
	}
	return file.Contents()
}

// resolveCommit tries the ref as given, then as a local branch, then
// as an origin branch.
func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

func runGitCommand(ctx context.Context, repoDir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %v: %w", args, err)
	}
	return stdout.String(), nil
}
