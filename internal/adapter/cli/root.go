// Package cli wires the review use case into a Cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/techn4r/ai-code-reviewer/internal/adapter/store/sqlite"
	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Reviewer is the slice of the review use case the CLI drives.
type Reviewer interface {
	ReviewFile(ctx context.Context, path string) (domain.ReviewResult, error)
	ReviewDiff(ctx context.Context, diffText string, baseContent map[string]string) ([]domain.ReviewResult, error)
	ReviewStaged(ctx context.Context, repoPath string) ([]domain.ReviewResult, error)
	ReviewRef(ctx context.Context, repoPath, baseRef, targetRef string) ([]domain.ReviewResult, error)
}

// ReviewerOptions are per-invocation overrides resolved from flags.
type ReviewerOptions struct {
	Provider string
	Model    string
	Mode     string
}

// History exposes the stored review runs the history command lists.
type History interface {
	RecentRuns(ctx context.Context, limit int) ([]sqlite.Run, error)
	ResultJSON(ctx context.Context, reviewID int64) (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	NewReviewer   func(opts ReviewerOptions) (Reviewer, error)
	History       History                         // optional, for the history command
	Serve         func(ctx context.Context) error // optional, for the serve command
	Args          Arguments
	DefaultRepo   string
	DefaultFormat string // default --output format: text or json
	OutputDir     string // default --artifacts directory; empty disables
	ColorOutput   bool   // whether stdout supports ANSI colors
	Version       string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "acr",
		Short: "AI-powered code review CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps))
	root.AddCommand(diffCommand(deps))
	root.AddCommand(stagedCommand(deps))
	root.AddCommand(branchCommand(deps))
	root.AddCommand(serveCommand(deps))
	root.AddCommand(historyCommand(deps))
	root.AddCommand(initCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}
