package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jsonout "github.com/techn4r/ai-code-reviewer/internal/adapter/output/json"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/output/markdown"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/output/terminal"
	"github.com/techn4r/ai-code-reviewer/internal/domain"
)

// reviewFlags are shared by every command that runs a review.
type reviewFlags struct {
	provider  string
	model     string
	mode      string
	output    string
	noColor   bool
	artifacts string
}

func (f *reviewFlags) register(cmd *cobra.Command, deps Dependencies) {
	defaultFormat := deps.DefaultFormat
	if defaultFormat == "" {
		defaultFormat = "text"
	}

	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider override (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name override")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Review mode: quick, standard, or deep")
	cmd.Flags().StringVar(&f.output, "output", defaultFormat, "Output format: text or json")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&f.artifacts, "artifacts", deps.OutputDir, "Directory to also write Markdown and JSON reports into (empty disables)")
}

func reviewCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := deps.NewReviewer(ReviewerOptions{
				Provider: flags.provider,
				Model:    flags.model,
				Mode:     flags.mode,
			})
			if err != nil {
				return err
			}

			result, err := reviewer.ReviewFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emitResults(cmd, deps, flags, args[0], []domain.ReviewResult{result})
		},
	}

	flags.register(cmd, deps)
	return cmd
}

func diffCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "diff <patchfile>",
		Short: "Review the changes in a unified diff file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			reviewer, err := deps.NewReviewer(ReviewerOptions{
				Provider: flags.provider,
				Model:    flags.model,
				Mode:     flags.mode,
			})
			if err != nil {
				return err
			}

			results, err := reviewer.ReviewDiff(cmd.Context(), string(data), nil)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No reviewable changes found in diff.")
				return nil
			}
			return emitResults(cmd, deps, flags, args[0], results)
		},
	}

	flags.register(cmd, deps)
	return cmd
}

func stagedCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags
	var repo string

	cmd := &cobra.Command{
		Use:   "staged",
		Short: "Review the changes staged in the git index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewer, err := deps.NewReviewer(ReviewerOptions{
				Provider: flags.provider,
				Model:    flags.model,
				Mode:     flags.mode,
			})
			if err != nil {
				return err
			}

			results, err := reviewer.ReviewStaged(cmd.Context(), repo)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No staged changes to review.")
				return nil
			}
			return emitResults(cmd, deps, flags, "staged", results)
		},
	}

	flags.register(cmd, deps)
	cmd.Flags().StringVar(&repo, "repo", deps.DefaultRepo, "Path to the git repository")
	return cmd
}

func branchCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags
	var repo string
	var baseRef string

	cmd := &cobra.Command{
		Use:   "branch [target]",
		Short: "Review a branch against a base reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var targetRef string
			if len(args) > 0 {
				targetRef = args[0]
			}

			reviewer, err := deps.NewReviewer(ReviewerOptions{
				Provider: flags.provider,
				Model:    flags.model,
				Mode:     flags.mode,
			})
			if err != nil {
				return err
			}

			results, err := reviewer.ReviewRef(cmd.Context(), repo, baseRef, targetRef)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No changes between %s and the target branch.\n", baseRef)
				return nil
			}

			source := targetRef
			if source == "" {
				source = "branch"
			}
			return emitResults(cmd, deps, flags, source, results)
		},
	}

	flags.register(cmd, deps)
	cmd.Flags().StringVar(&repo, "repo", deps.DefaultRepo, "Path to the git repository")
	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	return cmd
}

func serveCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP review API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Serve == nil {
				return fmt.Errorf("server not configured")
			}
			return deps.Serve(cmd.Context())
		},
	}
}

func historyCommand(deps Dependencies) *cobra.Command {
	var (
		limit  int
		showID int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent reviews from the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.History == nil {
				return fmt.Errorf("review history store is disabled")
			}

			if showID != 0 {
				doc, err := deps.History.ResultJSON(cmd.Context(), showID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), doc)
				return nil
			}

			runs, err := deps.History.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No reviews recorded yet.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, run := range runs {
				file := run.FilePath
				if file == "" {
					file = "(snippet)"
				}
				_, _ = fmt.Fprintf(out, "#%d  %s  %s [%s]  %s/%s  issues=%d  score=%.1f\n",
					run.ReviewID,
					run.CreatedAt.Format(time.DateTime),
					file,
					run.Language,
					run.Provider,
					run.Model,
					run.TotalIssues,
					run.QualityScore,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reviews to list")
	cmd.Flags().Int64Var(&showID, "show", 0, "Print the full stored result for a review ID")
	return cmd
}

const starterConfig = `model:
  provider: openai
  name: gpt-4
  temperature: 0.1
  maxTokens: 4096

review:
  mode: standard
  severityThreshold: low
  maxComments: 20
  includePositive: true
  contextLines: 10

providers:
  openai:
    apiKey: ${OPENAI_API_KEY}
  anthropic:
    apiKey: ${ANTHROPIC_API_KEY}
  ollama:
    baseURL: http://localhost:11434

output:
  directory: out
  format: terminal

store:
  enabled: true
`

func initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter acr.yaml config to the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const path = "acr.yaml"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// emitResults prints results in the requested format and optionally
// writes report artifacts alongside.
func emitResults(cmd *cobra.Command, deps Dependencies, flags reviewFlags, source string, results []domain.ReviewResult) error {
	out := cmd.OutOrStdout()

	switch flags.output {
	case "json":
		data, err := jsonout.Render(results)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, string(data))
	case "text", "":
		colors := deps.ColorOutput && !flags.noColor
		_, _ = fmt.Fprint(out, terminal.RenderAll(results, colors))
	default:
		return fmt.Errorf("unknown output format %q", flags.output)
	}

	if flags.artifacts != "" {
		now := func() string { return time.Now().Format("20060102_150405") }

		mdPath, err := markdown.NewWriter(now).Write(cmd.Context(), markdown.Artifact{
			OutputDir: flags.artifacts,
			Source:    source,
			Results:   results,
		})
		if err != nil {
			return err
		}

		jsonPath, err := jsonout.NewWriter(now).Write(cmd.Context(), jsonout.Artifact{
			OutputDir: flags.artifacts,
			Source:    source,
			Results:   results,
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Reports written to %s and %s\n", mdPath, jsonPath)
	}

	return nil
}
