package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/techn4r/ai-code-reviewer/internal/adapter/api"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/cli"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/git"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/llm"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/llm/anthropic"
	llmhttp "github.com/techn4r/ai-code-reviewer/internal/adapter/llm/http"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/llm/ollama"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/llm/openai"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/llm/static"
	"github.com/techn4r/ai-code-reviewer/internal/adapter/store/sqlite"
	"github.com/techn4r/ai-code-reviewer/internal/config"
	"github.com/techn4r/ai-code-reviewer/internal/domain"
	"github.com/techn4r/ai-code-reviewer/internal/redaction"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
	"github.com/techn4r/ai-code-reviewer/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "acr",
		EnvPrefix:   "ACR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := buildLogger(cfg.Logging)
	gitEngine := git.NewEngine()

	var store *sqlite.Store
	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else if store, err = sqlite.NewStore(cfg.Store.Path); err != nil {
			log.Printf("warning: failed to initialize store: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	buildReviewer := func(providerName, modelName string, mode review.Mode) (*review.Reviewer, error) {
		provider, model, err := buildProvider(cfg, providerName, modelName, logger)
		if err != nil {
			return nil, err
		}

		rcfg := review.Config{
			Model:             model,
			Temperature:       cfg.Model.Temperature,
			MaxTokens:         cfg.Model.MaxTokens,
			Mode:              mode,
			SeverityThreshold: domain.ParseSeverity(cfg.Review.SeverityThreshold),
			MaxIssues:         cfg.Review.MaxComments,
			IncludePositive:   cfg.Review.IncludePositive,
			ContextLines:      cfg.Review.ContextLines,
			Rules:             cfg.Rules,
		}

		deps := review.Deps{
			Provider:  provider,
			Git:       gitEngine,
			Tokenizer: llm.Estimator{},
			Logger:    logger,
		}
		if cfg.Review.RedactSecrets {
			deps.Redactor = redaction.NewEngine()
		}
		if store != nil {
			deps.Store = store
		}

		return review.NewReviewer(rcfg, deps)
	}

	serve := func(ctx context.Context) error {
		server := api.NewServer(api.Options{
			Addr:       cfg.Server.Addr,
			AuthSecret: cfg.Server.JWTSecret,
			Logger:     logger,
		}, func(mode review.Mode) (api.Service, error) {
			return buildReviewer("", "", mode)
		})
		return server.Start(ctx)
	}

	cliDeps := cli.Dependencies{
		NewReviewer: func(opts cli.ReviewerOptions) (cli.Reviewer, error) {
			mode := review.ParseMode(cfg.Review.Mode)
			if opts.Mode != "" {
				mode = review.ParseMode(opts.Mode)
			}
			return buildReviewer(opts.Provider, opts.Model, mode)
		},
		Serve:         serve,
		Args:          cli.Arguments{OutWriter: os.Stdout, ErrWriter: os.Stderr},
		DefaultRepo:   cfg.Git.RepositoryDir,
		DefaultFormat: cliFormat(cfg.Output.Format),
		OutputDir:     cfg.Output.Directory,
		ColorOutput:   review.IsOutputTerminal(),
		Version:       version.Value(),
	}
	if store != nil {
		cliDeps.History = store
	}

	root := cli.NewRootCommand(cliDeps)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildProvider resolves the provider and model from overrides falling
// back to the configured defaults.
func buildProvider(cfg config.Config, name, model string, logger llmhttp.Logger) (review.Provider, string, error) {
	if name == "" {
		name = cfg.Model.Provider
	}
	if model == "" {
		model = cfg.Model.Name
	}

	pcfg := cfg.Providers[name]

	switch name {
	case "openai":
		key := realKey(pcfg.APIKey)
		if key == "" {
			return nil, "", fmt.Errorf("openai API key not configured (set OPENAI_API_KEY)")
		}
		client := openai.NewClient(key, model)
		if pcfg.BaseURL != "" {
			client.SetBaseURL(pcfg.BaseURL)
		}
		if logger != nil {
			client.SetLogger(logger)
		}
		if d := parseTimeout(pcfg.Timeout); d > 0 {
			client.SetTimeout(d)
		}
		return client, model, nil

	case "anthropic":
		key := realKey(pcfg.APIKey)
		if key == "" {
			return nil, "", fmt.Errorf("anthropic API key not configured (set ANTHROPIC_API_KEY)")
		}
		client := anthropic.NewClient(key, model)
		if pcfg.BaseURL != "" {
			client.SetBaseURL(pcfg.BaseURL)
		}
		if logger != nil {
			client.SetLogger(logger)
		}
		if d := parseTimeout(pcfg.Timeout); d > 0 {
			client.SetTimeout(d)
		}
		return client, model, nil

	case "ollama":
		client := ollama.NewClient(pcfg.BaseURL, model)
		if d := parseTimeout(pcfg.Timeout); d > 0 {
			client.SetTimeout(d)
		}
		return client, model, nil

	case "static":
		return static.NewProvider(""), model, nil

	default:
		return nil, "", fmt.Errorf("unknown provider %q", name)
	}
}

// realKey rejects unexpanded ${VAR} placeholders left behind when the
// environment variable is unset.
func realKey(key string) string {
	if strings.HasPrefix(key, "${") || strings.HasPrefix(key, "$") {
		return ""
	}
	return key
}

// cliFormat maps the config output format onto the CLI's text/json
// flag values.
func cliFormat(format string) string {
	if format == "json" {
		return "json"
	}
	return "text"
}

func parseTimeout(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("warning: invalid timeout %q ignored", s)
		return 0
	}
	return d
}

func buildLogger(cfg config.LoggingConfig) *llmhttp.DefaultLogger {
	level := llmhttp.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = llmhttp.LogLevelDebug
	case "error":
		level = llmhttp.LogLevelError
	}

	format := llmhttp.LogFormatHuman
	if cfg.Format == "json" {
		format = llmhttp.LogFormatJSON
	}

	return llmhttp.NewDefaultLogger(level, format, cfg.RedactAPIKeys)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "acr"))
	}
	return paths
}
