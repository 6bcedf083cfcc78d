package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ppansari/feedbackgen/internal/adapter/cli"
	"github.com/ppansari/feedbackgen/internal/adapter/difftool"
	"github.com/ppansari/feedbackgen/internal/adapter/linter"
	"github.com/ppansari/feedbackgen/internal/adapter/llm/openai"
	"github.com/ppansari/feedbackgen/internal/adapter/llm/static"
	"github.com/ppansari/feedbackgen/internal/adapter/observability"
	storeAdapter "github.com/ppansari/feedbackgen/internal/adapter/store"
	"github.com/ppansari/feedbackgen/internal/adapter/store/sqlite"
	"github.com/ppansari/feedbackgen/internal/config"
	"github.com/ppansari/feedbackgen/internal/usecase/analyze"
	"github.com/ppansari/feedbackgen/internal/usecase/feedback"
	"github.com/ppansari/feedbackgen/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "fbgen",
		EnvPrefix:   "FBGEN",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	var logger feedback.Logger
	if cfg.Observability.Logging.Enabled {
		logger = observability.NewLogger(
			observability.ParseLevel(cfg.Observability.Logging.Level),
			observability.ParseFormat(cfg.Observability.Logging.Format),
		)
	}

	generator, err := buildGenerator(cfg.Provider)
	if err != nil {
		return err
	}

	// Metering store is best-effort: a failure to open it is logged and the
	// run continues without persistence.
	var meter feedback.Meter
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				bridge := storeAdapter.NewBridge(sqliteStore)
				defer bridge.Close()
				meter = bridge
			}
		}
	}

	analyzer := analyze.NewAnalyzer(difftool.NewRunner(), cfg.Review.Language, cfg.Review.Threshold)

	orchestrator := feedback.NewOrchestrator(feedback.OrchestratorOptions{
		Generator: generator,
		Analyzer:  analyzer,
		Linter:    linter.NewClangTidy(),
		Meter:     meter,
		Logger:    logger,
		Settings: feedback.Settings{
			ProblemStatementPath: cfg.Paths.ProblemStatement,
			RubricPath:           cfg.Paths.Rubric,
			InputDir:             cfg.Paths.InputDir,
			IntermediateDir:      cfg.Paths.IntermediateDir,
			OutputDir:            cfg.Paths.OutputDir,
			Model:                cfg.Review.Model,
			SummarizerModel:      cfg.Review.SummarizerModel,
			WrapWidth:            cfg.Review.WrapWidth,
			Extension:            cfg.Review.Language,
		},
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Single:  orchestrator,
		Repo:    orchestrator,
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildGenerator(cfg config.ProviderConfig) (feedback.Generator, error) {
	switch cfg.Name {
	case "openai":
		client := openai.NewClient(cfg.APIKey)
		if cfg.BaseURL != "" {
			client.SetBaseURL(cfg.BaseURL)
		}
		if cfg.Timeout != "" {
			timeout, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid provider timeout %q: %w", cfg.Timeout, err)
			}
			client.SetTimeout(timeout)
		}
		return client, nil
	case "static":
		return static.NewGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: openai, static)", cfg.Name)
	}
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "fbgen"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ feedback.Generator = (*openai.Client)(nil)
var _ feedback.Generator = (*static.Generator)(nil)
var _ feedback.Linter = (*linter.ClangTidy)(nil)
var _ feedback.ChangeAnalyzer = (*analyze.Analyzer)(nil)
var _ feedback.Logger = (*observability.Logger)(nil)
var _ feedback.Meter = (*storeAdapter.Bridge)(nil)
var _ cli.SingleRunner = (*feedback.Orchestrator)(nil)
var _ cli.RepoRunner = (*feedback.Orchestrator)(nil)
