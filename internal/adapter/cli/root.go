package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// SingleRunner defines the dependency required to run the single command.
type SingleRunner interface {
	RunSingle(ctx context.Context, file string) error
}

// RepoRunner defines the dependency required to run the repo command.
type RepoRunner interface {
	RunRepo(ctx context.Context, baselineDir, submissionDir string) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Single  SingleRunner
	Repo    RepoRunner
	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "fbgen",
		Short: "Generate line-localized feedback documents for graded submissions",
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

	root.AddCommand(singleCommand(deps.Single))
	root.AddCommand(repoCommand(deps.Repo))

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

func singleCommand(runner SingleRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "single <program-file>",
		Short: "Annotate one submission file and emit its feedback document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return fmt.Errorf("single runner not configured")
			}
			return runner.RunSingle(cmd.Context(), args[0])
		},
	}
}

func repoCommand(runner RepoRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <baseline-dir> <submission-dir>",
		Short: "Annotate files changed against a baseline and emit an aggregate feedback document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return fmt.Errorf("repo runner not configured")
			}
			return runner.RunRepo(cmd.Context(), args[0], args[1])
		},
	}
}
