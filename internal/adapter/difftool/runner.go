// Package difftool invokes the external structural-diff utility as a
// black-box subprocess.
package difftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes `diff -r -u` over two directory trees.
type Runner struct {
	path string
}

// NewRunner constructs a Runner using the diff binary on PATH.
func NewRunner() *Runner {
	return &Runner{path: "diff"}
}

// SetPath overrides the diff executable (for testing).
func (r *Runner) SetPath(path string) {
	r.path = path
}

// Diff runs the tool in recursive unified mode and returns its stdout. Exit
// code 1 just means the trees differ; exit code 2 is a tool-reported hard
// error and fails the run with the captured stderr.
func (r *Runner) Diff(ctx context.Context, baselineDir, submissionDir string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, "-r", "-u", baselineDir, submissionDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return stdout.String(), nil
		}
		return "", fmt.Errorf("diff %s %s: %w: %s", baselineDir, submissionDir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
