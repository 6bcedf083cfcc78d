// Package linter invokes the external static-analysis tool on a single
// submission file.
package linter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ClangTidy runs clang-tidy over one C source file.
type ClangTidy struct {
	path      string
	extraArgs []string
}

// NewClangTidy constructs a ClangTidy using the binary on PATH and the
// course's compile flags.
func NewClangTidy() *ClangTidy {
	return &ClangTidy{
		path:      "clang-tidy",
		extraArgs: []string{"--", "-std=gnu11"},
	}
}

// SetPath overrides the clang-tidy executable (for testing).
func (c *ClangTidy) SetPath(path string) {
	c.path = path
}

// Lint runs the tool on the file and returns its stdout. Any non-zero exit
// is fatal for the run, reported with the captured stderr.
func (c *ClangTidy) Lint(ctx context.Context, file string) (string, error) {
	args := append([]string{file}, c.extraArgs...)
	cmd := exec.CommandContext(ctx, c.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("clang-tidy %s: %w: %s", file, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
