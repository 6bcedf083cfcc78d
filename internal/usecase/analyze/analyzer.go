// Package analyze classifies submission files against a baseline tree. It
// runs an external structural diff and parses its unified output into a
// ChangeSet, so nothing downstream depends on the diff tool's textual
// format.
package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/ppansari/feedbackgen/internal/domain"
)

// DefaultThreshold is the minimum changed-line count for a modified file to
// receive generated feedback; it keeps trivial touch-ups out of the
// pipeline.
const DefaultThreshold = 10

// DiffTool runs the external structural diff over two trees and returns its
// unified-format output. A tool-reported hard error fails the whole run.
type DiffTool interface {
	Diff(ctx context.Context, baselineDir, submissionDir string) (string, error)
}

// Analyzer turns diff output into a ChangeSet, applying the source-language
// extension filter and the changed-line threshold policy.
type Analyzer struct {
	tool      DiffTool
	extension string
	threshold int
}

// NewAnalyzer constructs an Analyzer. threshold <= 0 selects
// DefaultThreshold.
func NewAnalyzer(tool DiffTool, extension string, threshold int) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{tool: tool, extension: extension, threshold: threshold}
}

// Analyze diffs the baseline against the submission and returns the change
// set plus the raw diff text for persistence. The change set is complete or
// absent: any diff failure aborts without partial results.
func (a *Analyzer) Analyze(ctx context.Context, baselineDir, submissionDir string) (domain.ChangeSet, string, error) {
	diffText, err := a.tool.Diff(ctx, baselineDir, submissionDir)
	if err != nil {
		return domain.ChangeSet{}, "", err
	}
	changes, err := a.parse(diffText, submissionDir)
	if err != nil {
		return domain.ChangeSet{}, "", err
	}
	return changes, diffText, nil
}

// parse splits the diff output into its two signal kinds: "Only in" lines,
// which identify files present in just one tree, and unified hunks for files
// present in both.
func (a *Analyzer) parse(diffText, submissionDir string) (domain.ChangeSet, error) {
	changes := domain.NewChangeSet()

	var unified strings.Builder
	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "Only in "):
			if rel, ok := a.newFileFromOnlyIn(line, submissionDir); ok {
				changes.Files[rel] = domain.FileChange{Path: rel, Kind: domain.ChangeNewFile}
			}
		case strings.HasPrefix(line, "Binary files "), strings.HasPrefix(line, "diff "):
			// Tool chatter, not part of any hunk.
		default:
			unified.WriteString(line)
			unified.WriteByte('\n')
		}
	}

	files, _, err := gitdiff.Parse(strings.NewReader(unified.String()))
	if err != nil {
		return domain.ChangeSet{}, fmt.Errorf("parse unified diff: %w", err)
	}

	for _, file := range files {
		name := file.NewName
		if name == "" || filepath.Ext(name) != a.extension {
			continue
		}
		rel, ok := relativeTo(submissionDir, name)
		if !ok {
			continue
		}

		// Each hunk contributes its full target range, context included,
		// mirroring how the hunk header describes the new file.
		lineNumbers := make(map[int]bool)
		for _, frag := range file.TextFragments {
			for i := int64(0); i < frag.NewLines; i++ {
				lineNumbers[int(frag.NewPosition+i)] = true
			}
		}
		if len(lineNumbers) < a.threshold {
			continue
		}
		changes.Files[rel] = domain.FileChange{Path: rel, Kind: domain.ChangeModified, LineNumbers: lineNumbers}
	}

	return changes, nil
}

// newFileFromOnlyIn classifies an "Only in <dir>: <name>" line. Only entries
// under the submission root with the configured extension qualify; files
// present only in the baseline were deleted by the student and get no
// feedback.
func (a *Analyzer) newFileFromOnlyIn(line, submissionDir string) (string, bool) {
	rest := strings.TrimPrefix(line, "Only in ")
	idx := strings.LastIndex(rest, ": ")
	if idx < 0 {
		return "", false
	}
	dir, name := rest[:idx], rest[idx+2:]
	if filepath.Ext(name) != a.extension {
		return "", false
	}
	return relativeTo(submissionDir, filepath.Join(dir, name))
}

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
