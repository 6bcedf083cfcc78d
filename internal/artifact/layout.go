// Package artifact manages the on-disk layout of intermediate and output
// files for a submission: draft and final feedback bundles, the per-unit
// token log, linter output, and the persisted diff. Intermediate artifacts
// are what let the Draft and Review stages run without shared in-memory
// state, and what a grader inspects when debugging a run.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppansari/feedbackgen/internal/adapter/llm"
	"github.com/ppansari/feedbackgen/internal/domain"
)

// Layout resolves artifact paths for one submission. IntermediateDir and
// OutputDir already mirror the submission's path relative to the input root.
type Layout struct {
	IntermediateDir string
	OutputDir       string
}

// ForSubmission derives the per-submission layout. The submission must live
// under inputDir; its relative path is mirrored under both intermediateDir
// and outputDir. For a single-file submission the mirrored path is the
// file's parent directory.
func ForSubmission(inputDir, intermediateDir, outputDir, submission string, isFile bool) (*Layout, error) {
	mirror := submission
	if isFile {
		mirror = filepath.Dir(submission)
	}
	rel, err := filepath.Rel(inputDir, mirror)
	if err != nil {
		return nil, fmt.Errorf("submission %s is not relative to input dir %s: %w", submission, inputDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("submission %s lies outside input dir %s", submission, inputDir)
	}
	return &Layout{
		IntermediateDir: filepath.Join(intermediateDir, rel),
		OutputDir:       filepath.Join(outputDir, rel),
	}, nil
}

// Reset clears any previous run's artifacts and recreates both directories.
func (l *Layout) Reset() error {
	for _, dir := range []string{l.IntermediateDir, l.OutputDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// DraftPath returns the draft bundle path for a unit, keyed by its
// submission-relative path.
func (l *Layout) DraftPath(unit string) string {
	return l.unitPath(unit, "_intermediate.json")
}

// FinalPath returns the reviewed (authoritative) bundle path for a unit.
func (l *Layout) FinalPath(unit string) string {
	return l.unitPath(unit, "_final.json")
}

// LogPath returns the per-unit token log path.
func (l *Layout) LogPath(unit string) string {
	return l.unitPath(unit, "_log.txt")
}

// LinterPath returns the raw linter output path for a unit.
func (l *Layout) LinterPath(unit string) string {
	return l.unitPath(unit, "_linter_out.txt")
}

// DiffPath returns where the raw unified diff is persisted in repo mode.
func (l *Layout) DiffPath() string {
	return filepath.Join(l.IntermediateDir, "repo.diff")
}

// SingleOutputPath returns the annotated-copy path for a single-file unit:
// stem + "_feedback" + the unit's own extension.
func (l *Layout) SingleOutputPath(unit string) string {
	ext := filepath.Ext(unit)
	stem := strings.TrimSuffix(filepath.Base(unit), ext)
	return filepath.Join(l.OutputDir, filepath.Dir(unit), stem+"_feedback"+ext)
}

// AggregateOutputPath returns the shared feedback file all repo-mode units
// append into, named by the submission's source-language extension.
func (l *Layout) AggregateOutputPath(ext string) string {
	return filepath.Join(l.OutputDir, "feedback"+ext)
}

func (l *Layout) unitPath(unit, suffix string) string {
	ext := filepath.Ext(unit)
	stem := strings.TrimSuffix(filepath.Base(unit), ext)
	return filepath.Join(l.IntermediateDir, filepath.Dir(unit), stem+suffix)
}

// SaveBundle persists a feedback bundle as indented JSON, creating parent
// directories for units nested below the submission root.
func SaveBundle(path string, bundle domain.FeedbackBundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(bundle, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a persisted feedback bundle. A missing artifact is fatal
// for the caller; the error names the expected path so stage-ordering
// violations are easy to diagnose.
func LoadBundle(path string) (domain.FeedbackBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.FeedbackBundle{}, fmt.Errorf("feedback artifact not found at %s: %w", path, err)
		}
		return domain.FeedbackBundle{}, fmt.Errorf("read feedback artifact %s: %w", path, err)
	}
	var bundle domain.FeedbackBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("corrupt feedback artifact %s: %w", path, err)
	}
	return bundle, nil
}

// WriteFile persists an auxiliary artifact (linter output, raw diff).
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// CallLogEntry is one line of the per-unit token log.
type CallLogEntry struct {
	Stage string
	Usage llm.Usage
	At    time.Time
}

// AppendCallLog records token usage for one generation call. The Draft stage
// truncates the log so each run starts fresh; every later call appends.
func AppendCallLog(path string, truncate bool, entry CallLogEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open call log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s : %s input/cached/output tokens: %d / %d / %d\n",
		entry.At.Format("2006-01-02 15:04:05"),
		entry.Stage,
		entry.Usage.PromptTokens,
		entry.Usage.CachedTokens,
		entry.Usage.CompletionTokens,
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write call log: %w", err)
	}
	return nil
}
