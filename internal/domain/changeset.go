package domain

import "sort"

// Change kinds for files that differ between the baseline and the submission.
const (
	ChangeNewFile  = "new"
	ChangeModified = "modified"
)

// FileChange classifies one submission file relative to the baseline.
// LineNumbers holds target-file line numbers (1-indexed) that are additions
// or modifications; it is nil for a wholly new file, which is never
// decomposed into hunks.
type FileChange struct {
	Path        string
	Kind        string
	LineNumbers map[int]bool
}

// ChangedLineCount returns the cardinality of the changed-line set.
func (c FileChange) ChangedLineCount() int {
	return len(c.LineNumbers)
}

// ChangeSet is the immutable result of diffing a baseline tree against a
// submission tree. Keys are file paths relative to the submission root.
// It is computed once per invocation and never mutated afterwards.
type ChangeSet struct {
	Files map[string]FileChange
}

// NewChangeSet returns an empty change set.
func NewChangeSet() ChangeSet {
	return ChangeSet{Files: make(map[string]FileChange)}
}

// SortedPaths returns the file paths in lexical order so callers process
// units deterministically.
func (cs ChangeSet) SortedPaths() []string {
	paths := make([]string, 0, len(cs.Files))
	for p := range cs.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
