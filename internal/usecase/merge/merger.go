// Package merge injects final feedback annotations into the original source
// text as formatted comment blocks. The original file's lines and their
// order are never altered; only comment blocks are inserted between them.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppansari/feedbackgen/internal/domain"
)

// DefaultWrapWidth is the column width comments are wrapped to.
const DefaultWrapWidth = 80

const (
	annotationPrefix = "/* \n * REVIEW: "
	annotationSuffix = "\n */"
	continuation     = " \n * "
)

// Merger renders annotation comment blocks and merges them into source text.
type Merger struct {
	width int
	caser cases.Caser
}

// NewMerger constructs a Merger wrapping comments at the given width;
// width <= 0 selects DefaultWrapWidth.
func NewMerger(width int) *Merger {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	return &Merger{width: width, caser: cases.Upper(language.English)}
}

// FormatComment word-wraps one annotation comment and frames it with the
// fixed comment delimiters.
func (m *Merger) FormatComment(comment string) string {
	wrapped := wrapText(comment, m.width)
	return annotationPrefix + strings.Join(wrapped, continuation) + annotationSuffix
}

// MergeLines walks the original source by physical line number and emits a
// comment block immediately before every annotated line. Lines without
// annotations pass through unchanged, so stripping the inserted blocks from
// the result reproduces the original text byte for byte.
func (m *Merger) MergeLines(source string, annotations []domain.Annotation) string {
	if len(annotations) == 0 {
		return source
	}

	blocks := make(map[int][]string)
	for _, ann := range annotations {
		blocks[ann.LineNumber] = append(blocks[ann.LineNumber], m.FormatComment(ann.Comment))
	}

	trailingNewline := strings.HasSuffix(source, "\n")
	lines := strings.Split(source, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	var b strings.Builder
	for i, line := range lines {
		for _, block := range blocks[i+1] {
			b.WriteString("\n")
			b.WriteString(block)
			b.WriteString("\n")
		}
		b.WriteString(line)
		if i < len(lines)-1 || trailingNewline {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// SummaryBlock renders the reformatted summary as one trailing comment
// block: per field, an upper-cased label (underscores become spaces)
// followed by the wrapped body.
func (m *Merger) SummaryBlock(summary domain.Summary) string {
	fields := []struct {
		name  string
		value string
	}{
		{"strengths", summary.Strengths},
		{"areas_for_improvement", summary.AreasForImprovement},
		{"overall_assessment", summary.OverallAssessment},
	}

	var b strings.Builder
	b.WriteString("\n/*")
	for _, field := range fields {
		label := m.caser.String(strings.ReplaceAll(field.name, "_", " "))
		fmt.Fprintf(&b, "\n *\n * %s: \n * ", label)
		b.WriteString(strings.Join(wrapText(field.value, m.width), continuation))
	}
	b.WriteString("\n */\n")
	return b.String()
}

// SectionHeader returns the visual header that precedes a unit's feedback in
// the shared aggregate file.
func (m *Merger) SectionHeader(name string) string {
	return fmt.Sprintf("\n/*============================%s============================*/\n", name)
}

// AppendAggregate merges one unit's annotations into its source and appends
// the section, preceded by its header, to the shared feedback file. Callers
// skip units with empty bundles; this function assumes there is something to
// write.
func (m *Merger) AppendAggregate(path, name, source string, annotations []domain.Annotation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open aggregate feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(m.SectionHeader(name)); err != nil {
		return fmt.Errorf("write section header: %w", err)
	}
	if _, err := f.WriteString(m.MergeLines(source, annotations)); err != nil {
		return fmt.Errorf("write merged section: %w", err)
	}
	return nil
}
