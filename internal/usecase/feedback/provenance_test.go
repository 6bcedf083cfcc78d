package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProvenanceAllLinesAdded(t *testing.T) {
	source := "int main(void) {\n    return 0;\n}\n"
	got := RenderProvenance(source, nil)
	want := "1 | + int main(void) {\n2 | +     return 0;\n3 | + }\n"
	assert.Equal(t, want, got)
}

func TestRenderProvenanceMarksOnlyChangedLines(t *testing.T) {
	source := "a\nb\nc\n"
	got := RenderProvenance(source, map[int]bool{2: true})
	want := "1 | a\n2 | + b\n3 | c\n"
	assert.Equal(t, want, got)
}

func TestRenderProvenanceNoTrailingNewline(t *testing.T) {
	got := RenderProvenance("a\nb", nil)
	assert.Equal(t, "1 | + a\n2 | + b", got)
}

func TestRenderProvenanceEmptySource(t *testing.T) {
	assert.Equal(t, "", RenderProvenance("", nil))
}

func TestRenderProvenancePreservesBlankLines(t *testing.T) {
	source := "a\n\nb\n"
	got := RenderProvenance(source, map[int]bool{1: true})
	want := "1 | + a\n2 | \n3 | b\n"
	assert.Equal(t, want, got)
}
