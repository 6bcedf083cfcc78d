package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testContext() Context {
	return Context{
		ProblemStatement: "Implement a shell.",
		Rubric:           "Readable code, good design.",
	}
}

func TestBuildDraftPromptIncludesContext(t *testing.T) {
	prompt := BuildDraftPrompt(testContext(), "1 | + int x;", false)

	assert.Contains(t, prompt, "<problem_statement>\nImplement a shell.\n</problem_statement>")
	assert.Contains(t, prompt, "<rubric>\nReadable code, good design.\n</rubric>")
	assert.Contains(t, prompt, "<submission>\n1 | + int x;\n</submission>")
	assert.NotContains(t, prompt, "summary of the overall feedback")
}

func TestBuildDraftPromptWithSummary(t *testing.T) {
	prompt := BuildDraftPrompt(testContext(), "1 | + int x;", true)
	assert.Contains(t, prompt, "summary of the overall feedback")
}

func TestDraftAndReviewShareCachedPrefix(t *testing.T) {
	draft := BuildDraftPrompt(testContext(), "1 | + int x;", false)
	review := BuildReviewPrompt(testContext(), "1 | + int x;", `{"annotations":[]}`, "")

	common := buildCommonPrompt(testContext(), "1 | + int x;")
	assert.True(t, strings.HasPrefix(draft, common))
	assert.True(t, strings.HasPrefix(review, common))
}

func TestBuildReviewPromptEmbedsDraftAndLinter(t *testing.T) {
	prompt := BuildReviewPrompt(testContext(), "1 | + int x;", `{"annotations":[]}`, "unused variable x")

	assert.Contains(t, prompt, "<feedback>\n{\"annotations\":[]}\n</feedback>")
	assert.Contains(t, prompt, "<linter>\nunused variable x\n</linter>")
}

func TestBuildReviewPromptOmitsEmptyLinterSection(t *testing.T) {
	prompt := BuildReviewPrompt(testContext(), "1 | + int x;", `{"annotations":[]}`, "")
	assert.NotContains(t, prompt, "<linter>")
}

func TestBuildSummaryReformatPromptNamesLanguage(t *testing.T) {
	prompt := BuildSummaryReformatPrompt(".c", `{"strengths":"ok"}`)
	assert.Contains(t, prompt, "a .c program")
	assert.Contains(t, prompt, "<summary>\n{\"strengths\":\"ok\"}\n</summary>")
}
