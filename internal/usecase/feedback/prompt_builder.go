package feedback

import (
	"fmt"
	"strings"
)

// SystemPrompt returns the role instruction shared by the Draft and Review
// stages.
func SystemPrompt() string {
	return "Your role is to act as an OS course TA who provides qualitative " +
		"feedback on student C programming assignments. Feedback is good when it " +
		"is relevant for the education of undergraduate computer science students " +
		"and is not overwhelming in quantity. Please stick to the rubric."
}

// buildCommonPrompt assembles the context shared by both stages. Keeping this
// prefix identical across the Draft and Review calls lets the provider serve
// it from its prompt cache.
func buildCommonPrompt(fbCtx Context, document string) string {
	var b strings.Builder
	b.WriteString("For a programming assignment, below are the problem statement, ")
	b.WriteString("rubric for code quality feedback, and program submission. For easier ")
	b.WriteString("processing, the lines in the program have been prepended by line number ")
	b.WriteString("like '42 | int a;'. A '+' marks those lines that have been added by the ")
	b.WriteString("programmer.\n\n")

	fmt.Fprintf(&b, "<problem_statement>\n%s\n</problem_statement>\n\n", fbCtx.ProblemStatement)
	fmt.Fprintf(&b, "<rubric>\n%s\n</rubric>\n\n", fbCtx.Rubric)
	fmt.Fprintf(&b, "<submission>\n%s\n</submission>\n\n", document)

	b.WriteString("If all lines are marked by '+', it can either mean that the submission ")
	b.WriteString("is a single code file, or that the file is a new addition to the ")
	b.WriteString("submission repo (not present in the baseline repo). If only some lines ")
	b.WriteString("are marked by '+', existing baseline code has been modified, and this ")
	b.WriteString("particular program file is only a part of the solution.\n\n")
	return b.String()
}

// BuildDraftPrompt returns the user prompt for the Draft stage.
func BuildDraftPrompt(fbCtx Context, document string, withSummary bool) string {
	var b strings.Builder
	b.WriteString(buildCommonPrompt(fbCtx, document))
	b.WriteString("Suggest a list of annotations (comments) of feedback based on the ")
	b.WriteString("rubric. Adhere to the structured output schema. If only some lines are ")
	b.WriteString("marked by '+', give feedback only on those modified lines. It is okay ")
	b.WriteString("to not give any feedback where there is no strong need for one.")
	if withSummary {
		b.WriteString(" Also generate a summary of the overall feedback.")
	}
	return b.String()
}

// BuildReviewPrompt returns the user prompt for the Review stage. draftJSON
// is the serialized Draft bundle read back from its persisted artifact;
// linterDigest is the condensed static-analysis output, empty when no linter
// ran (repo submissions).
func BuildReviewPrompt(fbCtx Context, document, draftJSON, linterDigest string) string {
	var b strings.Builder
	b.WriteString(buildCommonPrompt(fbCtx, document))

	if linterDigest != "" {
		fmt.Fprintf(&b, "A linter gave the following output (condensed) for the submission.\n<linter>\n%s\n</linter>\n\n", linterDigest)
	}

	b.WriteString("Look at the following list of annotations and, when present, the ")
	b.WriteString("summary of feedback. Do the following:\n")
	b.WriteString("1. For each annotation, check that the line number is correct and ")
	b.WriteString("that the annotation is valid and useful to give.\n")
	b.WriteString("2. Incorporate the linter output into annotations and the summary ")
	b.WriteString("where relevant.\n")
	b.WriteString("3. Discard annotations which are not very helpful and would clutter ")
	b.WriteString("the feedback.\n")
	fmt.Fprintf(&b, "<feedback>\n%s\n</feedback>", draftJSON)
	return b.String()
}

// BuildLinterDigestPrompt asks the summarizer model to condense raw linter
// output, which is otherwise cluttered with pathnames.
func BuildLinterDigestPrompt(linterOutput string) string {
	return "The following is output from a linter. Please retain the essential " +
		"points only. They will be used to guide an automated programming " +
		"feedback tool.\n\n" + linterOutput
}

// BuildSummaryReformatPrompt asks the summarizer model to restate the final
// summary so it reads well as a trailing comment block, without adding
// suggestions of its own.
func BuildSummaryReformatPrompt(ext, summaryJSON string) string {
	return fmt.Sprintf("The following is a summary of feedback on a %s program from an "+
		"automated tool. Rewrite it so it can be appended at the bottom of the "+
		"submission. Do not add any suggestions of your own. Give output in the "+
		"structured format respecting the given schema.\n<summary>\n%s\n</summary>",
		ext, summaryJSON)
}
