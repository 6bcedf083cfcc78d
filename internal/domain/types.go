package domain

import "fmt"

// Annotation categories map to the qualitative rubric dimensions.
const (
	CategoryCodeReadability    = "code_readability"
	CategoryLanguageConvention = "language_convention"
	CategoryProgramDesign      = "program_design"
	CategoryDataStructures     = "data_structures"
	CategoryPointersMemory     = "pointers_memory"
)

// Annotation severities, in increasing order of importance.
const (
	SeveritySuggestion = "suggestion"
	SeverityIssue      = "issue"
	SeverityCritical   = "critical"
)

var validCategories = map[string]bool{
	CategoryCodeReadability:    true,
	CategoryLanguageConvention: true,
	CategoryProgramDesign:      true,
	CategoryDataStructures:     true,
	CategoryPointersMemory:     true,
}

var validSeverities = map[string]bool{
	SeveritySuggestion: true,
	SeverityIssue:      true,
	SeverityCritical:   true,
}

// Annotation is a single piece of line-anchored feedback for a submission.
type Annotation struct {
	LineNumber int    `json:"line_number"`
	Category   string `json:"category"`
	Comment    string `json:"comment"`
	Severity   string `json:"severity"`
}

// Validate checks the annotation against the category and severity enums and
// the line range of the submission it annotates.
func (a Annotation) Validate(lineCount int) error {
	if a.LineNumber < 1 || a.LineNumber > lineCount {
		return fmt.Errorf("annotation line %d outside file range 1..%d", a.LineNumber, lineCount)
	}
	if !validCategories[a.Category] {
		return fmt.Errorf("unknown annotation category %q", a.Category)
	}
	if !validSeverities[a.Severity] {
		return fmt.Errorf("unknown annotation severity %q", a.Severity)
	}
	if a.Comment == "" {
		return fmt.Errorf("annotation at line %d has empty comment", a.LineNumber)
	}
	return nil
}

// Summary captures feedback that cannot be anchored to specific lines.
// It is produced only for single-file submissions.
type Summary struct {
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
	OverallAssessment   string `json:"overall_assessment"`
}

// FeedbackBundle is the complete output of one pipeline stage for one
// submission unit. The Draft stage produces one; the Review stage consumes it
// and emits a full replacement. Bundles are never partially updated.
type FeedbackBundle struct {
	Annotations []Annotation `json:"annotations"`
	Summary     *Summary     `json:"summary,omitempty"`
}

// Validate checks every annotation and, when requireSummary is set, the
// presence of the summary. lineCount is the current line count of the
// submission unit the bundle targets.
func (b FeedbackBundle) Validate(lineCount int, requireSummary bool) error {
	for _, ann := range b.Annotations {
		if err := ann.Validate(lineCount); err != nil {
			return err
		}
	}
	if requireSummary && b.Summary == nil {
		return fmt.Errorf("bundle is missing the required summary")
	}
	return nil
}
