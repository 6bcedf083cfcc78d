// Package static provides an offline-friendly generative service
// implementation. It returns deterministic, schema-shaped responses, which
// makes it useful for dry runs and for exercising the pipeline in tests
// without network access.
package static

import (
	"context"
	"fmt"

	"github.com/ppansari/feedbackgen/internal/usecase/feedback"
)

const staticBundleJSON = `{
	"annotations": [
		{
			"line_number": 1,
			"category": "code_readability",
			"comment": "Static offline feedback: consider opening the file with a short comment describing its purpose.",
			"severity": "suggestion"
		}
	]
}`

const staticSummaryJSON = `{
	"strengths": "The submission compiles and follows a consistent layout.",
	"areas_for_improvement": "Static offline run; no model-generated assessment available.",
	"overall_assessment": "Placeholder assessment produced without a generative service."
}`

// Generator produces canned responses shaped by the requested schema.
type Generator struct{}

// NewGenerator constructs a stubbed generative service.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a deterministic placeholder response. Structured requests
// get a minimal bundle or summary matching the schema; free-text requests
// get an echo of the prompt head.
func (g *Generator) Generate(ctx context.Context, req feedback.GenerateRequest) (feedback.GenerateResponse, error) {
	if req.Schema == nil {
		return feedback.GenerateResponse{Text: fmt.Sprintf("Static digest for model %s over prompt: %.60s", req.Model, req.UserPrompt)}, nil
	}

	switch req.SchemaName {
	case "feedback_summary":
		return feedback.GenerateResponse{Text: staticSummaryJSON}, nil
	case "feedback_bundle_with_summary":
		text := fmt.Sprintf(`{"annotations": %s, "summary": %s}`, `[
		{
			"line_number": 1,
			"category": "code_readability",
			"comment": "Static offline feedback: consider opening the file with a short comment describing its purpose.",
			"severity": "suggestion"
		}
	]`, staticSummaryJSON)
		return feedback.GenerateResponse{Text: text}, nil
	default:
		return feedback.GenerateResponse{Text: staticBundleJSON}, nil
	}
}
