package feedback

import (
	"encoding/json"
	"fmt"
)

// JSON schemas for the structured generation calls. Objects forbid unknown
// properties and require every field, which is what the provider's strict
// schema mode expects.

const annotationSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["line_number", "category", "comment", "severity"],
	"properties": {
		"line_number": {
			"type": "integer",
			"description": "1-indexed line in the program file this feedback is anchored to"
		},
		"category": {
			"type": "string",
			"enum": ["code_readability", "language_convention", "program_design", "data_structures", "pointers_memory"]
		},
		"comment": {
			"type": "string",
			"description": "Detailed feedback about the code at this line"
		},
		"severity": {
			"type": "string",
			"enum": ["suggestion", "issue", "critical"]
		}
	}
}`

const summarySchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["strengths", "areas_for_improvement", "overall_assessment"],
	"properties": {
		"strengths": {
			"type": "string",
			"description": "Positive aspects of the submission"
		},
		"areas_for_improvement": {
			"type": "string",
			"description": "Aspects that need improvement"
		},
		"overall_assessment": {
			"type": "string",
			"description": "Brief overall evaluation of the submission"
		}
	}
}`

// BundleSchema returns the schema name and body for a feedback bundle. The
// summary field is part of the schema only for single-file submissions.
func BundleSchema(withSummary bool) (string, json.RawMessage) {
	if withSummary {
		schema := fmt.Sprintf(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["annotations", "summary"],
	"properties": {
		"annotations": {
			"type": "array",
			"description": "List of line-specific code feedback",
			"items": %s
		},
		"summary": %s
	}
}`, annotationSchemaJSON, summarySchemaJSON)
		return "feedback_bundle_with_summary", json.RawMessage(schema)
	}

	schema := fmt.Sprintf(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["annotations"],
	"properties": {
		"annotations": {
			"type": "array",
			"description": "List of line-specific code feedback",
			"items": %s
		}
	}
}`, annotationSchemaJSON)
	return "feedback_bundle", json.RawMessage(schema)
}

// SummarySchema returns the schema name and body for the standalone summary
// reformatting call.
func SummarySchema() (string, json.RawMessage) {
	return "feedback_summary", json.RawMessage(summarySchemaJSON)
}
