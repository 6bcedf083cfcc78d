// Package feedback implements the two-stage annotation pipeline: a Draft
// stage that generates a schema-constrained feedback bundle for a submission
// unit, and a Review stage that validates and refines it from the persisted
// draft artifact. The orchestrator drives Draft, Review, and the merge step
// per unit, strictly in that order.
package feedback

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppansari/feedbackgen/internal/adapter/llm"
)

// GenerateRequest describes one synchronous call to the generative service.
// Schema is nil for free-text calls; when set, the service must return a
// document that deserializes against it exactly.
type GenerateRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       json.RawMessage
}

// GenerateResponse carries the raw response text and the provider's token
// accounting for the call.
type GenerateResponse struct {
	Text  string
	Usage llm.Usage
}

// Generator is the generative text-annotation service dependency. Calls are
// blocking round-trips with no streaming and no partial results; any error
// aborts the unit being processed. Implementations are injected explicitly,
// never reached through package-level state.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// Linter runs an external static-analysis tool on a single file and returns
// its raw output. A non-zero tool exit is an error.
type Linter interface {
	Lint(ctx context.Context, path string) (string, error)
}

// Logger provides structured progress logging for the pipeline.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Meter records token usage per generation call in a durable store,
// complementing the per-unit log file.
type Meter interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// CallRecord is one metered generation call.
type CallRecord struct {
	Unit  string
	Stage string
	Model string
	Usage llm.Usage
	At    time.Time
}

// Context is the read-only grading context shared by every unit in a run.
type Context struct {
	ProblemStatement string
	Rubric           string
}

// Unit is a single program file to be annotated.
type Unit struct {
	// AbsPath locates the file on disk.
	AbsPath string
	// RelPath identifies the unit within its submission; artifacts are
	// keyed by it.
	RelPath string
	// Source is the original text. It is never modified; the merger only
	// inserts comment blocks between its lines.
	Source string
}

// LineCount returns the number of physical lines in the unit.
func (u Unit) LineCount() int {
	if u.Source == "" {
		return 0
	}
	n := strings.Count(u.Source, "\n")
	if !strings.HasSuffix(u.Source, "\n") {
		n++
	}
	return n
}

type nopLogger struct{}

func (nopLogger) LogInfo(context.Context, string, map[string]interface{})    {}
func (nopLogger) LogWarning(context.Context, string, map[string]interface{}) {}
