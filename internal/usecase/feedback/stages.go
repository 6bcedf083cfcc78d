package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppansari/feedbackgen/internal/adapter/llm"
	llmhttp "github.com/ppansari/feedbackgen/internal/adapter/llm/http"
	"github.com/ppansari/feedbackgen/internal/artifact"
	"github.com/ppansari/feedbackgen/internal/domain"
)

// Stage labels used in the per-unit token log.
const (
	logStageDraft      = "Draft"
	logStageReview     = "Review"
	logStageSummarizer = "Summarizer"
)

// Pipeline executes the generation stages for submission units of one
// submission. All collaborators are explicit dependencies; the pipeline owns
// no global state.
type Pipeline struct {
	gen             Generator
	model           string
	summarizerModel string
	layout          *artifact.Layout
	logger          Logger
	meter           Meter
	now             func() time.Time
}

// PipelineOptions configures a Pipeline. Logger, Meter and Now are optional.
type PipelineOptions struct {
	Generator       Generator
	Model           string
	SummarizerModel string
	Layout          *artifact.Layout
	Logger          Logger
	Meter           Meter
	Now             func() time.Time
}

// NewPipeline constructs a Pipeline for one submission.
func NewPipeline(opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		gen:             opts.Generator,
		model:           opts.Model,
		summarizerModel: opts.SummarizerModel,
		layout:          opts.Layout,
		logger:          logger,
		meter:           opts.Meter,
		now:             now,
	}
}

// Draft generates the initial feedback bundle for a unit from its provenance
// document and persists it as the unit's draft artifact. The call is
// schema-constrained: a response that does not deserialize and validate
// against the bundle schema is fatal for the unit. The Draft call truncates
// the unit's token log.
func (p *Pipeline) Draft(ctx context.Context, unit Unit, document string, fbCtx Context, withSummary bool) (domain.FeedbackBundle, error) {
	schemaName, schema := BundleSchema(withSummary)
	prompt := BuildDraftPrompt(fbCtx, document, withSummary)

	p.logger.LogInfo(ctx, "draft stage starting", map[string]interface{}{
		"unit":             unit.RelPath,
		"model":            p.model,
		"estimated_tokens": llm.EstimateTokens(prompt),
	})

	bundle, usage, err := p.generateBundle(ctx, prompt, schemaName, schema, unit, withSummary)
	if err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("draft stage for %s: %w", unit.RelPath, err)
	}

	if err := artifact.SaveBundle(p.layout.DraftPath(unit.RelPath), bundle); err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("persist draft for %s: %w", unit.RelPath, err)
	}
	if err := p.recordCall(ctx, unit, logStageDraft, p.model, usage, true); err != nil {
		return domain.FeedbackBundle{}, err
	}
	return bundle, nil
}

// Review refines the draft bundle into the authoritative final bundle. It
// reads the draft from its persisted artifact, never from an in-memory
// handle, so the two stages can run as separate invocations; invoking Review
// before Draft has persisted its artifact fails with a missing-artifact
// error. linterDigest may be empty.
func (p *Pipeline) Review(ctx context.Context, unit Unit, document, linterDigest string, fbCtx Context, withSummary bool) (domain.FeedbackBundle, error) {
	draft, err := artifact.LoadBundle(p.layout.DraftPath(unit.RelPath))
	if err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("review stage for %s: %w", unit.RelPath, err)
	}
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("serialize draft for %s: %w", unit.RelPath, err)
	}

	schemaName, schema := BundleSchema(withSummary)
	prompt := BuildReviewPrompt(fbCtx, document, string(draftJSON), linterDigest)

	p.logger.LogInfo(ctx, "review stage starting", map[string]interface{}{
		"unit":              unit.RelPath,
		"model":             p.model,
		"draft_annotations": len(draft.Annotations),
		"estimated_tokens":  llm.EstimateTokens(prompt),
	})

	bundle, usage, err := p.generateBundle(ctx, prompt, schemaName, schema, unit, withSummary)
	if err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("review stage for %s: %w", unit.RelPath, err)
	}

	if err := artifact.SaveBundle(p.layout.FinalPath(unit.RelPath), bundle); err != nil {
		return domain.FeedbackBundle{}, fmt.Errorf("persist final bundle for %s: %w", unit.RelPath, err)
	}
	if err := p.recordCall(ctx, unit, logStageReview, p.model, usage, false); err != nil {
		return domain.FeedbackBundle{}, err
	}
	return bundle, nil
}

// CondenseLinter turns raw linter output into a short digest via a free-text
// call to the summarizer model. The digest feeds the Review prompt for
// single-file submissions.
func (p *Pipeline) CondenseLinter(ctx context.Context, unit Unit, linterOutput string) (string, error) {
	resp, err := p.gen.Generate(ctx, GenerateRequest{
		Model:      p.summarizerModel,
		UserPrompt: BuildLinterDigestPrompt(linterOutput),
	})
	if err != nil {
		return "", fmt.Errorf("condense linter output for %s: %w", unit.RelPath, err)
	}
	if p.meter != nil {
		rec := CallRecord{Unit: unit.RelPath, Stage: "Linter", Model: p.summarizerModel, Usage: resp.Usage, At: p.now()}
		if err := p.meter.RecordCall(ctx, rec); err != nil {
			return "", fmt.Errorf("record linter call for %s: %w", unit.RelPath, err)
		}
	}
	return resp.Text, nil
}

// ReformatSummary passes the final summary through a smaller structured call
// so it reads well as a trailing comment block. ext names the source
// language (e.g. ".c").
func (p *Pipeline) ReformatSummary(ctx context.Context, unit Unit, ext string, summary domain.Summary) (domain.Summary, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("serialize summary for %s: %w", unit.RelPath, err)
	}

	schemaName, schema := SummarySchema()
	resp, err := p.gen.Generate(ctx, GenerateRequest{
		Model:      p.summarizerModel,
		UserPrompt: BuildSummaryReformatPrompt(ext, string(summaryJSON)),
		SchemaName: schemaName,
		Schema:     schema,
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("reformat summary for %s: %w", unit.RelPath, err)
	}

	var reformatted domain.Summary
	if err := llmhttp.DecodeStrict("summarizer", resp.Text, &reformatted); err != nil {
		return domain.Summary{}, fmt.Errorf("reformat summary for %s: %w", unit.RelPath, err)
	}

	if err := p.recordCall(ctx, unit, logStageSummarizer, p.summarizerModel, resp.Usage, false); err != nil {
		return domain.Summary{}, err
	}
	return reformatted, nil
}

func (p *Pipeline) generateBundle(ctx context.Context, prompt, schemaName string, schema json.RawMessage, unit Unit, withSummary bool) (domain.FeedbackBundle, llm.Usage, error) {
	resp, err := p.gen.Generate(ctx, GenerateRequest{
		Model:        p.model,
		SystemPrompt: SystemPrompt(),
		UserPrompt:   prompt,
		SchemaName:   schemaName,
		Schema:       schema,
	})
	if err != nil {
		return domain.FeedbackBundle{}, llm.Usage{}, err
	}

	var bundle domain.FeedbackBundle
	if err := llmhttp.DecodeStrict("annotator", resp.Text, &bundle); err != nil {
		return domain.FeedbackBundle{}, llm.Usage{}, err
	}
	if err := bundle.Validate(unit.LineCount(), withSummary); err != nil {
		return domain.FeedbackBundle{}, llm.Usage{}, llmhttp.NewSchemaViolationError("annotator", err.Error())
	}
	return bundle, resp.Usage, nil
}

func (p *Pipeline) recordCall(ctx context.Context, unit Unit, stage, model string, usage llm.Usage, truncate bool) error {
	entry := artifact.CallLogEntry{Stage: stage, Usage: usage, At: p.now()}
	if err := artifact.AppendCallLog(p.layout.LogPath(unit.RelPath), truncate, entry); err != nil {
		return fmt.Errorf("write token log for %s: %w", unit.RelPath, err)
	}
	if p.meter != nil {
		rec := CallRecord{Unit: unit.RelPath, Stage: stage, Model: model, Usage: usage, At: entry.At}
		if err := p.meter.RecordCall(ctx, rec); err != nil {
			return fmt.Errorf("record %s call for %s: %w", stage, unit.RelPath, err)
		}
	}
	p.logger.LogInfo(ctx, "generation call finished", map[string]interface{}{
		"unit":              unit.RelPath,
		"stage":             stage,
		"prompt_tokens":     usage.PromptTokens,
		"cached_tokens":     usage.CachedTokens,
		"completion_tokens": usage.CompletionTokens,
	})
	return nil
}
