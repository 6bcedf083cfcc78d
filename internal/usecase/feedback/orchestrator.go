package feedback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppansari/feedbackgen/internal/artifact"
	"github.com/ppansari/feedbackgen/internal/domain"
	"github.com/ppansari/feedbackgen/internal/usecase/merge"
)

// ChangeAnalyzer produces the change set for a repo submission, plus the raw
// diff text for persistence. The change set is computed once per invocation
// and treated as immutable afterwards.
type ChangeAnalyzer interface {
	Analyze(ctx context.Context, baselineDir, submissionDir string) (domain.ChangeSet, string, error)
}

// Settings carries the path and model configuration the orchestrator needs.
type Settings struct {
	ProblemStatementPath string
	RubricPath           string
	InputDir             string
	IntermediateDir      string
	OutputDir            string
	Model                string
	SummarizerModel      string
	WrapWidth            int
	Extension            string
}

// Orchestrator drives the full per-unit pipeline: Draft, then Review, then
// merge, strictly in that order. Units are processed sequentially; every
// external failure aborts the whole run rather than skipping the unit.
type Orchestrator struct {
	gen      Generator
	analyzer ChangeAnalyzer
	linter   Linter
	meter    Meter
	logger   Logger
	merger   *merge.Merger
	settings Settings
}

// OrchestratorOptions configures an Orchestrator. Analyzer is required for
// repo mode, Linter for the single-file linter digest; Meter and Logger are
// optional.
type OrchestratorOptions struct {
	Generator Generator
	Analyzer  ChangeAnalyzer
	Linter    Linter
	Meter     Meter
	Logger    Logger
	Settings  Settings
}

// NewOrchestrator wires up an Orchestrator from explicit dependencies.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Orchestrator{
		gen:      opts.Generator,
		analyzer: opts.Analyzer,
		linter:   opts.Linter,
		meter:    opts.Meter,
		logger:   logger,
		merger:   merge.NewMerger(opts.Settings.WrapWidth),
		settings: opts.Settings,
	}
}

// RunSingle generates feedback for a single-file submission: linter digest,
// Draft, Review, then an annotated copy of the source with a trailing
// summary block.
func (o *Orchestrator) RunSingle(ctx context.Context, file string) error {
	fbCtx, err := o.loadContext()
	if err != nil {
		return err
	}

	layout, err := artifact.ForSubmission(o.settings.InputDir, o.settings.IntermediateDir, o.settings.OutputDir, file, true)
	if err != nil {
		return err
	}
	if err := layout.Reset(); err != nil {
		return err
	}

	unit, err := o.loadUnit(file, filepath.Base(file))
	if err != nil {
		return err
	}
	pipeline := o.newPipeline(layout)
	run := domain.NewPipelineRun(unit.RelPath)

	var linterDigest string
	if o.linter != nil {
		raw, err := o.linter.Lint(ctx, file)
		if err != nil {
			return err
		}
		if err := artifact.WriteFile(layout.LinterPath(unit.RelPath), raw); err != nil {
			return err
		}
		linterDigest, err = pipeline.CondenseLinter(ctx, unit, raw)
		if err != nil {
			return err
		}
	}

	document := RenderProvenance(unit.Source, nil)

	if _, err := pipeline.Draft(ctx, unit, document, fbCtx, true); err != nil {
		return err
	}
	run.Advance(domain.StageDraft)
	run.DraftPath = layout.DraftPath(unit.RelPath)

	if _, err := pipeline.Review(ctx, unit, document, linterDigest, fbCtx, true); err != nil {
		return err
	}
	run.Advance(domain.StageReviewed)
	run.FinalPath = layout.FinalPath(unit.RelPath)

	// The merge step reads the persisted final artifact, not the in-memory
	// bundle; a missing or corrupt artifact is fatal here.
	bundle, err := artifact.LoadBundle(run.FinalPath)
	if err != nil {
		return err
	}

	merged := o.merger.MergeLines(unit.Source, bundle.Annotations)
	if bundle.Summary != nil {
		reformatted, err := pipeline.ReformatSummary(ctx, unit, filepath.Ext(file), *bundle.Summary)
		if err != nil {
			return err
		}
		merged += o.merger.SummaryBlock(reformatted)
	}

	outPath := layout.SingleOutputPath(unit.RelPath)
	if err := artifact.WriteFile(outPath, merged); err != nil {
		return err
	}
	run.Advance(domain.StageMerged)

	o.logger.LogInfo(ctx, "feedback generation complete", map[string]interface{}{
		"unit":   unit.RelPath,
		"output": outPath,
	})
	return nil
}

// RunRepo generates feedback for a submission made as changes against a
// baseline tree. Each qualifying changed file goes through the full
// pipeline; all units append into one shared feedback file.
func (o *Orchestrator) RunRepo(ctx context.Context, baselineDir, submissionDir string) error {
	fbCtx, err := o.loadContext()
	if err != nil {
		return err
	}

	layout, err := artifact.ForSubmission(o.settings.InputDir, o.settings.IntermediateDir, o.settings.OutputDir, submissionDir, false)
	if err != nil {
		return err
	}
	if err := layout.Reset(); err != nil {
		return err
	}

	changes, diffText, err := o.analyzer.Analyze(ctx, baselineDir, submissionDir)
	if err != nil {
		return err
	}
	if err := artifact.WriteFile(layout.DiffPath(), diffText); err != nil {
		return err
	}

	pipeline := o.newPipeline(layout)
	aggregatePath := layout.AggregateOutputPath(o.settings.Extension)

	for _, rel := range changes.SortedPaths() {
		change := changes.Files[rel]
		unit, err := o.loadUnit(filepath.Join(submissionDir, rel), rel)
		if err != nil {
			return err
		}
		run := domain.NewPipelineRun(unit.RelPath)

		o.logger.LogInfo(ctx, "processing unit", map[string]interface{}{
			"unit":          rel,
			"kind":          change.Kind,
			"changed_lines": change.ChangedLineCount(),
		})

		document := RenderProvenance(unit.Source, change.LineNumbers)

		if _, err := pipeline.Draft(ctx, unit, document, fbCtx, false); err != nil {
			return err
		}
		run.Advance(domain.StageDraft)

		if _, err := pipeline.Review(ctx, unit, document, "", fbCtx, false); err != nil {
			return err
		}
		run.Advance(domain.StageReviewed)

		bundle, err := artifact.LoadBundle(layout.FinalPath(rel))
		if err != nil {
			return err
		}
		if len(bundle.Annotations) == 0 {
			o.logger.LogInfo(ctx, "no annotations survived review, skipping output", map[string]interface{}{"unit": rel})
			continue
		}

		if err := o.merger.AppendAggregate(aggregatePath, filepath.Base(rel), unit.Source, bundle.Annotations); err != nil {
			return err
		}
		run.Advance(domain.StageMerged)
	}

	o.logger.LogInfo(ctx, "feedback generation complete", map[string]interface{}{
		"submission": submissionDir,
		"output":     aggregatePath,
	})
	return nil
}

func (o *Orchestrator) newPipeline(layout *artifact.Layout) *Pipeline {
	return NewPipeline(PipelineOptions{
		Generator:       o.gen,
		Model:           o.settings.Model,
		SummarizerModel: o.settings.SummarizerModel,
		Layout:          layout,
		Logger:          o.logger,
		Meter:           o.meter,
	})
}

// loadContext reads the problem statement and rubric. A missing file is a
// configuration error and aborts the run before any unit is processed.
func (o *Orchestrator) loadContext() (Context, error) {
	problem, err := os.ReadFile(o.settings.ProblemStatementPath)
	if err != nil {
		return Context{}, fmt.Errorf("problem statement %s: %w", o.settings.ProblemStatementPath, err)
	}
	rubric, err := os.ReadFile(o.settings.RubricPath)
	if err != nil {
		return Context{}, fmt.Errorf("rubric %s: %w", o.settings.RubricPath, err)
	}
	return Context{ProblemStatement: string(problem), Rubric: string(rubric)}, nil
}

func (o *Orchestrator) loadUnit(absPath, relPath string) (Unit, error) {
	source, err := os.ReadFile(absPath)
	if err != nil {
		return Unit{}, fmt.Errorf("read submission file %s: %w", absPath, err)
	}
	return Unit{AbsPath: absPath, RelPath: relPath, Source: string(source)}, nil
}
