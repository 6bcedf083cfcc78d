package domain

// Stage identifies how far a submission unit has progressed through the
// feedback pipeline.
type Stage string

const (
	StageDraft    Stage = "draft"
	StageReviewed Stage = "reviewed"
	StageMerged   Stage = "merged"
)

// PipelineRun ties a submission unit to its current stage and the persisted
// intermediate artifacts, keyed by the unit's submission-relative path. It
// exists so a run can be inspected between stages.
type PipelineRun struct {
	Unit      string
	Stage     Stage
	DraftPath string
	FinalPath string
}

// NewPipelineRun starts tracking a unit before any stage has executed.
func NewPipelineRun(unit string) *PipelineRun {
	return &PipelineRun{Unit: unit}
}

// Advance records completion of a stage. Stages only move forward.
func (r *PipelineRun) Advance(stage Stage) {
	r.Stage = stage
}
