package feedback

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/ppansari/feedbackgen/internal/adapter/llm/http"
	"github.com/ppansari/feedbackgen/internal/artifact"
	"github.com/ppansari/feedbackgen/internal/domain"
)

const validBundleJSON = `{
	"annotations": [
		{
			"line_number": 1,
			"category": "code_readability",
			"comment": "Name the variable after what it counts.",
			"severity": "suggestion"
		}
	]
}`

// scriptedGenerator replays canned responses in order and records every
// request it sees.
type scriptedGenerator struct {
	responses []GenerateResponse
	errs      []error
	requests  []GenerateRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return GenerateResponse{}, g.errs[i]
	}
	if i >= len(g.responses) {
		return GenerateResponse{}, errors.New("scripted generator exhausted")
	}
	return g.responses[i], nil
}

type captureMeter struct {
	records []CallRecord
}

func (m *captureMeter) RecordCall(ctx context.Context, rec CallRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func testPipeline(t *testing.T, gen Generator, meter Meter) (*Pipeline, *artifact.Layout) {
	t.Helper()
	layout := &artifact.Layout{
		IntermediateDir: t.TempDir(),
		OutputDir:       t.TempDir(),
	}
	p := NewPipeline(PipelineOptions{
		Generator:       gen,
		Model:           "gpt-4o",
		SummarizerModel: "gpt-4o-mini",
		Layout:          layout,
		Meter:           meter,
		Now:             func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return p, layout
}

func testUnit() Unit {
	return Unit{AbsPath: "/tmp/prog.c", RelPath: "prog.c", Source: "int main(void) {\n    return 0;\n}\n"}
}

func TestDraftPersistsArtifactAndTruncatesLog(t *testing.T) {
	gen := &scriptedGenerator{responses: []GenerateResponse{
		{Text: validBundleJSON},
		{Text: validBundleJSON},
	}}
	p, layout := testPipeline(t, gen, nil)
	unit := testUnit()

	bundle, err := p.Draft(context.Background(), unit, "1 | + int main(void) {", testContext(), false)
	require.NoError(t, err)
	require.Len(t, bundle.Annotations, 1)

	persisted, err := artifact.LoadBundle(layout.DraftPath(unit.RelPath))
	require.NoError(t, err)
	assert.Equal(t, bundle, persisted)

	// A second Draft starts the log over.
	_, err = p.Draft(context.Background(), unit, "1 | + int main(void) {", testContext(), false)
	require.NoError(t, err)

	logData, err := os.ReadFile(layout.LogPath(unit.RelPath))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(logData), "\n"), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Draft")
}

func TestReviewRequiresPersistedDraft(t *testing.T) {
	gen := &scriptedGenerator{}
	p, _ := testPipeline(t, gen, nil)

	_, err := p.Review(context.Background(), testUnit(), "1 | + int main(void) {", "", testContext(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, gen.requests, "no generation call should happen without a draft")
}

func TestReviewEmbedsDraftAndAppendsLog(t *testing.T) {
	gen := &scriptedGenerator{responses: []GenerateResponse{
		{Text: validBundleJSON},
		{Text: validBundleJSON},
	}}
	meter := &captureMeter{}
	p, layout := testPipeline(t, gen, meter)
	unit := testUnit()

	_, err := p.Draft(context.Background(), unit, "1 | + int main(void) {", testContext(), false)
	require.NoError(t, err)
	_, err = p.Review(context.Background(), unit, "1 | + int main(void) {", "unused variable", testContext(), false)
	require.NoError(t, err)

	require.Len(t, gen.requests, 2)
	reviewPrompt := gen.requests[1].UserPrompt
	assert.Contains(t, reviewPrompt, `"line_number":1`)
	assert.Contains(t, reviewPrompt, "<linter>\nunused variable\n</linter>")

	_, err = artifact.LoadBundle(layout.FinalPath(unit.RelPath))
	require.NoError(t, err)

	logData, err := os.ReadFile(layout.LogPath(unit.RelPath))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(logData), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Draft")
	assert.Contains(t, lines[1], "Review")

	require.Len(t, meter.records, 2)
	assert.Equal(t, "Draft", meter.records[0].Stage)
	assert.Equal(t, "Review", meter.records[1].Stage)
}

func TestDraftRejectsSchemaViolatingResponse(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unknown field", `{"annotations": [], "extra": true}`},
		{"line out of range", `{"annotations": [{"line_number": 99, "category": "code_readability", "comment": "x", "severity": "suggestion"}]}`},
		{"bad category", `{"annotations": [{"line_number": 1, "category": "style", "comment": "x", "severity": "suggestion"}]}`},
		{"not json", "the code looks fine to me"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &scriptedGenerator{responses: []GenerateResponse{{Text: tc.text}}}
			p, _ := testPipeline(t, gen, nil)

			_, err := p.Draft(context.Background(), testUnit(), "doc", testContext(), false)
			require.Error(t, err)
			var typed *llmhttp.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, llmhttp.ErrTypeSchemaViolation, typed.Type)
		})
	}
}

func TestDraftRequiresSummaryWhenRequested(t *testing.T) {
	gen := &scriptedGenerator{responses: []GenerateResponse{{Text: validBundleJSON}}}
	p, _ := testPipeline(t, gen, nil)

	_, err := p.Draft(context.Background(), testUnit(), "doc", testContext(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary")
}

func TestCondenseLinterMetersWithoutLogging(t *testing.T) {
	gen := &scriptedGenerator{responses: []GenerateResponse{{Text: "condensed digest"}}}
	meter := &captureMeter{}
	p, layout := testPipeline(t, gen, meter)
	unit := testUnit()

	digest, err := p.CondenseLinter(context.Background(), unit, "raw linter noise")
	require.NoError(t, err)
	assert.Equal(t, "condensed digest", digest)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "gpt-4o-mini", gen.requests[0].Model)
	assert.Nil(t, gen.requests[0].Schema, "linter digestion is a free-text call")

	require.Len(t, meter.records, 1)
	assert.Equal(t, "Linter", meter.records[0].Stage)

	_, err = os.Stat(layout.LogPath(unit.RelPath))
	assert.True(t, os.IsNotExist(err), "the token log belongs to Draft and Review only")
}

func TestReformatSummary(t *testing.T) {
	gen := &scriptedGenerator{responses: []GenerateResponse{
		{Text: `{"strengths": "clear", "areas_for_improvement": "naming", "overall_assessment": "solid"}`},
	}}
	meter := &captureMeter{}
	p, _ := testPipeline(t, gen, meter)

	got, err := p.ReformatSummary(context.Background(), testUnit(), ".c", domain.Summary{
		Strengths: "ok", AreasForImprovement: "ok", OverallAssessment: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "clear", got.Strengths)
	assert.Equal(t, "naming", got.AreasForImprovement)
	assert.Equal(t, "solid", got.OverallAssessment)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "feedback_summary", gen.requests[0].SchemaName)
	assert.Equal(t, "gpt-4o-mini", gen.requests[0].Model)

	require.Len(t, meter.records, 1)
	assert.Equal(t, "Summarizer", meter.records[0].Stage)
}
