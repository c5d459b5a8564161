// Package report builds human-readable reports of describe runs.
package report

import (
	"time"

	"github.com/user/framescribe/pkg/orchestrator"
	"github.com/user/framescribe/pkg/pipeline"
)

// Report contains everything known about one describe run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Source
	Source SourceInfo

	// Frame accounting
	Frames pipeline.FrameStats

	// Accepted captions in frame order
	Captions []pipeline.CaptionRecord

	// Settings the run used
	Settings Settings

	Summary string

	// Partial run information
	Partial    bool
	StopReason string

	// Failure, if the run did not produce a summary
	Err string

	ElapsedMs int64
	Timings   []StageTiming
}

// StageTiming is the wall time of one pipeline stage.
type StageTiming struct {
	Stage string
	Ms    int64
}

// SourceInfo describes the fetched media.
type SourceInfo struct {
	URL         string
	Format      string
	Description string
	Extensions  []string
}

// Settings contains the captioning configuration.
type Settings struct {
	Threshold     float64
	MinConfidence float32
	MaxCaptions   int
	CaptionModel  string
	SummaryModel  string
}

// NewReport creates a new Report with the current timestamp.
func NewReport() *Report {
	return &Report{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Report.
type Builder struct {
	report *Report
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		report: NewReport(),
	}
}

// WithRun copies the outcome of a pipeline run.
func (b *Builder) WithRun(result orchestrator.RunResult) *Builder {
	r := b.report
	r.RunID = result.RunID
	r.Source = SourceInfo{
		URL:         result.URL,
		Format:      result.Media.Name,
		Description: result.Media.Description,
		Extensions:  result.Media.Extensions,
	}
	r.Frames = result.Stats
	r.Captions = result.Captions
	r.Summary = result.Summary
	r.Partial = result.Partial
	r.StopReason = result.StopReason
	r.ElapsedMs = result.Elapsed.Milliseconds()
	r.Timings = r.Timings[:0]
	for _, stage := range []string{orchestrator.StageDecode, orchestrator.StageCaption, orchestrator.StageSummarize} {
		if d, ok := result.Timings[stage]; ok {
			r.Timings = append(r.Timings, StageTiming{Stage: stage, Ms: d.Milliseconds()})
		}
	}
	return b
}

// WithError records the error that ended the run.
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.report.Err = err.Error()
	}
	return b
}

// WithSettings sets the captioning settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.report.Settings = settings
	return b
}

// WithGeneratedAt overrides the report timestamp.
func (b *Builder) WithGeneratedAt(t time.Time) *Builder {
	b.report.GeneratedAt = t
	return b
}

// Build returns the constructed Report.
func (b *Builder) Build() *Report {
	return b.report
}
