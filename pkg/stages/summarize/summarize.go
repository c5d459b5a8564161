// Package summarize implements the summary stage.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

// Stage folds accepted captions into a summary with a text oracle.
type Stage struct {
	generator ports.TextGenerator
	sink      ports.DebugSink
	logger    ports.Logger
}

// NewStage creates a new summarize stage.
func NewStage(generator ports.TextGenerator, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		generator: generator,
		sink:      sink,
		logger:    logger.WithComponent("summarize"),
	}
}

// Execute builds the prompt and asks the oracle for a summary. The oracle
// is called even when there are no captions. Oracle failure is fatal.
func (s *Stage) Execute(ctx context.Context, input pipeline.SummarizeInput) (pipeline.SummarizeResult, error) {
	prompt := BuildPrompt(input.Captions)
	s.logger.Debug("Summarizing %d captions", len(input.Captions))

	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return pipeline.SummarizeResult{}, fmt.Errorf("summarize: %w", err)
	}
	summary := strings.TrimSpace(response)

	if s.sink.Enabled() {
		if err := s.sink.SaveSummary(summary); err != nil {
			s.logger.Warn("Failed to save summary: %v", err)
		}
	}

	return pipeline.SummarizeResult{Prompt: prompt, Summary: summary}, nil
}

// BuildPrompt returns the fixed instruction followed by the joined captions.
func BuildPrompt(captions []pipeline.CaptionRecord) string {
	return pipeline.SummaryInstruction + pipeline.JoinCaptions(captions)
}
