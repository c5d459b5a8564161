// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

// ErrSummarize marks a failure of the summary oracle. It is fatal to a run.
var ErrSummarize = errors.New("summarize stage")

// Config contains the per-run configuration.
type Config struct {
	// Input
	URL string

	// Captioning
	Threshold     float64
	MinConfidence float32
	MaxCaptions   int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	opts := pipeline.DefaultCaptionOptions()
	return Config{
		Threshold:     opts.Threshold,
		MinConfidence: opts.MinConfidence,
		MaxCaptions:   opts.MaxCaptions,
	}
}

// Run outcomes reported to Metrics.
const (
	OutcomeOK           = "ok"
	OutcomeUnrecognized = "unrecognized"
	OutcomeUnsupported  = "unsupported"
	OutcomeOutOfMemory  = "out_of_memory"
	OutcomeIO           = "io"
	OutcomeNative       = "native"
	OutcomeSummarize    = "summarize"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	fetcher        ports.Fetcher
	decodeStage    pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	captionStage   pipeline.Stage[pipeline.CaptionInput, pipeline.CaptionResult]
	summarizeStage pipeline.Stage[pipeline.SummarizeInput, pipeline.SummarizeResult]
	metrics        ports.Metrics
	logger         ports.Logger
}

// New creates a new Orchestrator.
func New(
	fetcher ports.Fetcher,
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	captionStage pipeline.Stage[pipeline.CaptionInput, pipeline.CaptionResult],
	summarizeStage pipeline.Stage[pipeline.SummarizeInput, pipeline.SummarizeResult],
	metrics ports.Metrics,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:        fetcher,
		decodeStage:    decodeStage,
		captionStage:   captionStage,
		summarizeStage: summarizeStage,
		metrics:        metrics,
		logger:         logger,
	}
}

// Run fetches config.URL and produces a summary of its video content.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	start := time.Now()
	result := RunResult{
		RunID:   uuid.NewString(),
		URL:     config.URL,
		Timings: make(map[string]time.Duration),
	}

	err := o.run(ctx, config, &result)
	result.Elapsed = time.Since(start)

	outcome := Classify(err)
	o.metrics.ObserveRun(outcome, result.Elapsed)
	if err != nil {
		o.logger.Error("Run %s failed: %s", result.RunID, err)
		return result, err
	}

	o.logger.Info("Run %s completed in %d ms", result.RunID, result.Elapsed.Milliseconds())
	return result, nil
}

// Stage names used for timings and metrics.
const (
	StageDecode    = "decode"
	StageCaption   = "caption"
	StageSummarize = "summarize"
)

func (o *Orchestrator) run(ctx context.Context, config Config, result *RunResult) error {
	o.logger.Info("Describing %s (run %s)", config.URL, result.RunID)

	observe := pipeline.Observer(func(name string, elapsed time.Duration, _ error) {
		result.Timings[name] = elapsed
		o.metrics.ObserveStage(name, elapsed)
		o.logger.Debug("Stage %s finished in %d ms", name, elapsed.Milliseconds())
	})
	decodeStage := pipeline.Timed(StageDecode, o.decodeStage, observe)
	captionStage := pipeline.Timed(StageCaption, o.captionStage, observe)
	summarizeStage := pipeline.Timed(StageSummarize, o.summarizeStage, observe)

	// 1. Fetch
	body, err := o.fetcher.Open(ctx, config.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("fetch: %w", &ports.IOError{Op: "fetch", Err: err})
	}
	closeBody := closeOnce(body)
	defer closeBody()

	// 2. Decode
	decoded, err := decodeStage.Execute(ctx, pipeline.DecodeInput{Body: body})
	if err != nil {
		return fmt.Errorf("decode stage: %w", err)
	}
	result.Media = decoded.Media
	o.logger.Info("Detected %s", decoded.Media.Description)

	// The decode goroutine may be blocked reading the body, so the body is
	// closed before waiting for it.
	stopped := false
	stopDecode := func() {
		if stopped {
			return
		}
		stopped = true
		decoded.Frames.Close()
		closeBody()
		decoded.Frames.Wait()
	}
	defer stopDecode()

	// 3. Caption
	captioned, err := captionStage.Execute(ctx, pipeline.CaptionInput{
		Frames: decoded.Frames,
		Options: pipeline.CaptionOptions{
			Threshold:     config.Threshold,
			MinConfidence: config.MinConfidence,
			MaxCaptions:   config.MaxCaptions,
		},
	})
	stopDecode()
	if err != nil {
		return fmt.Errorf("caption stage: %w", err)
	}
	result.Captions = captioned.Captions
	result.Stats = captioned.Stats
	if captioned.StopErr != nil {
		result.Partial = true
		result.StopReason = captioned.StopErr.Error()
		o.logger.Warn("Decoding stopped early: %s", captioned.StopErr)
	}
	o.logger.Info("Accepted %d captions from %d frames", len(captioned.Captions), captioned.Stats.Received)

	// 4. Summarize
	summarized, err := summarizeStage.Execute(ctx, pipeline.SummarizeInput{Captions: captioned.Captions})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSummarize, err)
	}
	result.Prompt = summarized.Prompt
	result.Summary = summarized.Summary
	return nil
}

func closeOnce(c io.Closer) func() {
	closed := false
	return func() {
		if !closed {
			closed = true
			c.Close()
		}
	}
}

// Classify maps a run error to a metrics outcome label.
func Classify(err error) string {
	var (
		ioErr     *ports.IOError
		nativeErr *ports.NativeError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, ports.ErrFormatUnrecognized):
		return OutcomeUnrecognized
	case errors.Is(err, ports.ErrPlatformNotSupported):
		return OutcomeUnsupported
	case errors.Is(err, ports.ErrOutOfMemory):
		return OutcomeOutOfMemory
	case errors.As(err, &ioErr):
		return OutcomeIO
	case errors.As(err, &nativeErr):
		return OutcomeNative
	case errors.Is(err, ErrSummarize):
		return OutcomeSummarize
	default:
		return OutcomeError
	}
}

// RunResult contains the results of a pipeline run.
type RunResult struct {
	RunID string
	URL   string

	// Media information
	Media ports.MediaInfo

	// Captioning
	Captions   []pipeline.CaptionRecord
	Stats      pipeline.FrameStats
	Partial    bool   // Decoding stopped on an error; captions are a prefix
	StopReason string // Error that stopped decoding, if Partial

	// Summary
	Prompt  string
	Summary string

	Timings map[string]time.Duration // Wall time per stage
	Elapsed time.Duration
}
