package main

import (
	"fmt"

	"github.com/user/framescribe/pkg/adapters/filesink"
	"github.com/user/framescribe/pkg/adapters/ggrenderer"
	"github.com/user/framescribe/pkg/adapters/httpfetch"
	"github.com/user/framescribe/pkg/adapters/hybridcompare"
	"github.com/user/framescribe/pkg/adapters/nullsink"
	"github.com/user/framescribe/pkg/adapters/ollama"
	"github.com/user/framescribe/pkg/adapters/throttle"
	"github.com/user/framescribe/pkg/config"
	"github.com/user/framescribe/pkg/media"
	"github.com/user/framescribe/pkg/orchestrator"
	"github.com/user/framescribe/pkg/ports"
	"github.com/user/framescribe/pkg/stages/caption"
	"github.com/user/framescribe/pkg/stages/decode"
	"github.com/user/framescribe/pkg/stages/summarize"
)

// buildOrchestrator wires adapters and stages from cfg.
func buildOrchestrator(cfg config.Config, fs ports.FileSystem, metrics ports.Metrics, log ports.Logger) (*orchestrator.Orchestrator, error) {
	// Debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if exists, _ := fs.Exists(cfg.DebugDir); !exists {
			if err := fs.MkdirAll(cfg.DebugDir); err != nil {
				return nil, fmt.Errorf("create debug directory: %w", err)
			}
		}
		sink = filesink.New(cfg.DebugDir, fs, ggrenderer.New())
	} else {
		sink = nullsink.New()
	}

	// Oracles
	client, err := ollama.New(cfg.OllamaOptions())
	if err != nil {
		return nil, err
	}
	var (
		captioner ports.Captioner     = client
		generator ports.TextGenerator = client
	)
	if limiter := throttle.NewLimiter(cfg.Ollama.RatePerSec, cfg.Ollama.Burst); limiter != nil {
		captioner = throttle.NewCaptioner(client, limiter)
		generator = throttle.NewTextGenerator(client, limiter)
	}

	// Stages
	decodeStage := decode.NewStage(media.NewOpener(log), log)
	captionStage := caption.NewStage(captioner, hybridcompare.New(), sink, metrics, log)
	summarizeStage := summarize.NewStage(generator, sink, log)

	return orchestrator.New(
		httpfetch.New(cfg.FetchOptions()),
		decodeStage,
		captionStage,
		summarizeStage,
		metrics,
		log,
	), nil
}
