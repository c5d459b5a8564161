// Package main provides the CLI entry point for framescribe.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/framescribe/pkg/adapters/codecdetect"
	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/adapters/osfilesystem"
	"github.com/user/framescribe/pkg/adapters/prommetrics"
	"github.com/user/framescribe/pkg/config"
	"github.com/user/framescribe/pkg/describer"
	"github.com/user/framescribe/pkg/media"
	"github.com/user/framescribe/pkg/ports"
	"github.com/user/framescribe/pkg/report"
	"github.com/user/framescribe/pkg/server"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Globals

	Describe DescribeCmd `cmd:"" help:"Describe the video content of one or more URLs."`
	Probe    ProbeCmd    `cmd:"" help:"Identify the container format of a local file."`
	Serve    ServeCmd    `cmd:"" help:"Serve describe requests over HTTP."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Globals are flags shared by all commands.
type Globals struct {
	Config string `short:"C" type:"existingfile" help:"YAML configuration file." group:"Configuration"`

	// Captioning overrides
	Threshold     *float64 `help:"Similarity to the previous frame above which a frame is skipped (0-1)." group:"Captioning"`
	MinConfidence *float32 `help:"Minimum caption confidence (0-1)." group:"Captioning"`
	MaxCaptions   *int     `help:"Maximum number of accepted captions." group:"Captioning"`

	// Oracle overrides
	OllamaURL    string `help:"Ollama server address (default: OLLAMA_HOST, then http://127.0.0.1:11434)." group:"Oracles"`
	CaptionModel string `help:"Model used to caption frames." group:"Oracles"`
	SummaryModel string `help:"Model used to summarize captions." group:"Oracles"`

	// Debug options
	Debug    bool   `short:"d" help:"Enable debug output." group:"Debug"`
	DebugDir string `help:"Directory for debug output." group:"Debug"`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error; default from config, info)." group:"Logging"`
	Quiet    bool   `short:"Q" help:"Suppress all log output." group:"Logging"`
}

// DescribeCmd defines the describe subcommand.
type DescribeCmd struct {
	URLs      []string `arg:"" name:"url" help:"URLs of the videos to describe."`
	ReportDir string   `short:"r" help:"Write a Markdown report per URL into this directory."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	File  string `arg:"" type:"existingfile" help:"Media file to probe."`
	Count bool   `short:"c" help:"Decode the file and count its frames."`
}

// ServeCmd defines the serve subcommand.
type ServeCmd struct {
	Listen string `short:"L" help:"Listen address (default from config, :8080)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framescribe"),
		kong.Description(l10n.T("Describe the content of online videos with captioning models")),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// logger creates the logger selected by cfg and the logging flags.
func (g *Globals) logger(cfg config.Config) ports.Logger {
	if g.Quiet {
		return logger.NewNoop()
	}
	return logger.New(os.Stderr, cfg.LogLevel, logger.Options{Timestamps: cfg.LogTimestamps})
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func (g *Globals) loadConfig() (config.Config, error) {
	cfg := config.Defaults()
	if g.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(g.Config); err != nil {
			return cfg, err
		}
	}

	if g.Threshold != nil {
		cfg.Threshold = *g.Threshold
	}
	if g.MinConfidence != nil {
		cfg.MinConfidence = *g.MinConfidence
	}
	if g.MaxCaptions != nil {
		cfg.MaxCaptions = *g.MaxCaptions
	}
	if g.OllamaURL != "" {
		cfg.Ollama.BaseURL = g.OllamaURL
	}
	if g.CaptionModel != "" {
		cfg.Ollama.CaptionModel = g.CaptionModel
	}
	if g.SummaryModel != "" {
		cfg.Ollama.SummaryModel = g.SummaryModel
	}
	if g.LogLevel != "" {
		level, ok := ports.LookupLogLevel(g.LogLevel)
		if !ok {
			return cfg, fmt.Errorf("unknown log level %q", g.LogLevel)
		}
		cfg.LogLevel = level
	}
	if g.Debug {
		cfg.Debug = true
	}
	if g.DebugDir != "" {
		cfg.DebugDir = g.DebugDir
	}

	return cfg, cfg.Validate()
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// Run executes the describe command.
func (cmd *DescribeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	log := g.logger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New("")
	orch, err := buildOrchestrator(cfg, fs, prommetrics.NewNop(), log)
	if err != nil {
		return err
	}

	d := describer.New(orch, cfg.DescriberOptions(), log)
	defer d.Close()

	var writer *report.Writer
	if cmd.ReportDir != "" {
		writer = report.NewWriter(report.NewMarkdownFormatter(), fs)
	}

	failed := 0
	for _, url := range cmd.URLs {
		e := d.Resolve(ctx, url)
		fmt.Printf("%s\n%s\n\n", url, e.Text())
		if e.Err != "" {
			failed++
		}

		if writer != nil {
			if err := writeReport(writer, cmd.ReportDir, cfg, e); err != nil {
				log.Warn("Failed to write report: %s", err)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d URLs could not be described", failed, len(cmd.URLs))
	}
	return nil
}

func writeReport(w *report.Writer, dir string, cfg config.Config, e describer.Entry) error {
	b := report.NewBuilder().
		WithRun(e.Result).
		WithSettings(report.Settings{
			Threshold:     cfg.Threshold,
			MinConfidence: cfg.MinConfidence,
			MaxCaptions:   cfg.MaxCaptions,
			CaptionModel:  cfg.Ollama.CaptionModel,
			SummaryModel:  cfg.Ollama.SummaryModel,
		})
	if e.Err != "" {
		b.WithError(errors.New(e.Err))
	}
	r := b.Build()
	if r.Source.URL == "" {
		r.Source.URL = e.URL
	}

	name := r.RunID
	if name == "" {
		name = "report"
	}
	path := filepath.Join(dir, name+".md")
	if err := w.Write(path, r); err != nil {
		return err
	}
	fmt.Println(l10n.F("Report saved to %s", path))
	return nil
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	log := g.logger(cfg)

	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()

	prefix := make([]byte, media.ProbeSize)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}

	format, err := media.Guess(prefix[:n])
	if err != nil {
		return err
	}
	info := format.Info()
	fmt.Printf("format:      %s\n", info.Name)
	fmt.Printf("description: %s\n", info.Description)
	fmt.Printf("extensions:  %s\n", strings.Join(info.Extensions, ", "))
	fmt.Printf("mime types:  %s\n", strings.Join(info.MIMETypes, ", "))

	if strings.Contains(info.Name, "mp4") {
		if track, err := codecdetect.Inspect(f); err == nil {
			fmt.Printf("video codec: %s (%s)\n", track.Codec, track.SampleEntry)
			fmt.Printf("video size:  %dx%d\n", track.Width, track.Height)
			if track.Duration > 0 {
				fmt.Printf("duration:    %s (%d samples)\n", track.Duration, track.Samples)
			}
		} else {
			log.Debug("Inspecting MP4 track failed: %v", err)
		}
	}

	if !cmd.Count {
		return nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	frames, err := countFrames(f, log)
	fmt.Printf("frames:      %d\n", frames)
	return err
}

func countFrames(r io.Reader, log ports.Logger) (int, error) {
	source, _, err := media.NewOpener(log).Open(r)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	n := 0
	for {
		_, err := source.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// Run executes the serve command.
func (cmd *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Listen != "" {
		cfg.Listen = cmd.Listen
	}
	// Concurrent requests interleave, so server logs are always timestamped.
	cfg.LogTimestamps = true
	log := g.logger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	reg := prometheus.NewRegistry()
	orch, err := buildOrchestrator(cfg, osfilesystem.New(""), prommetrics.New(reg), log)
	if err != nil {
		return err
	}
	d := describer.New(orch, cfg.DescriberOptions(), log)
	defer d.Close()

	return server.Serve(ctx, cfg.Listen, server.NewRouter(d, reg, log), log)
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framescribe version %s", version))
	return nil
}
