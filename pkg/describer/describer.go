// Package describer memoizes pipeline runs per URL for callers that want a
// plain text answer.
package describer

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/user/framescribe/pkg/cache"
	"github.com/user/framescribe/pkg/orchestrator"
	"github.com/user/framescribe/pkg/ports"
)

// Default cache lifetimes.
const (
	DefaultTTL             = time.Hour
	DefaultErrorTTL        = 5 * time.Minute
	DefaultCleanupInterval = time.Minute
	DefaultRunTimeout      = 10 * time.Minute
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error)
}

// Options configures a Describer.
type Options struct {
	Base            orchestrator.Config // Per-run settings; URL is filled in per call
	TTL             time.Duration       // Lifetime of successful results
	ErrorTTL        time.Duration       // Lifetime of failed results; zero disables error caching
	CleanupInterval time.Duration
	RunTimeout      time.Duration // Bound on a shared run; zero means none
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		Base:            orchestrator.DefaultConfig(),
		TTL:             DefaultTTL,
		ErrorTTL:        DefaultErrorTTL,
		CleanupInterval: DefaultCleanupInterval,
		RunTimeout:      DefaultRunTimeout,
	}
}

// Entry is the memoized outcome of describing one URL.
type Entry struct {
	URL     string
	Summary string
	Err     string // Rendered pipeline error, empty on success
	Result  orchestrator.RunResult
}

// Text returns the summary, or the error message when the run failed.
func (e Entry) Text() string {
	if e.Err != "" {
		return e.Err
	}
	return e.Summary
}

// Describer turns URLs into summaries, caching results and collapsing
// concurrent requests for the same URL into one run.
//
// A shared run is not tied to any one caller: it runs until it finishes,
// times out or the Describer is closed. A caller whose context ends stops
// waiting and gets the context error; the others still get the result.
type Describer struct {
	runner Runner
	opts   Options
	cache  *cache.Memory[Entry]
	group  singleflight.Group
	logger ports.Logger

	ctx    context.Context // canceled by Close
	cancel context.CancelFunc
}

// New creates a Describer. Close releases its cache janitor and cancels
// runs still in flight.
func New(runner Runner, opts Options, logger ports.Logger) *Describer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Describer{
		runner: runner,
		opts:   opts,
		cache:  cache.NewMemory[Entry](opts.CleanupInterval),
		logger: logger.WithComponent("describer"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Describe returns the summary of url, or the message of the error that
// prevented one.
func (d *Describer) Describe(ctx context.Context, url string) string {
	return d.Resolve(ctx, url).Text()
}

// Resolve returns the cached entry for url, running the pipeline on a miss.
func (d *Describer) Resolve(ctx context.Context, url string) Entry {
	if e, ok := d.cache.Get(url); ok {
		d.logger.Debug("Cache hit for %s", url)
		return e
	}

	if err := ctx.Err(); err != nil {
		return Entry{URL: url, Err: err.Error()}
	}

	ch := d.group.DoChan(url, func() (any, error) {
		return d.run(context.WithoutCancel(ctx), url), nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			d.logger.Debug("Joined in-flight run for %s", url)
		}
		return res.Val.(Entry)
	case <-ctx.Done():
		return Entry{URL: url, Err: ctx.Err().Error()}
	}
}

// run executes the pipeline on a context detached from any caller but
// bounded by RunTimeout and Close.
func (d *Describer) run(ctx context.Context, url string) Entry {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.ctx, cancel)
	defer stop()
	if d.opts.RunTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, d.opts.RunTimeout)
		defer cancelTimeout()
	}

	config := d.opts.Base
	config.URL = url

	result, err := d.runner.Run(ctx, config)
	e := Entry{URL: url, Summary: result.Summary, Result: result}
	if err != nil {
		e.Err = err.Error()
		// A canceled run says nothing about the URL.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return e
		}
		if d.opts.ErrorTTL > 0 {
			d.cache.Set(url, e, d.opts.ErrorTTL)
		}
		return e
	}

	d.cache.Set(url, e, d.opts.TTL)
	return e
}

// Stats returns cache statistics.
func (d *Describer) Stats() cache.Stats {
	return d.cache.Stats()
}

// Close cancels in-flight runs and stops the cache janitor.
func (d *Describer) Close() {
	d.cancel()
	d.cache.Stop()
}
