package describer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/orchestrator"
	"github.com/user/framescribe/pkg/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	calls atomic.Int32
	run   func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
	f.calls.Add(1)
	return f.run(ctx, config)
}

func newDescriber(t *testing.T, r Runner) *Describer {
	t.Helper()
	opts := DefaultOptions()
	opts.CleanupInterval = 0
	d := New(r, opts, logger.NewNoop())
	t.Cleanup(d.Close)
	return d
}

func TestDescribe_CachesSuccess(t *testing.T) {
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		return orchestrator.RunResult{Summary: "summary of " + config.URL}, nil
	}}
	d := newDescriber(t, r)

	assert.Equal(t, "summary of http://a", d.Describe(context.Background(), "http://a"))
	assert.Equal(t, "summary of http://a", d.Describe(context.Background(), "http://a"))
	assert.Equal(t, int32(1), r.calls.Load())

	assert.Equal(t, "summary of http://b", d.Describe(context.Background(), "http://b"))
	assert.Equal(t, int32(2), r.calls.Load())
	assert.Equal(t, int64(1), d.Stats().Hits)
}

func TestDescribe_PassesBaseConfig(t *testing.T) {
	var got orchestrator.Config
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		got = config
		return orchestrator.RunResult{}, nil
	}}
	opts := DefaultOptions()
	opts.CleanupInterval = 0
	opts.Base.MaxCaptions = 3
	d := New(r, opts, logger.NewNoop())
	defer d.Close()

	d.Describe(context.Background(), "http://a")
	assert.Equal(t, "http://a", got.URL)
	assert.Equal(t, 3, got.MaxCaptions)
}

func TestDescribe_RendersErrors(t *testing.T) {
	runErr := fmt.Errorf("decode stage: %w", ports.ErrFormatUnrecognized)
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		return orchestrator.RunResult{}, runErr
	}}
	d := newDescriber(t, r)

	text := d.Describe(context.Background(), "http://bad")
	assert.Equal(t, runErr.Error(), text)

	e := d.Resolve(context.Background(), "http://bad")
	assert.Equal(t, runErr.Error(), e.Err)
	assert.Equal(t, int32(1), r.calls.Load(), "errors are cached")
}

func TestDescribe_ErrorCachingDisabled(t *testing.T) {
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		return orchestrator.RunResult{}, errors.New("boom")
	}}
	opts := DefaultOptions()
	opts.CleanupInterval = 0
	opts.ErrorTTL = 0
	d := New(r, opts, logger.NewNoop())
	defer d.Close()

	d.Describe(context.Background(), "http://x")
	d.Describe(context.Background(), "http://x")
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestDescribe_CanceledNotCached(t *testing.T) {
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		return orchestrator.RunResult{Summary: "s"}, nil
	}}
	d := newDescriber(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled.Error(), d.Describe(ctx, "http://x"))
	assert.Equal(t, int32(0), r.calls.Load())

	_, ok := d.cache.Get("http://x")
	assert.False(t, ok)
}

func TestDescribe_CallerCancelKeepsSharedRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runErr := make(chan error, 1)
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		close(started)
		<-release
		runErr <- ctx.Err()
		return orchestrator.RunResult{Summary: "s"}, nil
	}}
	d := newDescriber(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan Entry, 1)
	go func() { first <- d.Resolve(ctx, "http://same") }()
	<-started

	second := make(chan string, 1)
	go func() { second <- d.Describe(context.Background(), "http://same") }()
	// Give the second caller time to join the in-flight run.
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case e := <-first:
		assert.Equal(t, context.Canceled.Error(), e.Err)
	case <-time.After(time.Second):
		t.Fatal("canceled caller still waiting")
	}

	close(release)
	assert.Equal(t, "s", <-second)
	assert.NoError(t, <-runErr)
	assert.Equal(t, int32(1), r.calls.Load())

	e, ok := d.cache.Get("http://same")
	assert.True(t, ok)
	assert.Equal(t, "s", e.Summary)
}

func TestDescribe_CloseCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		close(started)
		<-ctx.Done()
		return orchestrator.RunResult{}, ctx.Err()
	}}
	opts := DefaultOptions()
	opts.CleanupInterval = 0
	d := New(r, opts, logger.NewNoop())

	done := make(chan Entry, 1)
	go func() { done <- d.Resolve(context.Background(), "http://slow") }()
	<-started
	d.Close()

	select {
	case e := <-done:
		assert.Equal(t, context.Canceled.Error(), e.Err)
	case <-time.After(time.Second):
		t.Fatal("run not canceled by Close")
	}
	_, ok := d.cache.Get("http://slow")
	assert.False(t, ok)
}

func TestDescribe_RunTimeout(t *testing.T) {
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		<-ctx.Done()
		return orchestrator.RunResult{}, ctx.Err()
	}}
	opts := DefaultOptions()
	opts.CleanupInterval = 0
	opts.RunTimeout = 10 * time.Millisecond
	d := New(r, opts, logger.NewNoop())
	defer d.Close()

	e := d.Resolve(context.Background(), "http://slow")
	assert.Equal(t, context.DeadlineExceeded.Error(), e.Err)
	_, ok := d.cache.Get("http://slow")
	assert.False(t, ok)
}

func TestDescribe_CollapsesConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 8)
	r := &fakeRunner{run: func(ctx context.Context, config orchestrator.Config) (orchestrator.RunResult, error) {
		started <- struct{}{}
		<-release
		return orchestrator.RunResult{Summary: "s"}, nil
	}}
	d := newDescriber(t, r)

	const n = 5
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Describe(context.Background(), "http://same")
		}(i)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("runner not started")
	}
	// Give the other callers time to join the in-flight run.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, s := range results {
		assert.Equal(t, "s", s)
	}
	assert.Equal(t, int32(1), r.calls.Load())
}
