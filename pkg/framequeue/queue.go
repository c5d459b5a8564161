// Package framequeue moves decoded frames from a dedicated decode goroutine
// to an asynchronous consumer.
//
// The producer never blocks on the consumer: items are kept in an unbounded
// FIFO, so decoding runs ahead of slow captioning. When the consumer goes
// away the producer's next hand-off fails and the decode goroutine exits,
// closing its FrameSource.
package framequeue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// ErrClosed is returned by Next after the receiver has been closed.
var ErrClosed = errors.New("framequeue: receiver closed")

type item struct {
	frame ports.VideoFrame
	err   error
}

// Receiver is the consumer side of a frame queue. It implements
// ports.FrameStream.
type Receiver struct {
	logger ports.Logger

	mu       sync.Mutex
	items    []item
	finished bool // producer exited
	closed   bool // consumer went away

	notify chan struct{} // one-slot wakeup
	exited chan struct{}

	next int // index assigned to the next received frame
}

// Start launches the decode goroutine for src and returns the receiving
// side. The goroutine owns src and closes it on exit.
func Start(src ports.FrameSource, logger ports.Logger) *Receiver {
	r := &Receiver{
		logger: logger.WithComponent("framequeue"),
		notify: make(chan struct{}, 1),
		exited: make(chan struct{}),
	}
	go r.run(src)
	return r
}

func (r *Receiver) run(src ports.FrameSource) {
	defer close(r.exited)
	defer r.finish()
	defer func() {
		if err := src.Close(); err != nil {
			r.logger.Warn("Failed to close frame source: %v", err)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Decode worker panicked: %v", p)
		}
	}()

	// Native decoders keep per-thread state; stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pulled := 0
	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			r.logger.Debug("Decode finished after %d frames", pulled)
			return
		}
		if !r.push(item{frame: frame, err: err}) {
			r.logger.Debug("Receiver closed, stopping decode after %d frames", pulled)
			return
		}
		if err != nil {
			r.logger.Debug("Decode stopped: %v", err)
			return
		}
		pulled++
	}
}

// push appends an item and wakes the consumer. It reports false when the
// consumer has gone away.
func (r *Receiver) push(it item) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.items = append(r.items, it)
	r.mu.Unlock()

	r.wake()
	return true
}

func (r *Receiver) finish() {
	r.mu.Lock()
	r.finished = true
	r.mu.Unlock()
	r.wake()
}

func (r *Receiver) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Next returns the next frame in decode order, numbering frames from 0.
// An error pulled by the producer is delivered in place of a frame. Next
// returns io.EOF once the producer has finished and every item has been
// received.
func (r *Receiver) Next(ctx context.Context) (ports.VideoFrame, error) {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return ports.VideoFrame{}, ErrClosed
		}
		if len(r.items) > 0 {
			it := r.items[0]
			r.items[0] = item{}
			r.items = r.items[1:]
			if it.err != nil {
				r.mu.Unlock()
				return ports.VideoFrame{}, it.err
			}
			it.frame.Index = r.next
			r.next++
			r.mu.Unlock()
			return it.frame, nil
		}
		if r.finished {
			r.mu.Unlock()
			return ports.VideoFrame{}, io.EOF
		}
		r.mu.Unlock()

		select {
		case <-r.notify:
		case <-ctx.Done():
			return ports.VideoFrame{}, ctx.Err()
		}
	}
}

// Close drops the consumer side. Pending items are discarded and the
// producer exits at its next hand-off.
func (r *Receiver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.items = nil
}

// Wait blocks until the decode goroutine has exited and closed its source.
func (r *Receiver) Wait() {
	<-r.exited
}

// done is closed when the decode goroutine exits.
func (r *Receiver) done() <-chan struct{} {
	return r.exited
}

// pending returns the number of items waiting to be received.
func (r *Receiver) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Receiver) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("Receiver{pending: %d, received: %d, finished: %v, closed: %v}",
		len(r.items), r.next, r.finished, r.closed)
}

var _ ports.FrameStream = (*Receiver)(nil)
