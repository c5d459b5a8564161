package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// Fetcher is a mock implementation of ports.Fetcher.
type Fetcher struct {
	mu sync.Mutex

	OpenFunc func(ctx context.Context, url string) (io.ReadCloser, error)

	// Bodies maps URLs to response bodies when OpenFunc is nil.
	Bodies map[string][]byte

	// Recorded calls for verification
	URLs []string
}

func (m *Fetcher) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	body := m.Bodies[url]
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, url)
	}
	return NewBody(body), nil
}

// OpenCount returns the number of Open calls.
func (m *Fetcher) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.URLs)
}

var _ ports.Fetcher = (*Fetcher)(nil)

// Body is an in-memory io.ReadCloser that records Close.
type Body struct {
	io.Reader

	mu     sync.Mutex
	closed bool
}

// NewBody wraps data as a response body.
func NewBody(data []byte) *Body {
	return &Body{Reader: bytes.NewReader(data)}
}

// NewReaderBody wraps r as a response body.
func NewReaderBody(r io.Reader) *Body {
	return &Body{Reader: r}
}

func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close was called.
func (b *Body) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
