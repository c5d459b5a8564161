// Package httpfetch opens media URLs as streaming HTTP bodies.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/framescribe/pkg/ports"
)

// ErrBodyTooLarge is returned by a body that exceeded its size limit.
var ErrBodyTooLarge = errors.New("httpfetch: body exceeds size limit")

// Options configures the fetcher.
type Options struct {
	UserAgent             string
	MaxBytes              int64 // 0 means unlimited
	ResponseHeaderTimeout time.Duration
}

// Fetcher implements ports.Fetcher over net/http. The body is streamed;
// nothing is buffered beyond what the caller reads.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.ResponseHeaderTimeout <= 0 {
		opts.ResponseHeaderTimeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "framescribe"
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
	}
	return &Fetcher{
		// No overall timeout: bodies are long-lived streams bounded by ctx.
		client:    &http.Client{Transport: transport},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// Open issues a GET for url and returns its body.
func (f *Fetcher) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("httpfetch: GET %s: unexpected status %s", url, resp.Status)
	}

	if f.maxBytes > 0 {
		return &limitedBody{ReadCloser: resp.Body, remaining: f.maxBytes}, nil
	}
	return resp.Body, nil
}

// limitedBody fails reads once more than remaining bytes have been read.
type limitedBody struct {
	io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		// Allow a clean EOF exactly at the limit.
		var probe [1]byte
		n, err := b.ReadCloser.Read(probe[:])
		if n == 0 && errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, ErrBodyTooLarge
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.ReadCloser.Read(p)
	b.remaining -= int64(n)
	return n, err
}

var _ ports.Fetcher = (*Fetcher)(nil)
