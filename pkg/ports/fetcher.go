package ports

import (
	"context"
	"io"
)

// Fetcher opens a chunked network byte stream.
type Fetcher interface {
	// Open starts fetching url. The body is read incrementally and must be
	// closed by the caller.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}
