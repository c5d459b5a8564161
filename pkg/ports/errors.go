package ports

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy shared by the media core, the stages and the callers.
var (
	// ErrFormatUnrecognized is returned when neither the strict nor the relaxed
	// probe pass matches the stream prefix.
	ErrFormatUnrecognized = errors.New("media: unknown or unsupported format")

	// ErrOutOfMemory is returned when a native allocation fails.
	// Callers may retry later.
	ErrOutOfMemory = errors.New("media: out of memory")

	// ErrPlatformNotSupported is returned when the binary was built without a
	// decoder for the probed format.
	ErrPlatformNotSupported = errors.New("media: format not supported by this build")
)

// IOError reports a failure of the network byte source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("media: i/o: %v", e.Err)
	}
	return fmt.Sprintf("media: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NativeError reports an error code returned by the demuxer or decoder.
type NativeError struct {
	Op      string
	Code    int
	Message string
}

func (e *NativeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("media: %s: native error %d", e.Op, e.Code)
	}
	return fmt.Sprintf("media: %s: %s (%d)", e.Op, e.Message, e.Code)
}

// IsIOError reports whether err wraps an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsNativeError reports whether err wraps a *NativeError.
func IsNativeError(err error) bool {
	var nativeErr *NativeError
	return errors.As(err, &nativeErr)
}
