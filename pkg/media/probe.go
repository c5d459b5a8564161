package media

import (
	"github.com/user/framescribe/pkg/ports"
)

// Guess identifies the container format from a stream prefix.
//
// Only the first ProbeSize bytes are examined, so the result is a pure
// function of those bytes. A strict pass that requires a confident match is
// tried first, then a relaxed pass that accepts any match. Guess returns
// ports.ErrFormatUnrecognized if neither pass matches.
func Guess(b []byte) (Format, error) {
	if len(b) > ProbeSize {
		b = b[:ProbeSize]
	}

	if f, ok := probe(b, true); ok {
		return f, nil
	}
	if f, ok := probe(b, false); ok {
		return f, nil
	}
	return Format{}, ports.ErrFormatUnrecognized
}
