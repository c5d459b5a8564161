package media

import (
	"strings"
	"unsafe"

	"github.com/user/framescribe/pkg/ports"
)

// Format is an immutable descriptor of a recognized container format.
type Format struct {
	Name        string
	Description string
	Extensions  []string
	MIMETypes   []string

	// native points at the demuxer descriptor in builds that link FFmpeg.
	// It is statically allocated by the library and never freed.
	native unsafe.Pointer
}

// Info converts the descriptor to the port-level MediaInfo.
func (f Format) Info() ports.MediaInfo {
	return ports.MediaInfo{
		Name:        f.Name,
		Description: f.Description,
		Extensions:  append([]string(nil), f.Extensions...),
		MIMETypes:   append([]string(nil), f.MIMETypes...),
	}
}

func (f Format) String() string {
	if f.Description == "" {
		return f.Name
	}
	return f.Name + " (" + f.Description + ")"
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
