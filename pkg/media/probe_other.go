//go:build !ffmpeg || !cgo

package media

func probe(b []byte, strict bool) (Format, bool) {
	return sniff(b, strict)
}
