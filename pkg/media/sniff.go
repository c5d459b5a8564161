package media

import (
	"bytes"
)

// signature is one entry of the pure-Go prober. match reports whether the
// prefix is recognized and whether the match is confident enough for the
// strict pass.
type signature struct {
	format Format
	match  func(b []byte) (ok, confident bool)
}

var signatures = []signature{
	{
		format: Format{
			Name:        "mov,mp4,m4a,3gp,3g2,mj2",
			Description: "QuickTime / MOV",
			Extensions:  []string{"mov", "mp4", "m4a", "3gp", "3g2", "mj2", "psp", "m4b", "ism", "ismv", "isma", "f4v", "avif", "heic", "heif"},
			MIMETypes:   []string{"video/mp4", "video/quicktime"},
		},
		match: matchMP4,
	},
	{
		format: Format{
			Name:        "matroska,webm",
			Description: "Matroska / WebM",
			Extensions:  []string{"mkv", "mk3d", "mka", "mks", "webm"},
			MIMETypes:   []string{"audio/webm", "audio/x-matroska", "video/webm", "video/x-matroska"},
		},
		match: matchEBML,
	},
	{
		format: Format{
			Name:        "gif",
			Description: "CompuServe Graphics Interchange Format (GIF)",
			Extensions:  []string{"gif"},
			MIMETypes:   []string{"image/gif"},
		},
		match: func(b []byte) (bool, bool) {
			ok := bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a"))
			return ok, ok
		},
	},
	{
		format: Format{
			Name:        "avi",
			Description: "AVI (Audio Video Interleaved)",
			Extensions:  []string{"avi"},
			MIMETypes:   []string{"video/x-msvideo"},
		},
		match: func(b []byte) (bool, bool) {
			ok := len(b) >= 12 && bytes.HasPrefix(b, []byte("RIFF")) && string(b[8:12]) == "AVI "
			return ok, ok
		},
	},
	{
		format: Format{
			Name:        "flv",
			Description: "FLV (Flash Video)",
			Extensions:  []string{"flv"},
			MIMETypes:   []string{"video/x-flv"},
		},
		match: func(b []byte) (bool, bool) {
			ok := len(b) >= 9 && bytes.HasPrefix(b, []byte("FLV")) && b[3] == 1
			return ok, ok
		},
	},
	{
		format: Format{
			Name:        "mpegts",
			Description: "MPEG-TS (MPEG-2 Transport Stream)",
			Extensions:  []string{"ts", "m2t", "m2ts", "mts"},
			MIMETypes:   []string{"video/mp2t"},
		},
		match: matchMPEGTS,
	},
	{
		format: Format{
			Name:        "ogg",
			Description: "Ogg",
			Extensions:  []string{"ogg", "ogv", "oga"},
			MIMETypes:   []string{"video/ogg", "audio/ogg", "application/ogg"},
		},
		match: func(b []byte) (bool, bool) {
			ok := bytes.HasPrefix(b, []byte("OggS"))
			return ok, ok
		},
	},
}

// sniff runs the signature table against a prefix. In strict mode only
// confident matches count.
func sniff(b []byte, strict bool) (Format, bool) {
	for _, sig := range signatures {
		ok, confident := sig.match(b)
		if !ok {
			continue
		}
		if strict && !confident {
			continue
		}
		return sig.format, true
	}
	return Format{}, false
}

const (
	ebmlMagic   = "\x1a\x45\xdf\xa3"
	tsPacketLen = 188
	tsSyncByte  = 0x47
)

func matchEBML(b []byte) (bool, bool) {
	if !bytes.HasPrefix(b, []byte(ebmlMagic)) {
		return false, false
	}
	// The DocType element (0x4282) names the flavour; without it we only
	// know it is some EBML document.
	head := b
	if len(head) > 64 {
		head = head[:64]
	}
	confident := bytes.Contains(head, []byte("webm")) || bytes.Contains(head, []byte("matroska"))
	return true, confident
}

// matchMPEGTS counts sync bytes at the packet stride. One sync byte is an
// ordinary 'G', so at least two packets are needed to match at all.
func matchMPEGTS(b []byte) (bool, bool) {
	syncs := 0
	for off := 0; off < len(b); off += tsPacketLen {
		if b[off] != tsSyncByte {
			break
		}
		syncs++
	}
	return syncs >= 2, syncs >= 3
}
