package media

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Brands seen at the head of ISO base media files that the demuxer handles
// natively. Unknown brands still match in the relaxed pass.
var knownBrands = map[string]bool{
	"isom": true, "iso2": true, "iso4": true, "iso5": true, "iso6": true,
	"mp41": true, "mp42": true, "avc1": true, "av01": true, "dash": true,
	"qt  ": true, "M4V ": true, "M4A ": true, "3gp4": true, "3gp5": true,
	"3g2a": true, "mmp4": true, "f4v ": true, "msnv": true, "cmfc": true,
}

// matchMP4 recognizes an ftyp box at the start of the prefix.
func matchMP4(b []byte) (bool, bool) {
	if len(b) < 8 || string(b[4:8]) != "ftyp" {
		return false, false
	}

	box, err := mp4.DecodeBox(0, bytes.NewReader(b))
	if err != nil {
		// Truncated ftyp; the box type alone is still a weak signal.
		return true, false
	}
	ftyp, ok := box.(*mp4.FtypBox)
	if !ok {
		return true, false
	}

	if knownBrands[ftyp.MajorBrand()] {
		return true, true
	}
	for _, brand := range ftyp.CompatibleBrands() {
		if knownBrands[brand] {
			return true, true
		}
	}
	return true, false
}
