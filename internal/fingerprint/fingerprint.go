// Package fingerprint computes and validates the archive's
// metadata-invariant content identifier: the SHA-1 of an MP3's MPEG
// frame byte spans. Grounded on chirp/library/fingerprint.py and
// chirp/library/analyzer.py.
package fingerprint

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security primitive
	"encoding/hex"
	"io"
	"regexp"

	"github.com/chirpradio/chirparchive/internal/frame"
)

// Compute returns the 40-lowercase-hex-digit fingerprint of r: the
// SHA-1 of the concatenation of every valid MPEG frame's byte span.
// Returns ("", false) if no valid frame was found.
func Compute(r io.Reader) (string, bool) {
	h := sha1.New() //nolint:gosec
	sawFrame := false
	for hdr, data := range frame.Split(r, nil) {
		if hdr == nil {
			continue
		}
		h.Write(data)
		sawFrame = true
	}
	if !sawFrame {
		return "", false
	}
	return hex.EncodeToString(h.Sum(nil)), true
}

var validRE = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsValid reports whether s is a well-formed fingerprint: exactly 40
// lowercase hex digits.
func IsValid(s string) bool {
	return validRE.MatchString(s)
}
