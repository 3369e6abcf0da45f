package tags

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chirpradio/chirparchive/internal/timeutil"
)

// ufidRE matches "vol<VV>/<YYYYMMDD-HHMMSS>/<40 hex fingerprint>".
// Grounded on chirp/library/ufid.py's _UFID_RE.
var ufidRE = regexp.MustCompile(`^vol([0-9a-f]{2})/([0-9T:-]+)/([0-9a-f]{40})$`)

// UFIDPrefix returns the "vol<VV>/<timestamp>" directory prefix for a
// (volume, importTimestamp) pair.
func UFIDPrefix(volume int, importTimestamp int64) string {
	return fmt.Sprintf("vol%02x/%s", volume, timeutil.HumanReadable(importTimestamp))
}

// UFID returns the canonical "vol<VV>/<timestamp>/<fingerprint>" string.
func UFID(volume int, importTimestamp int64, fingerprint string) string {
	return fmt.Sprintf("%s/%s", UFIDPrefix(volume, importTimestamp), fingerprint)
}

// ParseUFID decodes a UFID string into its (volume, import_timestamp,
// fingerprint) triple. Returns an error for any malformed input,
// mirroring chirp/library/ufid.py's parse().
func ParseUFID(s string) (volume int, importTimestamp int64, fingerprint string, err error) {
	m := ufidRE.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, "", fmt.Errorf("tags: malformed UFID %q", s)
	}
	vol64, err := strconv.ParseInt(m[1], 16, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("tags: malformed UFID volume in %q: %w", s, err)
	}
	ts, err := timeutil.ParseHumanReadable(m[2])
	if err != nil {
		return 0, 0, "", fmt.Errorf("tags: malformed UFID timestamp in %q: %w", s, err)
	}
	return int(vol64), ts, m[3], nil
}
