// Package timeutil provides the archive's fixed timestamp conventions:
// seconds-since-epoch integers, a human-readable "%Y%m%d-%H%M%S" local-time
// form, and the reasonable-range bounds used to validate them. Grounded on
// chirp/common/timestamp.py.
package timeutil

import (
	"fmt"
	"time"
)

const humanReadableFormat = "20060102-150405"

// minReasonable is Nov 30, 2008; maxReasonable is Jan 19, 2038 (Unix
// signed-32-bit epoch boundary). Both are the same bounds the source
// enforces on any timestamp it considers valid.
var (
	minReasonable = time.Date(2008, time.November, 30, 0, 0, 0, 0, time.Local).Unix()
	maxReasonable = time.Date(2038, time.January, 19, 0, 0, 0, 0, time.Local).Unix()
)

// Now returns the current time as seconds since the Unix epoch.
func Now() int64 {
	return time.Now().Unix()
}

// IsValid reports whether ts falls within the reasonable timestamp range.
func IsValid(ts int64) bool {
	return ts > minReasonable && ts < maxReasonable
}

// HumanReadable formats a timestamp as "YYYYMMDD-HHMMSS" in local time.
func HumanReadable(ts int64) string {
	return time.Unix(ts, 0).Local().Format(humanReadableFormat)
}

// ParseHumanReadable parses a "YYYYMMDD-HHMMSS" local-time string back
// into a Unix timestamp.
func ParseHumanReadable(s string) (int64, error) {
	t, err := time.ParseInLocation(humanReadableFormat, s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed timestamp %q: %w", s, err)
	}
	return t.Unix(), nil
}
