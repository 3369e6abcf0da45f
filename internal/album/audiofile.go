// Package album groups scanned MP3 files into albums, applies
// album-level tag standardization (artist hoisting, track numbering,
// TALB consensus), and computes album identity. Grounded on
// chirp/library/audio_file.py and chirp/library/album.py.
package album

import (
	"fmt"
	"path/filepath"

	"github.com/chirpradio/chirparchive/internal/frame"
	"github.com/chirpradio/chirparchive/internal/tags"
	"github.com/chirpradio/chirparchive/internal/timeutil"
)

// AudioFile holds everything known about one scanned or archived MP3:
// its storage coordinates (once assigned), its measured MPEG
// statistics, and its tag set. It is created by scanning a candidate
// file, mutated during standardization, and thereafter immutable
// except via tag-history snapshots (see internal/catalog).
type AudioFile struct {
	// Volume and ImportTimestamp are unset (zero) until the file is
	// assigned to an import transaction.
	Volume          int
	ImportTimestamp int64
	HasVolume       bool // true once Volume/ImportTimestamp are meaningful

	Fingerprint string
	AlbumID     uint64
	HasAlbumID  bool

	FrameCount int
	FrameSize  int
	Header     *frame.Header
	DurationMs int

	Tags *tags.Set
	Path string
	// Payload holds the concatenated MPEG frame bytes when loaded;
	// nil once dropped to save memory after a file is archived.
	Payload []byte
}

// HasUFID reports whether enough information is present to construct
// a complete UFID value.
func (a *AudioFile) HasUFID() bool {
	return a.HasVolume && a.Fingerprint != ""
}

// UFID returns the file's unique identifier string. Panics if
// HasUFID() is false.
func (a *AudioFile) UFID() string {
	if !a.HasUFID() {
		panic("album: UFID() called without volume/timestamp/fingerprint")
	}
	return tags.UFID(a.Volume, a.ImportTimestamp, a.Fingerprint)
}

// CanonicalDirectory returns the storage directory for this file
// relative to prefix. Panics if HasUFID() is false.
func (a *AudioFile) CanonicalDirectory(prefix string) string {
	if !a.HasUFID() {
		panic("album: CanonicalDirectory() called without volume/timestamp/fingerprint")
	}
	return filepath.Join(prefix, tags.UFIDPrefix(a.Volume, a.ImportTimestamp))
}

// CanonicalFilename returns the storage filename for this file:
// "<fingerprint>.mp3". Panics if Fingerprint is unset.
func (a *AudioFile) CanonicalFilename() string {
	if a.Fingerprint == "" {
		panic("album: CanonicalFilename() called without a fingerprint")
	}
	return a.Fingerprint + ".mp3"
}

// CanonicalPath returns the full storage path for this file relative
// to prefix.
func (a *AudioFile) CanonicalPath(prefix string) string {
	return filepath.Join(a.CanonicalDirectory(prefix), a.CanonicalFilename())
}

func (a *AudioFile) String() string {
	ts := ""
	if a.HasVolume {
		ts = timeutil.HumanReadable(a.ImportTimestamp)
	}
	return fmt.Sprintf("AudioFile(vol=%d, ts=%s, fp=%s)", a.Volume, ts, a.Fingerprint)
}
