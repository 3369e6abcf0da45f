// Package importer fixes a scanned file's tags to the station's
// canonical form, runs the full consistency checker against the
// result, and commits a verified file into the archive tree. Grounded
// on chirp/library/import_file.py and chirp/library/checker.py.
package importer

import (
	"fmt"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/order"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// Human-readable error reason prefixes. These are returned verbatim by
// FindTagsErrors, matching checker.py's contract exactly: callers
// collect and display the full list rather than branching on a typed
// error.
const (
	ErrTagMissingRequired = "Missing required tag: "
	ErrTagNotWhitelisted  = "Non-whitelisted tag: "

	ErrNumericMalformed = "Malformed numeric tag: "

	ErrTFLTNonWhitelisted = "TFLT tag holds non-whitelisted value"

	ErrTLENIncorrect = "TLEN tag contains incorrect file duration"

	ErrFrameCountIncorrect = "TXXX tag contains incorrect frame count"
	ErrFrameSizeIncorrect  = "TXXX tag contains incorrect frame size"

	ErrTOWNIncorrect = "TOWN tag holds incorrect value"

	ErrTPENonstandard = "TPE tag has non-standard artist: "

	ErrOrderMalformed = "Tag contains a bad order string: "

	ErrUFIDBadOwner       = "Invalid UFID owner identifier"
	ErrUFIDMalformed      = "Malformed UFID tag"
	ErrUFIDBadVolume      = "Incorrect volume number in UFID"
	ErrUFIDBadTimestamp   = "Incorrect timestamp in UFID"
	ErrUFIDBadFingerprint = "Incorrect fingerprint in UFID"
)

var numericFrameIDs = []string{"TBPM", "TLEN", "TORY", "TYER"}

// FindTagsErrors returns every violation of the station's tagging
// policy found in af's current tag set, or nil if af is clean. wl is
// consulted to judge whether TPE* values are standardized artist
// names. Grounded on checker.py's find_tags_errors.
func FindTagsErrors(af *album.AudioFile, wl *artist.Whitelist) []string {
	var errs []string
	set := af.Tags

	for _, id := range tags.RequiredFrameIDs {
		if _, ok := set.Get(id); !ok {
			errs = append(errs, ErrTagMissingRequired+id)
		}
	}
	if _, ok := set.UFID(); !ok {
		errs = append(errs, ErrTagMissingRequired+"UFID")
	}
	if set.TXXX(tags.TXXXAlbumIDDescription) == "" {
		errs = append(errs, ErrTagMissingRequired+"TXXX:"+tags.TXXXAlbumIDDescription)
	}
	if set.TXXX(tags.TXXXFrameCountDescription) == "" {
		errs = append(errs, ErrTagMissingRequired+"TXXX:"+tags.TXXXFrameCountDescription)
	}
	if set.TXXX(tags.TXXXFrameSizeDescription) == "" {
		errs = append(errs, ErrTagMissingRequired+"TXXX:"+tags.TXXXFrameSizeDescription)
	}

	for _, f := range set.Frames() {
		if f.Kind == tags.KindTXXX {
			continue // TXXX frames are not checked here; only the required descriptions are, above
		}
		if !tags.WhitelistFrameIDs[f.ID] {
			errs = append(errs, ErrTagNotWhitelisted+f.ID)
		}
	}

	for _, id := range numericFrameIDs {
		v := set.Text(id)
		if v != "" && !isAllDigits(v) {
			errs = append(errs, ErrNumericMalformed+id)
		}
	}

	if tflt := set.Text("TFLT"); tflt != "" && !tags.TFLTWhitelist[tflt] {
		errs = append(errs, ErrTFLTNonWhitelisted)
	}

	if tlen := set.Text("TLEN"); tlen != "" && tlen != fmt.Sprintf("%d", af.DurationMs) {
		errs = append(errs, ErrTLENIncorrect)
	}

	if fc := set.TXXX(tags.TXXXFrameCountDescription); fc != "" && fc != fmt.Sprintf("%d", af.FrameCount) {
		errs = append(errs, ErrFrameCountIncorrect)
	}
	if fs := set.TXXX(tags.TXXXFrameSizeDescription); fs != "" && fs != fmt.Sprintf("%d", af.FrameSize) {
		errs = append(errs, ErrFrameSizeIncorrect)
	}

	if town := set.Text("TOWN"); town != "" && town != tags.Owner {
		errs = append(errs, ErrTOWNIncorrect)
	}

	for _, f := range set.Frames() {
		if len(f.ID) >= 3 && f.ID[:3] == "TPE" && !wl.IsStandardized(f.Value) {
			errs = append(errs, ErrTPENonstandard+f.Value)
		}
	}

	for _, id := range []string{"TPOS", "TRCK"} {
		v := set.Text(id)
		if v != "" && !order.IsArchival(v) {
			errs = append(errs, fmt.Sprintf("%s%s %s", ErrOrderMalformed, id, v))
		}
	}

	if owner, value, ok := set.UFID(); ok {
		if owner != tags.UFIDOwnerIdentifier {
			errs = append(errs, ErrUFIDBadOwner)
		}
		vol, ts, fp, err := tags.ParseUFID(value)
		if err != nil {
			errs = append(errs, ErrUFIDMalformed)
		} else {
			if af.Volume != vol {
				errs = append(errs, ErrUFIDBadVolume)
			}
			if af.ImportTimestamp != ts {
				errs = append(errs, ErrUFIDBadTimestamp)
			}
			if af.Fingerprint != fp {
				errs = append(errs, ErrUFIDBadFingerprint)
			}
		}
	}

	return errs
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
