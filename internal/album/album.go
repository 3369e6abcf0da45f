package album

import (
	"crypto/md5" //nolint:gosec // used only as a deterministic 60-bit id generator, not for security
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/order"
	"github.com/chirpradio/chirparchive/internal/tags"
	"github.com/chirpradio/chirparchive/internal/titlenorm"
)

// Error reports an album-level validation failure: missing required
// tags, inconsistent TALB across tracks, bad track numbering, or a
// TPE1 that can't be hoisted to a whitelisted artist.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func albumErr(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Album is a finite, ordered collection of AudioFiles sharing a
// common normalized TALB.
type Album struct {
	Files   []*AudioFile
	AlbumID uint64

	tpe1Breakdown []tpe1Count
}

type tpe1Count struct {
	tpe1  string
	count int
}

// computeAlbumID sorts the files' fingerprints lexicographically,
// concatenates them, and returns the first 60 bits of the MD5 digest
// as an unsigned integer (60 rather than 64 bits, since the catalog's
// integer columns are signed 64-bit). Returns (0, false) if any file
// lacks a fingerprint.
func computeAlbumID(files []*AudioFile) (uint64, bool) {
	fps := make([]string, len(files))
	for i, f := range files {
		if f.Fingerprint == "" {
			return 0, false
		}
		fps[i] = f.Fingerprint
	}
	sort.Strings(fps)

	h := md5.New() //nolint:gosec
	for _, fp := range fps {
		h.Write([]byte(fp))
	}
	digest := h.Sum(nil)

	// First 15 hex digits = 60 bits.
	hexDigest := fmt.Sprintf("%x", digest)[:15]
	id := new(big.Int)
	id.SetString(hexDigest, 16)
	return id.Uint64(), true
}

// NewAlbum builds an Album from a set of scanned files, computing (or
// verifying consistency of) the album id across them. Files are sorted
// by track number only when every file carries a TRCK tag; otherwise
// their given order is kept. It does not validate tags; call
// Standardize for that.
func NewAlbum(files []*AudioFile) (*Album, error) {
	a := &Album{Files: append([]*AudioFile(nil), files...)}

	id, ok := computeAlbumID(a.Files)
	if ok {
		a.AlbumID = id
		for _, f := range a.Files {
			if !f.HasAlbumID {
				f.AlbumID = id
				f.HasAlbumID = true
			} else if f.AlbumID != id {
				return nil, albumErr("album ID mismatch while building album")
			}
		}
	}

	if allHaveTrackNumber(a.Files) {
		a.sortByTrack()
	}
	return a, nil
}

func allHaveTrackNumber(files []*AudioFile) bool {
	for _, f := range files {
		if f.Tags.Text("TRCK") == "" {
			return false
		}
	}
	return true
}

func (a *Album) sortByTrack() {
	sort.SliceStable(a.Files, func(i, j int) bool {
		ni, _, _ := order.Decode(a.Files[i].Tags.Text("TRCK"))
		nj, _, _ := order.Decode(a.Files[j].Tags.Text("TRCK"))
		return ni < nj
	})
}

// Standardize performs the full album-level standardization pass:
// verifies required tags, resolves a single TALB (by exact match or
// case-insensitive majority), verifies and rewrites track numbering,
// hoists non-uniform TPE1 values via the whitelist (moving the guest
// credit into TIT2), standardizes every TIT2, and stamps the computed
// album id into every file's TXXX:CHIRP Album ID frame. newAlbumName,
// if non-empty, overrides the TALB consensus. Grounded on
// chirp/library/album.py's _standardize_tags.
func (a *Album) Standardize(wl *artist.Whitelist, newAlbumName string) error {
	for _, f := range a.Files {
		if f.Tags.Text("TPE1") == "" {
			return albumErr("missing TPE1 in %s", f.Path)
		}
		if f.Tags.Text("TIT2") == "" {
			return albumErr("missing TIT2 in %s", f.Path)
		}
	}

	albumName, err := resolveTALB(a.Files, newAlbumName)
	if err != nil {
		return err
	}
	stdAlbumName, ok := titlenorm.Standardize(albumName)
	if !ok {
		return albumErr("invalid album name: %q", albumName)
	}
	for _, f := range a.Files {
		f.Tags.Put(tags.Frame{ID: "TALB", Kind: tags.KindText, Value: stdAlbumName})
	}

	trckStrings := make([]string, len(a.Files))
	for i, f := range a.Files {
		trck := f.Tags.Text("TRCK")
		if trck == "" {
			return albumErr("missing TRCK tag in %s", f.Path)
		}
		trckStrings[i] = trck
	}
	stdTrck, err := order.VerifyAndStandardizeStrList(trckStrings)
	if err != nil {
		return albumErr("%s", err.Error())
	}
	for i, f := range a.Files {
		f.Tags.Put(tags.Frame{ID: "TRCK", Kind: tags.KindNumericText, Value: stdTrck[i]})
	}

	allTPE1 := make(map[string]bool)
	for _, f := range a.Files {
		allTPE1[f.Tags.Text("TPE1")] = true
	}

	for _, f := range a.Files {
		tit2 := f.Tags.Text("TIT2")
		if len(allTPE1) > 1 {
			tpe1 := f.Tags.Text("TPE1")
			newTPE1, guest, ok := wl.SplitAndStandardize(tpe1)
			if !ok {
				return albumErr("bad TPE1: %q", tpe1)
			}
			if newTPE1 != tpe1 {
				f.Tags.Put(tags.Frame{ID: "TPE1", Kind: tags.KindText, Value: newTPE1})
			}
			if guest != "" {
				tit2 = titlenorm.Append(tit2, fmt.Sprintf(" (w/ %s)", guest))
			}
		}
		stdTIT2, ok := titlenorm.Standardize(tit2)
		if !ok {
			return albumErr("bad track name: %q", tit2)
		}
		f.Tags.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: stdTIT2})
	}

	if id, ok := computeAlbumID(a.Files); ok {
		a.AlbumID = id
		for _, f := range a.Files {
			f.AlbumID = id
			f.HasAlbumID = true
			f.Tags.Put(tags.Frame{
				ID: "TXXX", Kind: tags.KindTXXX,
				Description: tags.TXXXAlbumIDDescription,
				Value:       fmt.Sprintf("%d", id),
			})
		}
	}

	a.sortByTrack()
	return nil
}

// resolveTALB returns the single TALB value to apply to every file in
// the album: newAlbumName if given, else the unique TALB value, else
// (if the only disagreement is case) the most frequent exact-case
// variant, with ties broken lexicographically.
func resolveTALB(files []*AudioFile, newAlbumName string) (string, error) {
	if newAlbumName != "" {
		return newAlbumName, nil
	}

	counts := make(map[string]int)
	for _, f := range files {
		counts[f.Tags.Text("TALB")]++
	}
	if len(counts) == 1 {
		for talb := range counts {
			return talb, nil
		}
	}

	lowerSet := make(map[string]bool)
	for talb := range counts {
		lowerSet[strings.ToLower(talb)] = true
	}
	if len(lowerSet) != 1 {
		var all []string
		for talb := range counts {
			all = append(all, talb)
		}
		sort.Strings(all)
		return "", albumErr("inconsistent album names: %s", strings.Join(all, " / "))
	}

	best, bestCount := "", -1
	var variants []string
	for talb := range counts {
		variants = append(variants, talb)
	}
	sort.Strings(variants)
	for _, talb := range variants {
		if counts[talb] > bestCount {
			best, bestCount = talb, counts[talb]
		}
	}
	return best, nil
}

// Title returns the album's bare title with any bracketed tags split off.
func (a *Album) Title() string {
	title, _ := titlenorm.SplitTags(a.Files[0].Tags.Text("TALB"))
	return title
}

// Tags returns the album's bracketed title tags.
func (a *Album) Tags() []string {
	_, tagList := titlenorm.SplitTags(a.Files[0].Tags.Text("TALB"))
	return tagList
}

func (a *Album) breakdown() []tpe1Count {
	if a.tpe1Breakdown != nil {
		return a.tpe1Breakdown
	}
	counts := make(map[string]int)
	for _, f := range a.Files {
		counts[f.Tags.Text("TPE1")]++
	}
	out := make([]tpe1Count, 0, len(counts))
	for tpe1, n := range counts {
		out = append(out, tpe1Count{tpe1, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].tpe1 < out[j].tpe1
	})
	a.tpe1Breakdown = out
	return out
}

// IsCompilation reports whether the album is a multi-artist
// compilation: true iff the most common TPE1 covers less than 66% of
// the tracks.
func (a *Album) IsCompilation() bool {
	top := a.breakdown()[0]
	return float64(top.count) < 0.66*float64(len(a.Files))
}

// ArtistName returns the album's dominant artist, or "" if it's a
// compilation.
func (a *Album) ArtistName() string {
	if a.IsCompilation() {
		return ""
	}
	return a.breakdown()[0].tpe1
}

// ImportTimestamp returns the import timestamp shared by this album's
// files (valid only once they've been assigned to a transaction).
func (a *Album) ImportTimestamp() int64 {
	return a.Files[0].ImportTimestamp
}

// SetVolumeAndImportTimestamp stamps every file in the album with the
// given (volume, importTimestamp) pair. Every file must already have a
// fingerprint. Grounded on album.py's set_volume_and_import_timestamp.
func (a *Album) SetVolumeAndImportTimestamp(volume int, importTimestamp int64) error {
	for _, f := range a.Files {
		if f.Fingerprint == "" {
			return albumErr("can't set volume/timestamp on a fingerprint-less file: %s", f.Path)
		}
	}
	for _, f := range a.Files {
		f.Volume = volume
		f.ImportTimestamp = importTimestamp
		f.HasVolume = true
	}
	return nil
}

// DropPayloads releases every file's in-memory MPEG payload.
// Grounded on album.py's drop_payloads.
func (a *Album) DropPayloads() {
	for _, f := range a.Files {
		f.Payload = nil
	}
}

// EnsurePayloads re-reads the payload of every file whose Payload was
// previously dropped, verifying the re-scanned fingerprint still
// matches. Grounded on album.py's ensure_payloads.
func (a *Album) EnsurePayloads() error {
	for _, f := range a.Files {
		if f.Payload != nil {
			continue
		}
		rescanned, err := Scan(f.Path)
		if err != nil {
			return fmt.Errorf("album: reload payload for %s: %w", f.Path, err)
		}
		if rescanned.Fingerprint != f.Fingerprint {
			return albumErr("fingerprint changed on disk for %s", f.Path)
		}
		f.Payload = rescanned.Payload
	}
	return nil
}

// GroupFiles partitions a flat list of scanned files into albums by
// their raw TALB value (exact match only; case-insensitive
// consolidation happens later, inside Standardize). Order among files
// sharing a TALB is preserved. Grounded on chirp/library/album.py's
// from_directory, minus its directory-walking (owned by
// internal/dropbox).
func GroupFiles(files []*AudioFile) ([]*Album, error) {
	var order []string
	byTALB := make(map[string][]*AudioFile)
	for _, f := range files {
		talb := f.Tags.Text("TALB")
		if talb == "" {
			return nil, albumErr("missing TALB tag on %s", f.Path)
		}
		if _, ok := byTALB[talb]; !ok {
			order = append(order, talb)
		}
		byTALB[talb] = append(byTALB[talb], f)
	}

	albums := make([]*Album, 0, len(order))
	for _, talb := range order {
		a, err := NewAlbum(byTALB[talb])
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, nil
}

func (a *Album) String() string {
	suffix := a.ArtistName()
	if a.IsCompilation() {
		suffix = "-compilation-"
	}
	return fmt.Sprintf("%x:%d %q, %s", a.AlbumID, len(a.Files), a.Title(), suffix)
}
