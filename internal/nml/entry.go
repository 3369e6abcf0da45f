package nml

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/order"
)

const (
	unknownArtist = "* Artist Not Known *"
	unknownAlbum  = "* Album Not Known *"
	unknownSong   = "* Title Not Known *"

	// defaultOfTracks is substituted when a file's TRCK frame carries no
	// "/total" suffix. Matches the original's hardcoded fallback.
	defaultOfTracks = 100

	// fixedModifiedTime is written into every new entry's MODIFIED_TIME
	// attribute. The original never derives this from anything; it is
	// a hardset placeholder value carried over unchanged.
	fixedModifiedTime = "35364"

	// genrePlaceholder stands in for a genre field the catalog never
	// populates, matching the original's unimplemented TODO.
	genrePlaceholder = "Unknown"
)

// exporter holds the per-export constants shared by every entry: the
// SMB-style volume Traktor should resolve files against and the
// directory root that volume is rooted at.
type exporter struct {
	fileVolume       string
	fileVolumeQuoted string
	rootDir          string
}

func newExporter(fileVolume, rootDir string) *exporter {
	return &exporter{
		fileVolume:       fileVolume,
		fileVolumeQuoted: traktorPathQuote(fileVolume),
		rootDir:          rootDir,
	}
}

// buildEntry constructs a brand new ENTRY for af.
func (e *exporter) buildEntry(af *album.AudioFile) (Entry, error) {
	orderNum, totalNum, err := order.Decode(af.Tags.Text("TRCK"))
	if err != nil {
		return Entry{}, fmt.Errorf("nml: decode TRCK for %s: %w", af.Fingerprint, err)
	}
	if totalNum < 0 {
		totalNum = defaultOfTracks
	}

	importDate := formatImportDate(af.ImportTimestamp)

	return Entry{
		ModifiedDate: importDate,
		ModifiedTime: fixedModifiedTime,
		Title:        simplifyOr(af.Tags.Text("TIT2"), unknownSong),
		Artist:       simplifyOr(af.Tags.Text("TPE1"), unknownArtist),
		Location: Location{
			Dir:      traktorPathQuote(af.CanonicalDirectory(e.rootDir)),
			File:     af.CanonicalFilename(),
			Volume:   e.fileVolumeQuoted,
			VolumeID: "",
		},
		Album: AlbumRef{
			OfTracks: totalNum,
			Title:    simplifyOr(af.Tags.Text("TALB"), unknownAlbum),
			Track:    orderNum,
		},
		Info: Info{
			Bitrate:    bitrateBps(af),
			Genre:      genrePlaceholder,
			Playtime:   af.DurationMs / 1000,
			ImportDate: importDate,
			FileSize:   af.FrameSize / 1024,
		},
	}, nil
}

// modifyEntry overwrites the fields of entry that can legitimately
// change after import: title/artist/album metadata and whatever
// followed from a tag edit. The fields that double as the entry's
// identity — file name, volume, bitrate, duration — are left alone,
// matching the original's explicit refusal to touch them.
func (e *exporter) modifyEntry(entry *Entry, af *album.AudioFile) error {
	orderNum, totalNum, err := order.Decode(af.Tags.Text("TRCK"))
	if err != nil {
		return fmt.Errorf("nml: decode TRCK for %s: %w", af.Fingerprint, err)
	}
	if totalNum < 0 {
		totalNum = defaultOfTracks
	}

	importDate := formatImportDate(af.ImportTimestamp)

	entry.Artist = simplifyOr(af.Tags.Text("TPE1"), unknownArtist)
	entry.Title = simplifyOr(af.Tags.Text("TIT2"), unknownSong)
	entry.ModifiedDate = importDate

	entry.Album.OfTracks = totalNum
	entry.Album.Track = orderNum
	entry.Album.Title = simplifyOr(af.Tags.Text("TALB"), unknownAlbum)

	entry.Info.FileSize = af.FrameSize / 1024
	entry.Info.ImportDate = importDate
	return nil
}

// fingerprintOf recovers the fingerprint an entry's LOCATION/@FILE
// attribute was built from: "<fingerprint>.mp3".
func fingerprintOf(entry Entry) string {
	return strings.TrimSuffix(entry.Location.File, ".mp3")
}

func formatImportDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006/01/02")
}

func bitrateBps(af *album.AudioFile) int {
	if af.Header == nil || af.Header.BitRateKbps == nil {
		return 0
	}
	return int(*af.Header.BitRateKbps * 1000)
}

// traktorPathQuote escapes a directory path the way Traktor's own
// export tooling does: every slash becomes "/:".
func traktorPathQuote(path string) string {
	return strings.ReplaceAll(path, "/", "/:")
}

// simplifyOr simplifies text, or returns fallback if text is empty.
func simplifyOr(text, fallback string) string {
	if text == "" {
		return fallback
	}
	return simplify(text)
}

// simplify replaces diacritics in letters and digits with their base
// 7-bit form (NFD decomposition, combining marks dropped), with the
// handful of ring/stroke letters NFD alone can't reduce (Ø/ø) mapped
// by hand. Grounded on chirp/common/unicode_util.py's simplify.
func simplify(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch unicode.ToUpper(r) {
		case 'Ø':
			if unicode.IsUpper(r) {
				b.WriteRune('O')
			} else {
				b.WriteRune('o')
			}
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			r = stripDiacritic(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripDiacritic(r rune) rune {
	decomposed := norm.NFD.String(string(r))
	for _, base := range decomposed {
		return base
	}
	return r
}

// albumSortKey orders newly-appended entries the way Traktor displays
// them: by album identity, then by track order number, since Traktor
// otherwise sorts a playlist by file-append order rather than by tag.
func albumSortKey(af *album.AudioFile) (uint64, int) {
	orderNum, _, err := order.Decode(af.Tags.Text("TRCK"))
	if err != nil {
		return af.AlbumID, 0
	}
	return af.AlbumID, orderNum
}
