// Package txn stages and commits an import: a batch of albums written
// into a temporary prefix, then atomically moved into the archive and
// recorded in the catalog. Grounded on
// chirp/library/import_transaction.py's ImportTransaction.
package txn

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/importer"
)

// Transaction accumulates albums staged under a temporary prefix for a
// single (volume, importTimestamp) commit. Every file added through
// AddAlbum is written into tmpPrefix immediately (unless dryRun); the
// move into the archive proper and the catalog insert both happen
// together in Commit.
type Transaction struct {
	cat             *catalog.Catalog
	volume          int
	importTimestamp int64
	tmpPrefix       string
	scratchID       string
	dryRun          bool
	whitelist       *artist.Whitelist
	blacklist       map[string]bool

	files          []*album.AudioFile
	numAlbums      int
	totalSizeBytes int64
}

// New starts a transaction that will stage files under tmpPrefix and,
// on Commit, insert them into cat under (volume, importTimestamp). If
// dryRun is true, AddAlbum validates and accounts for albums without
// writing anything to disk, and Commit is a no-op. Each transaction
// stages into its own uuid-named scratch subdirectory of tmpPrefix so
// two transactions writing the same (volume, importTimestamp) at once
// — two periodic-import invocations racing each other — never collide
// on the same staging path.
func New(cat *catalog.Catalog, volume int, importTimestamp int64, tmpPrefix string, dryRun bool, whitelist *artist.Whitelist, blacklist map[string]bool) *Transaction {
	return &Transaction{
		cat:             cat,
		volume:          volume,
		importTimestamp: importTimestamp,
		tmpPrefix:       tmpPrefix,
		scratchID:       uuid.NewString(),
		dryRun:          dryRun,
		whitelist:       whitelist,
		blacklist:       blacklist,
	}
}

// Summary returns a short human-readable description of this
// transaction's accumulated state, suitable for batch-commit progress
// logging.
func (t *Transaction) Summary() string {
	return fmt.Sprintf("%d albums / %d tracks / %s", t.numAlbums, len(t.files), humanize.Bytes(uint64(t.totalSizeBytes)))
}

// scratchDir is the per-transaction staging root under tmpPrefix.
func (t *Transaction) scratchDir() string {
	return filepath.Join(t.tmpPrefix, t.scratchID)
}

// NumTracks returns the number of files staged so far.
func (t *Transaction) NumTracks() int { return len(t.files) }

// NumAlbums returns the number of albums staged so far.
func (t *Transaction) NumAlbums() int { return t.numAlbums }

// TotalSizeBytes returns the sum of every staged file's frame size.
func (t *Transaction) TotalSizeBytes() int64 { return t.totalSizeBytes }

// AddAlbum stamps alb with this transaction's (volume, importTimestamp),
// standardizes each file's tags against whitelist/blacklist (the
// per-file half of album.py's Album.standardize, which the donor kept
// in the same module; here it lives across a package boundary since
// internal/importer already imports internal/album), writes each file
// into the temporary prefix unless this is a dry run, then drops the
// payloads to save memory. alb must already have had Standardize
// called on it for its album-level tags (TALB consensus, track
// numbering, artist hoisting).
func (t *Transaction) AddAlbum(alb *album.Album) error {
	if err := alb.SetVolumeAndImportTimestamp(t.volume, t.importTimestamp); err != nil {
		return err
	}
	if err := alb.EnsurePayloads(); err != nil {
		return err
	}

	for _, af := range alb.Files {
		if err := importer.StandardizeFile(af, t.whitelist, t.blacklist); err != nil {
			return fmt.Errorf("txn: standardize %s: %w", af.Path, err)
		}
	}

	if !t.dryRun {
		for _, af := range alb.Files {
			if _, err := importer.WriteFile(af, t.whitelist, t.scratchDir()); err != nil {
				return fmt.Errorf("txn: write %s: %w", af.Path, err)
			}
		}
	}
	alb.DropPayloads()

	t.files = append(t.files, alb.Files...)
	t.numAlbums++
	for _, af := range alb.Files {
		t.totalSizeBytes += int64(af.FrameSize)
	}
	return nil
}
