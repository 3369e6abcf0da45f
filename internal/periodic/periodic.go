// Package periodic drives a dropbox import end to end: a dry-run scan
// that reports every album found and every error that would block a
// real import, and a real-import pass that commits clean albums into
// the archive in size-bounded batches. Grounded on
// chirp/library/do_periodic_import.py's import_albums/main.
package periodic

import (
	"fmt"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/dropbox"
	"github.com/chirpradio/chirparchive/internal/timeutil"
	"github.com/chirpradio/chirparchive/internal/txn"
)

// dryRunVolume is the placeholder volume number stamped onto albums
// during a scan, matching the original's 0xff sentinel.
const dryRunVolume = 0xff

// AlbumResult is one scanned album's scan-time outcome: its final
// (standardized, if successful) state plus whatever went wrong.
type AlbumResult struct {
	Album      *album.Album
	DurationMs int64
	Errors     []string
}

// OK reports whether this album scanned clean.
func (r AlbumResult) OK() bool { return len(r.Errors) == 0 }

// Report is the outcome of a full dropbox scan: one AlbumResult per
// album found, plus files that didn't even make it into an album
// (unreadable tags, rejected MPEG content).
type Report struct {
	Albums       []AlbumResult
	SkippedFiles []dropbox.SkippedFile
	ErrorCount   int
}

// Clean reports whether the scan found zero errors across every
// album and every skipped file — the gate a real import must pass.
func (r *Report) Clean() bool {
	return r.ErrorCount == 0 && len(r.SkippedFiles) == 0
}

// Scan walks inbox, standardizing and cross-checking every album it
// finds against both the catalog and the other albums in this same
// scan, without writing anything anywhere. Every album is stamped
// with the dry-run sentinel volume and a single prescan timestamp
// shared across the whole scan, matching the original's
// set_volume_and_import_timestamp(0xff, prescan_timestamp) call.
func Scan(inbox *dropbox.Scanner, cat *catalog.Catalog, wl *artist.Whitelist) (*Report, error) {
	albums, err := inbox.Albums()
	if err != nil {
		return nil, fmt.Errorf("periodic: scan dropbox: %w", err)
	}

	prescanTimestamp := timeutil.Now()
	seenFP := make(map[string]string) // fingerprint -> path already seen this scan

	report := &Report{SkippedFiles: inbox.SkippedFiles}
	for _, alb := range albums {
		alb.DropPayloads()

		var durationMs int64
		for _, af := range alb.Files {
			durationMs += int64(af.DurationMs)
		}

		var errs []string
		if collision := checkCollisions(alb, cat, seenFP); collision != "" {
			errs = append(errs, collision)
		}

		if err := alb.SetVolumeAndImportTimestamp(dryRunVolume, prescanTimestamp); err != nil {
			errs = append(errs, err.Error())
		} else if err := alb.Standardize(wl, ""); err != nil {
			errs = append(errs, err.Error())
		}

		report.Albums = append(report.Albums, AlbumResult{
			Album:      alb,
			DurationMs: durationMs,
			Errors:     errs,
		})
		report.ErrorCount += len(errs)
	}

	return report, nil
}

// checkCollisions marks every file in alb as seen and returns a
// human-readable description of the first collision found: either
// another album earlier in this same scan sharing a fingerprint, or
// the fingerprint already present in the catalog. Returns "" if none.
func checkCollisions(alb *album.Album, cat *catalog.Catalog, seenFP map[string]string) string {
	for _, af := range alb.Files {
		if otherPath, ok := seenFP[af.Fingerprint]; ok {
			return fmt.Sprintf("duplicate track within import: %s duplicates %s", af.Path, otherPath)
		}
		existing, err := cat.GetByFingerprint(af.Fingerprint)
		if err == nil && existing != nil {
			return fmt.Sprintf("track already in library: %s (fingerprint %s)", af.Path, af.Fingerprint)
		}
	}
	for _, af := range alb.Files {
		seenFP[af.Fingerprint] = af.Path
	}
	return ""
}

// Import re-scans inbox from scratch (so every album is re-read with
// a fresh, un-stamped volume/timestamp) and commits every album into
// the archive, batching tracks into transactions that are each
// committed once their accumulated payload size passes
// maxBatchBytes. Call this only after a Scan report has come back
// Clean — Import does not re-run the collision/standardize checks a
// Scan already did, it simply standardizes and commits. Grounded on
// import_albums's second albums() loop and its
// IMPORT_SIZE_LIMIT-bounded batching.
func Import(inbox *dropbox.Scanner, cat *catalog.Catalog, volume int, tmpPrefix, archivePrefix string, maxBatchBytes int64, wl *artist.Whitelist, blacklist map[string]bool) error {
	albums, err := inbox.Albums()
	if err != nil {
		return fmt.Errorf("periodic: re-scan dropbox for import: %w", err)
	}

	var tx *txn.Transaction
	for _, alb := range albums {
		if err := alb.Standardize(wl, ""); err != nil {
			return fmt.Errorf("periodic: standardize %s during import: %w", alb.Title(), err)
		}

		if tx == nil {
			tx = txn.New(cat, volume, timeutil.Now(), tmpPrefix, false, wl, blacklist)
		}
		if err := tx.AddAlbum(alb); err != nil {
			return fmt.Errorf("periodic: stage %s: %w", alb.Title(), err)
		}

		if tx.TotalSizeBytes() > maxBatchBytes {
			if err := tx.Commit(archivePrefix); err != nil {
				return fmt.Errorf("periodic: commit batch: %w", err)
			}
			tx = nil
		}
	}

	if tx != nil && tx.NumTracks() > 0 {
		if err := tx.Commit(archivePrefix); err != nil {
			return fmt.Errorf("periodic: commit final batch: %w", err)
		}
	}
	return nil
}
