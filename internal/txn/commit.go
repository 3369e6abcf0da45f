package txn

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// Commit finalizes a non-dry-run transaction in three steps: record
// every staged file in the catalog, atomically move the staged
// "vol<VV>/<timestamp>" subtree from the temporary prefix into
// targetPrefix, then commit the catalog transaction. A _source_files
// manifest listing the original dropbox paths, one per line and
// sorted, is written into the new directory last.
//
// A failure before the move reverts the catalog transaction cleanly;
// the staged files are left under the temporary prefix for inspection.
// A failure of the move itself also reverts the catalog transaction.
// A failure of the catalog commit after a successful move is not
// recoverable automatically: the files are already in the archive but
// not yet catalogued, and the caller must surface this loudly rather
// than retry silently. Grounded on import_transaction.py's commit.
func (t *Transaction) Commit(targetPrefix string) error {
	if t.dryRun {
		return nil
	}

	catTxn, err := t.cat.BeginAdd(t.volume, t.importTimestamp)
	if err != nil {
		return err
	}
	for _, af := range t.files {
		if err := catTxn.Add(af); err != nil {
			catTxn.Revert() //nolint:errcheck // original error is the one that matters
			return fmt.Errorf("txn: stage %s in catalog: %w", af.Fingerprint, err)
		}
	}

	ufidPrefix := tags.UFIDPrefix(t.volume, t.importTimestamp)
	tmpDir := filepath.Join(t.scratchDir(), ufidPrefix)
	realDir := filepath.Join(targetPrefix, ufidPrefix)

	if err := renames(tmpDir, realDir); err != nil {
		catTxn.Revert() //nolint:errcheck // original error is the one that matters
		return fmt.Errorf("txn: move %s to %s: %w", tmpDir, realDir, err)
	}

	if err := catTxn.Commit(); err != nil {
		return fmt.Errorf("txn: moved %d files to %s but catalog commit failed, archive and catalog are now out of sync: %w",
			len(t.files), realDir, err)
	}

	return writeSourceManifest(realDir, t.files)
}

// renames moves src to dst, creating dst's parent directories as
// needed, then removes src's ancestor directories that are left empty,
// walking upward until it reaches one that is not empty (or cannot be
// removed). Mirrors Python's os.renames.
func renames(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("txn: create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		return err
	}

	for dir := filepath.Dir(src); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

// writeSourceManifest writes a "_source_files" file in dir listing
// every staged file's original dropbox path, one per line, sorted.
func writeSourceManifest(dir string, files []*album.AudioFile) error {
	paths := make([]string, len(files))
	for i, af := range files {
		paths[i] = af.Path
	}
	sort.Strings(paths)

	out, err := os.Create(filepath.Join(dir, "_source_files"))
	if err != nil {
		return fmt.Errorf("txn: create source manifest in %s: %w", dir, err)
	}
	defer out.Close()

	for _, p := range paths {
		if _, err := fmt.Fprintln(out, p); err != nil {
			return fmt.Errorf("txn: write source manifest in %s: %w", dir, err)
		}
	}
	return nil
}
