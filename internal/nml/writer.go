// Package nml maintains a Traktor NML (version 14) catalog file in
// place: a from-scratch writer for a brand new file, an incremental
// writer that patches only the entries whose tags changed and appends
// whatever is new, and an append-only fast path that avoids touching
// the bulk of the file when nothing existing needed to change.
// Grounded on chirp/library/nml_writer.py's NMLWriter/NMLReadWriter.
package nml

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/timeutil"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no" ?>` + "\n"

// Export brings the NML file at path up to date with cat's contents,
// as seen through a volume named fileVolume rooted at rootDir. If path
// doesn't exist, is empty, or fails to parse as NML, the file is
// written from scratch; otherwise only changed/new entries are
// touched. The current time is recorded as the export timestamp; when
// the existing file carries no previous export timestamp, the cutoff
// is 0 and every catalog row counts as changed.
func Export(path string, cat *catalog.Catalog, fileVolume, rootDir string) error {
	raw, err := os.ReadFile(path)
	if err != nil || len(raw) == 0 {
		return writeFromScratch(path, cat, fileVolume, rootDir)
	}

	var doc Document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return writeFromScratch(path, cat, fileVolume, rootDir)
	}

	return exportIncremental(path, raw, &doc, cat, fileVolume, rootDir)
}

// writeFromScratch enumerates the entire catalog and writes a
// complete new document, per export mode 1.
func writeFromScratch(path string, cat *catalog.Catalog, fileVolume, rootDir string) error {
	files, err := cat.GetAll()
	if err != nil {
		return fmt.Errorf("nml: list catalog: %w", err)
	}

	exp := newExporter(fileVolume, rootDir)
	sort.Slice(files, func(i, j int) bool {
		ai, ni := albumSortKey(files[i])
		aj, nj := albumSortKey(files[j])
		if ai != aj {
			return ai < aj
		}
		return ni < nj
	})

	entries := make([]Entry, len(files))
	for i, af := range files {
		entry, err := exp.buildEntry(af)
		if err != nil {
			return err
		}
		entries[i] = entry
	}

	now := timeutil.Now()
	doc := Document{
		Version: "14",
		Head:    Head{Company: "www.native-instruments.com", Program: "Traktor - Native Instruments"},
		Collection: Collection{
			Entries: len(entries),
			Entry:   entries,
		},
		Playlists: newPlaylistsTree(fmt.Sprintf("%d", now)),
	}
	return writeDocument(path, &doc)
}

// exportIncremental implements export mode 2: only files modified
// since the previous export's recorded timestamp are touched.
func exportIncremental(path string, raw []byte, doc *Document, cat *catalog.Catalog, fileVolume, rootDir string) error {
	lastTs, err := lastExportTimestamp(doc)
	if err != nil {
		return err
	}

	changed, err := cat.GetSince(lastTs)
	if err != nil {
		return fmt.Errorf("nml: list changes since %d: %w", lastTs, err)
	}

	byFingerprint := make(map[string]*album.AudioFile, len(changed))
	for _, af := range changed {
		byFingerprint[af.Fingerprint] = af
	}

	exp := newExporter(fileVolume, rootDir)
	var anyModified bool
	for i := range doc.Collection.Entry {
		fp := fingerprintOf(doc.Collection.Entry[i])
		af, ok := byFingerprint[fp]
		if !ok {
			continue
		}
		if err := exp.modifyEntry(&doc.Collection.Entry[i], af); err != nil {
			return err
		}
		delete(byFingerprint, fp)
		anyModified = true
	}

	remaining := make([]*album.AudioFile, 0, len(byFingerprint))
	for _, af := range byFingerprint {
		remaining = append(remaining, af)
	}
	sort.Slice(remaining, func(i, j int) bool {
		ai, ni := albumSortKey(remaining[i])
		aj, nj := albumSortKey(remaining[j])
		if ai != aj {
			return ai < aj
		}
		return ni < nj
	})

	newEntries := make([]Entry, len(remaining))
	for i, af := range remaining {
		entry, err := exp.buildEntry(af)
		if err != nil {
			return err
		}
		newEntries[i] = entry
	}

	now := timeutil.Now()
	newCount := len(doc.Collection.Entry) + len(newEntries)
	nowStr := fmt.Sprintf("%d", now)

	if !anyModified {
		if patched, ok := tryAppendOnly(raw, newEntries, newCount, nowStr); ok {
			return os.WriteFile(path, patched, 0o644)
		}
	}

	doc.Collection.Entry = append(doc.Collection.Entry, newEntries...)
	doc.Collection.Entries = newCount
	doc.setChirpUUID(nowStr)
	return writeDocument(path, doc)
}

// lastExportTimestamp reads the hidden "_CHIRP" playlist's UUID. If no
// such playlist exists yet, every catalog row is treated as new,
// matching NMLReadWriter._update_timestamp's fallback.
func lastExportTimestamp(doc *Document) (int64, error) {
	uuid, ok := doc.chirpUUID()
	if !ok {
		return 0, nil
	}
	var ts int64
	if _, err := fmt.Sscanf(uuid, "%d", &ts); err != nil {
		return 0, fmt.Errorf("nml: malformed _CHIRP UUID %q: %w", uuid, err)
	}
	return ts, nil
}

func writeDocument(path string, doc *Document) error {
	body, err := xml.MarshalIndent(doc, "", "")
	if err != nil {
		return fmt.Errorf("nml: marshal document: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nml: create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := out.WriteString(xmlHeader); err != nil {
		return fmt.Errorf("nml: write %s: %w", path, err)
	}
	if _, err := out.Write(body); err != nil {
		return fmt.Errorf("nml: write %s: %w", path, err)
	}
	return nil
}
