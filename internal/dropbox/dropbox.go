// Package dropbox scans the inbox directory operators drop new music
// into: a root whose immediate subdirectories are candidate albums.
// Grounded on chirp/library/dropbox.py's Dropbox.
package dropbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/fingerprint"
	"github.com/chirpradio/chirparchive/internal/frame"
)

// SkippedFile records a candidate file that didn't look like a valid
// MP3 and was silently passed over rather than scanned.
type SkippedFile struct {
	Path   string
	Reason string
}

// Scanner walks the non-hidden, non-recursive immediate subdirectories
// of a dropbox root, treating each one that contains at least one
// *.mp3 file as a candidate album directory. It never reads a file's
// contents until Albums or Tracks is called.
type Scanner struct {
	root string
	dirs map[string][]string // directory path -> sorted mp3 basenames

	SkippedFiles []SkippedFile
}

// New lists root's immediate children and records which directories
// contain at least one eligible (non-hidden, *.mp3) file.
func New(root string) (*Scanner, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dropbox: read %s: %w", root, err)
	}

	s := &Scanner{root: root, dirs: make(map[string][]string)}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		childPath := filepath.Join(root, entry.Name())
		names, err := mp3Names(childPath)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			s.dirs[childPath] = names
		}
	}
	return s, nil
}

func mp3Names(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dropbox: read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".mp3") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// sortedDirs returns the candidate album directories, sorted for
// deterministic iteration order.
func (s *Scanner) sortedDirs() []string {
	dirs := make([]string, 0, len(s.dirs))
	for d := range s.dirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Files returns every candidate MP3 path in the dropbox, grouped by
// directory and sorted within each.
func (s *Scanner) Files() []string {
	var out []string
	for _, dir := range s.sortedDirs() {
		for _, name := range s.dirs[dir] {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

// Albums performs a full scan: every candidate file is fully analyzed
// via album.Scan (fingerprint, MPEG statistics) and the files in each
// directory are grouped into albums by TALB via album.GroupFiles. Any
// file that doesn't scan cleanly — unreadable tags, or MPEG content
// the analyzer rejects — is recorded in SkippedFiles and left out
// rather than aborting the whole scan, mirroring crawler.py's
// per-file skip-and-continue. The returned albums are unstandardized.
// Grounded on dropbox.py's albums() and album.py's
// from_directory(fast=False).
func (s *Scanner) Albums() ([]*album.Album, error) {
	var out []*album.Album
	for _, dir := range s.sortedDirs() {
		var files []*album.AudioFile
		for _, name := range s.dirs[dir] {
			path := filepath.Join(dir, name)
			af, err := album.Scan(path)
			if err != nil {
				s.SkippedFiles = append(s.SkippedFiles, SkippedFile{Path: path, Reason: err.Error()})
				continue
			}
			files = append(files, af)
		}
		if len(files) == 0 {
			continue
		}
		albums, err := album.GroupFiles(files)
		if err != nil {
			return nil, err
		}
		out = append(out, albums...)
	}
	return out, nil
}

// Tracks performs a fast, flat scan: every candidate file's tags are
// read via album.ScanFast, trusting whatever duration/frame-count/
// album-id it already carries instead of re-measuring the MPEG
// payload. Grounded on dropbox.py's tracks() and album.py's
// from_directory(fast=True).
func (s *Scanner) Tracks() ([]*album.AudioFile, error) {
	var out []*album.AudioFile
	for _, dir := range s.sortedDirs() {
		for _, name := range s.dirs[dir] {
			path := filepath.Join(dir, name)
			af, err := album.ScanFast(path)
			if err != nil {
				s.SkippedFiles = append(s.SkippedFiles, SkippedFile{Path: path, Reason: err.Error()})
				continue
			}
			out = append(out, af)
		}
	}
	return out, nil
}

// SampleHeader picks the median-sized file in dir (a path previously
// returned by this scanner) and analyzes only that one, returning a
// representative MPEG header for the whole directory without the cost
// of fully scanning every track in it. Grounded on analyzer.py's
// sample_and_analyze, ported as fingerprint.SampleAndAnalyze.
func (s *Scanner) SampleHeader(dir string) (*frame.Header, error) {
	names, ok := s.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("dropbox: %s is not a scanned directory", dir)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return fingerprint.SampleAndAnalyze(paths)
}
