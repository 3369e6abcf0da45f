package album

import (
	"fmt"
	"os"
	"strconv"

	"github.com/chirpradio/chirparchive/internal/fingerprint"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// Scan produces an AudioFile for the file at path, inspecting the
// entire MPEG payload to compute its fingerprint and frame statistics.
// Volume and ImportTimestamp are left unset; they are only meaningful
// once a file has been assigned to an import transaction. Grounded on
// chirp/library/audio_file.py's scan().
func Scan(path string) (*AudioFile, error) {
	tagSet, err := tags.Read(path)
	if err != nil {
		return nil, fmt.Errorf("album: read tags from %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("album: open %s: %w", path, err)
	}
	defer f.Close()

	result, err := fingerprint.Analyze(f, true, true)
	if err != nil {
		return nil, err
	}

	af := &AudioFile{
		Fingerprint: result.Fingerprint,
		FrameCount:  result.FrameCount,
		FrameSize:   result.FrameSize,
		Header:      result.Header,
		DurationMs:  result.DurationMs,
		Tags:        tagSet,
		Path:        path,
		Payload:     result.Payload,
	}
	applyUFIDAndAlbumID(af, tagSet)
	return af, nil
}

// ScanFast produces an AudioFile for the file at path by trusting its
// existing tags instead of re-inspecting the MPEG payload: duration,
// frame count/size, and album id come from TLEN/TXXX tags rather than
// measurement, and Payload is never populated. Much cheaper than Scan,
// at the cost of trusting a file's tagging to be accurate. Grounded on
// chirp/library/audio_file.py's scan_fast().
func ScanFast(path string) (*AudioFile, error) {
	tagSet, err := tags.Read(path)
	if err != nil {
		return nil, fmt.Errorf("album: read tags from %s: %w", path, err)
	}

	af := &AudioFile{Tags: tagSet, Path: path}
	applyUFIDAndAlbumID(af, tagSet)

	if n, ok := tagToInt(tagSet.Text("TLEN")); ok {
		af.DurationMs = n
	}
	if n, ok := tagToInt(tagSet.TXXX(tags.TXXXFrameCountDescription)); ok {
		af.FrameCount = n
	}
	if n, ok := tagToInt(tagSet.TXXX(tags.TXXXFrameSizeDescription)); ok {
		af.FrameSize = n
	}
	return af, nil
}

func applyUFIDAndAlbumID(af *AudioFile, tagSet *tags.Set) {
	if _, value, ok := tagSet.UFID(); ok {
		if vol, ts, fp, err := tags.ParseUFID(value); err == nil {
			af.Volume = vol
			af.ImportTimestamp = ts
			af.HasVolume = true
			if af.Fingerprint == "" {
				af.Fingerprint = fp
			}
		}
	}
	if n, ok := tagToInt(tagSet.TXXX(tags.TXXXAlbumIDDescription)); ok {
		af.AlbumID = uint64(n)
		af.HasAlbumID = true
	}
}

func tagToInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
