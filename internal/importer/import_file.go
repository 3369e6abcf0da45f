package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// Error reports a failed import: one or more human-readable reasons,
// collected rather than stopping at the first. Grounded on
// import_file.py's ImportFileError.
type Error struct {
	Reasons []string
}

func (e *Error) Error() string {
	return "import file: " + strings.Join(e.Reasons, "; ")
}

func importErr(reasons ...string) error {
	return &Error{Reasons: reasons}
}

// FixTags builds the canonical tag set an archived file must carry:
// it filters af's current tags down to the whitelist (minus the
// strip-on-import frames), standardizes TPE* values against wl
// (dropping unknown artists below TPE1, failing on an unknown TPE1),
// coerces TBPM, manually drops TPOS (not yet part of this archive's
// contract), and appends the required TLEN/frame-count/frame-size/
// TFLT/TOWN/UFID frames. af must already have Volume/ImportTimestamp
// assigned (HasVolume true) and a Fingerprint. Grounded on
// import_file.py's _fix_file_tags.
func FixTags(af *album.AudioFile, wl *artist.Whitelist, blacklist map[string]bool) (*tags.Set, error) {
	if _, _, ok := af.Tags.UFID(); ok {
		return nil, importErr("file already contains CHIRP UFID tag")
	}

	newSet := tags.NewSet()

	for _, f := range af.Tags.Frames() {
		if blacklist[f.ID] {
			return nil, importErr(fmt.Sprintf("found blacklisted tag: %s", f.ID))
		}
		if !tags.WhitelistFrameIDs[f.ID] || tags.StrippedOnImportFrameIDs[f.ID] {
			continue
		}
		// TPOS is not yet part of this archive's contract.
		if f.ID == "TPOS" {
			continue
		}

		if strings.HasPrefix(f.ID, "TPE") {
			std, ok := wl.Standardize(f.Value)
			if !ok {
				if f.ID != "TPE1" {
					continue // drop an unknown artist below lead-performer rank
				}
				return nil, importErr(fmt.Sprintf("unknown artist %q in %s", f.Value, f.ID))
			}
			f.Value = std
		}

		if f.ID == "TBPM" {
			v, ok := tags.CoerceBPM(f.Value)
			if !ok {
				continue
			}
			f.Value = v
		}

		newSet.Put(f)
	}

	newSet.Put(tags.Frame{ID: "TLEN", Kind: tags.KindNumericText, Value: fmt.Sprintf("%d", af.DurationMs)})
	newSet.Put(tags.Frame{
		ID: "TXXX", Kind: tags.KindTXXX,
		Description: tags.TXXXFrameCountDescription,
		Value:       fmt.Sprintf("%d", af.FrameCount),
	})
	newSet.Put(tags.Frame{
		ID: "TXXX", Kind: tags.KindTXXX,
		Description: tags.TXXXFrameSizeDescription,
		Value:       fmt.Sprintf("%d", af.FrameSize),
	})
	if af.HasAlbumID {
		newSet.Put(tags.Frame{
			ID: "TXXX", Kind: tags.KindTXXX,
			Description: tags.TXXXAlbumIDDescription,
			Value:       fmt.Sprintf("%d", af.AlbumID),
		})
	}
	newSet.Put(tags.Frame{ID: "TFLT", Kind: tags.KindText, Value: tags.TFLT})
	newSet.Put(tags.Frame{ID: "TOWN", Kind: tags.KindText, Value: tags.Owner})

	if !af.HasUFID() {
		return nil, importErr("file is missing volume/timestamp/fingerprint, cannot build UFID")
	}
	newSet.Put(tags.Frame{
		ID: "UFID", Kind: tags.KindUFID,
		Owner: tags.UFIDOwnerIdentifier,
		Value: af.UFID(),
	})

	return newSet, nil
}

// StandardizeFile corrects af's tags in place via FixTags, then
// re-runs the full consistency checker against the result. If the
// checker finds anything wrong, af's tags are reverted to their
// original value and an *Error is returned collecting every reason.
// Grounded on import_file.py's standardize_file.
func StandardizeFile(af *album.AudioFile, wl *artist.Whitelist, blacklist map[string]bool) error {
	original := af.Tags

	fixed, err := FixTags(af, wl, blacklist)
	if err != nil {
		return err
	}
	af.Tags = fixed

	if errs := FindTagsErrors(af, wl); len(errs) > 0 {
		af.Tags = original
		return importErr(append([]string{"found pre-write errors"}, errs...)...)
	}
	return nil
}

// WriteFile commits a standardized af into the archive tree rooted at
// prefix: creates the canonical "vol<VV>/<timestamp>" directory if
// needed, refuses if the target file already exists, writes the new
// ID3 tag followed by af's original MPEG payload, then re-scans the
// written file and re-runs the checker against it (using wl, the same
// whitelist StandardizeFile used). On any post-write failure the
// partial file is deleted. Grounded on import_file.py's write_file.
func WriteFile(af *album.AudioFile, wl *artist.Whitelist, prefix string) (string, error) {
	dir := af.CanonicalDirectory(prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("importer: create %s: %w", dir, err)
	}

	path := af.CanonicalPath(prefix)
	if _, err := os.Stat(path); err == nil {
		return "", importErr("file exists: " + path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("importer: stat %s: %w", path, err)
	}

	if af.Payload == nil {
		return "", importErr("audio payload not loaded for " + path)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return "", fmt.Errorf("importer: create %s: %w", path, err)
	}
	if err := tags.SaveFinal(path, af.Tags); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("importer: write tags to %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("importer: append payload to %s: %w", path, err)
	}
	_, writeErr := f.Write(af.Payload)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("importer: append payload to %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("importer: close %s: %w", path, closeErr)
	}

	newAF, err := album.Scan(path)
	if err != nil {
		os.Remove(path)
		return "", importErr("new file damaged: " + err.Error())
	}
	newAF.Volume = af.Volume
	newAF.ImportTimestamp = af.ImportTimestamp
	newAF.HasVolume = true

	if errs := FindTagsErrors(newAF, wl); errs != nil {
		os.Remove(path)
		return "", importErr(append([]string{"found post-write errors"}, errs...)...)
	}

	return path, nil
}
