package tags

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Write filters set per the import policy and serializes it to path's
// ID3v2.4 tag: drop any frame whose ID appears in blacklist, drop any
// frame not on WhitelistFrameIDs, drop the strip-on-import frames
// (TFLT/TLEN/TOWN, always rewritten by the caller instead), and coerce
// TBPM (trim trailing " BPM", parse as float, round to int, drop if
// <= 0). blacklist may be nil or empty. Grounded on the donor's
// write_mp3.go (bogem/id3v2 open/strip-legacy/save pattern),
// generalized from its fixed MusicBrainz field list to the full
// whitelist and the blacklist/strip-on-import/TBPM rules of
// import_file.py.
func Write(path string, set *Set, blacklist map[string]bool) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		if stripErr := stripLegacyTag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported id3 version: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteAllFrames()

	for _, f := range set.Frames() {
		if blacklist[f.ID] {
			continue
		}
		if !WhitelistFrameIDs[f.ID] {
			continue
		}
		if StrippedOnImportFrameIDs[f.ID] {
			continue
		}
		if f.Kind == KindNumericText && f.ID == "TBPM" {
			v, ok := CoerceBPM(f.Value)
			if !ok {
				continue
			}
			f.Value = v
		}
		addFrame(tag, f)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// SaveFinal serializes set to path's ID3v2.4 tag verbatim, with no
// whitelist/blacklist/strip-on-import filtering and no TBPM coercion:
// it is for a Set that importer.FixTags has already brought to its
// final, canonical form (required frames added, TPE* standardized,
// TBPM already coerced) and just needs to hit disk. path must already
// exist (callers create the target file before calling SaveFinal, so
// the UFID/canonical path machinery controls its own directory
// creation outside this package).
func SaveFinal(path string, set *Set) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		if stripErr := stripLegacyTag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported id3 version: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteAllFrames()

	for _, f := range set.Frames() {
		addFrame(tag, f)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

func addFrame(tag *id3v2.Tag, f Frame) {
	switch f.Kind {
	case KindUFID:
		tag.AddFrame("UFID", id3v2.UFIDFrame{
			OwnerIdentifier: f.Owner,
			Identifier:      []byte(f.Value),
		})
	case KindTXXX:
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: f.Description,
			Value:       f.Value,
		})
	default:
		tag.AddTextFrame(f.ID, id3v2.EncodingUTF8, f.Value)
	}
}

// CoerceBPM trims a trailing " BPM" suffix, parses the remainder as a
// float, and rounds to the nearest integer. It reports false if the
// value doesn't parse or rounds to <= 0, in which case the frame must
// be dropped entirely.
func CoerceBPM(s string) (string, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), " BPM")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", false
	}
	rounded := int(math.Round(f))
	if rounded <= 0 {
		return "", false
	}
	return strconv.Itoa(rounded), true
}

// stripLegacyTag removes an ID3v2.2/2.3 tag header the id3v2 library
// cannot parse in place, so a fresh ID3v2.4 tag can be opened on the
// bare audio stream.
func stripLegacyTag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return nil
	}
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10
	if data[5]&0x10 != 0 {
		tagSize += 10
	}
	if tagSize >= len(data) {
		return fmt.Errorf("id3v2 tag size %d exceeds file size %d", tagSize, len(data))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	return os.WriteFile(path, data[tagSize:], info.Mode())
}
