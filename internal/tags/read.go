package tags

import (
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Read opens path's ID3v2 tag and returns it as a standardized Set:
// runs of whitespace collapsed to single spaces, edges trimmed, empty
// alternates dropped, encoding forced to UTF-8. Only frames on
// WhitelistFrameIDs are kept. Grounded on the donor's read_mp3.go
// (bogem/id3v2 open/iterate pattern), generalized from its fixed
// MusicBrainz field list to the station's full whitelist.
func Read(path string) (*Set, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	set := NewSet()

	for id := range WhitelistFrameIDs {
		if id == "UFID" || id == "TXXX" {
			continue
		}
		for _, f := range tag.GetFrames(id) {
			tf, ok := f.(id3v2.TextFrame)
			if !ok {
				continue
			}
			v := standardizeValue(tf.Text)
			if v == "" {
				continue
			}
			kind := KindText
			if isNumericTextFrame(id) {
				kind = KindNumericText
			}
			set.Put(Frame{ID: id, Kind: kind, Value: v})
		}
	}

	for _, f := range tag.GetFrames("TXXX") {
		txxx, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		v := standardizeValue(txxx.Value)
		if v == "" {
			continue
		}
		set.Put(Frame{ID: "TXXX", Kind: KindTXXX, Description: txxx.Description, Value: v})
	}

	for _, f := range tag.GetFrames("UFID") {
		ufid, ok := f.(id3v2.UFIDFrame)
		if !ok {
			continue
		}
		set.Put(Frame{ID: "UFID", Kind: KindUFID, Owner: ufid.OwnerIdentifier, Value: string(ufid.Identifier)})
	}

	return set, nil
}

// standardizeValue collapses internal whitespace runs to single spaces
// and trims the result.
func standardizeValue(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

var numericTextFrameIDs = map[string]bool{
	"TRCK": true,
	"TPOS": true,
	"TBPM": true,
	"TLEN": true,
}

func isNumericTextFrame(id string) bool {
	return numericTextFrameIDs[id]
}
