package nml

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"sort"
	"strconv"
)

var (
	collectionEntriesRE = regexp.MustCompile(`<COLLECTION ENTRIES="(\d+)"`)
	collectionSeamRE    = regexp.MustCompile(`(?s)</COLLECTION>\s*<PLAYLISTS>`)
	chirpUUIDRE         = regexp.MustCompile(`(?s)NAME="_CHIRP">\s*<PLAYLIST[^>]*?UUID="(\d+)"`)
)

// tryAppendOnly attempts the fast path described in spec §4.10: when
// nothing existing changed, patch the entry count, splice the new
// ENTRY elements in just before </COLLECTION>, and update the _CHIRP
// timestamp, all without touching the rest of the file. It fails (ok
// == false) if raw's layout doesn't match the three anchors this
// requires, in which case the caller falls back to a full rewrite.
func tryAppendOnly(raw []byte, newEntries []Entry, newCount int, nowStamp string) ([]byte, bool) {
	entriesLoc := collectionEntriesRE.FindSubmatchIndex(raw)
	seamLoc := collectionSeamRE.FindIndex(raw)
	uuidLoc := chirpUUIDRE.FindSubmatchIndex(raw)
	if entriesLoc == nil || seamLoc == nil || uuidLoc == nil {
		return nil, false
	}

	spliced, err := marshalEntries(newEntries)
	if err != nil {
		return nil, false
	}

	type edit struct {
		start, end int
		with       []byte
	}
	edits := []edit{
		{entriesLoc[2], entriesLoc[3], []byte(strconv.Itoa(newCount))},
		{seamLoc[0], seamLoc[0], spliced}, // pure insertion, right before </COLLECTION>
		{uuidLoc[2], uuidLoc[3], []byte(nowStamp)},
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	out := append([]byte(nil), raw...)
	for _, e := range edits {
		var buf bytes.Buffer
		buf.Write(out[:e.start])
		buf.Write(e.with)
		buf.Write(out[e.end:])
		out = buf.Bytes()
	}
	return out, true
}

func marshalEntries(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		b, err := xml.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}
