package frame

// findID3 looks for the next ID3v2 header in data: the 3-byte magic
// "ID3", a major/minor version byte pair, a flags byte, and a 4-byte
// syncsafe size (each byte's top bit clear). It returns the header's
// offset and its *total* size — the 10-byte header plus the syncsafe
// content size — or ok=false if no ID3 header starts within data.
//
// Grounded on chirp/common/id3_header.py's find_size()/parse_size(), with
// one deliberate correction: the source's skip arithmetic in
// mp3_frame.py adds only the syncsafe content size to the offset,
// omitting the header's own 10 bytes. SPEC_FULL.md §9 resolves this in
// favor of the literal "total size" wording in spec.md §4.1 step 2, so
// totalSize here already includes the header.
func findID3(data []byte) (offset, totalSize int, ok bool) {
	for i := 0; i+10 <= len(data); i++ {
		if data[i] != 'I' || data[i+1] != 'D' || data[i+2] != '3' {
			continue
		}
		// data[i+3], data[i+4]: version major/minor — any value is
		// accepted here, matching the source's liberal parsing.
		// data[i+5]: flags byte, ignored for sizing purposes.
		size, sizeOK := decodeSyncsafe(data[i+6 : i+10])
		if !sizeOK {
			continue
		}
		return i, 10 + size, true
	}
	return 0, 0, false
}

// decodeSyncsafe decodes a 4-byte ID3v2 syncsafe integer (7 bits per
// byte, top bit always clear).
func decodeSyncsafe(b []byte) (int, bool) {
	if len(b) != 4 {
		return 0, false
	}
	size := 0
	for _, by := range b {
		if by&0x80 != 0 {
			return 0, false
		}
		size = size<<7 | int(by&0x7F)
	}
	return size, true
}
