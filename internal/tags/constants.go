package tags

// Station-wide constants governing tag policy. Grounded on
// chirp/library/constants.py.
const (
	// Owner is the fixed TOWN value every archived file must carry.
	Owner = "The Chicago Independent Radio Project"

	// TFLT is the fixed file-type value every archived file must carry.
	TFLT = "MPG/3"

	// UFIDOwnerIdentifier is the owner string under which this station's
	// UFID frame is stored; it doubles as the frame's sub-key.
	UFIDOwnerIdentifier = "http://chirpradio.org/_ufid/1"

	// TXXXAlbumIDDescription names the TXXX frame holding the album id.
	TXXXAlbumIDDescription = "CHIRP Album ID"

	// TXXXFrameCountDescription names the TXXX frame holding frame_count.
	TXXXFrameCountDescription = "Frame Count"

	// TXXXFrameSizeDescription names the TXXX frame holding frame_size.
	TXXXFrameSizeDescription = "Frame Size"
)

// TFLTWhitelist is the set of TFLT values accepted by the checker. A
// single value in production, kept as a set to mirror the source's
// extensibility.
var TFLTWhitelist = map[string]bool{
	"MPG/3": true,
}

// RequiredFrameIDs are the plain (non-TXXX, non-UFID) frame ids every
// archived file must carry. TALB is not among them: album assembly
// (internal/album) demands it of every track before an album can be
// formed at all, but the per-file consistency checker does not.
var RequiredFrameIDs = []string{
	"TIT2", "TPE1", "TRCK", "TLEN", "TOWN", "TFLT",
}

// WhitelistFrameIDs are the only plain frame ids (non-TXXX) the importer
// keeps from a candidate file's existing tags; anything else is dropped
// on import. TXXX frames are kept whatever their description; no
// per-description whitelist is applied.
var WhitelistFrameIDs = map[string]bool{
	"TIT1": true, "TIT2": true,
	"TPE1": true, "TPE2": true, "TPE3": true, "TPE4": true,
	"TALB": true, "TRCK": true, "TPOS": true,
	"TBPM": true, "TCOM": true, "TCON": true, "TCOP": true,
	"TDRC": true, "TDTG": true, "TENC": true, "TEXT": true,
	"TKEY": true, "TLAN": true, "TMED": true, "TOAL": true,
	"TOLY": true, "TOPE": true, "TPUB": true, "TRSN": true,
	"TRSO": true, "TSOA": true, "TSOP": true, "TSOT": true,
	"TSRC": true, "TSSE": true,
	// Always rewritten by the importer, but still legal on a file.
	"TLEN": true, "TOWN": true, "TFLT": true,
	"UFID": true, "TXXX": true,
}

// StrippedOnImportFrameIDs are frame ids dropped from a candidate file's
// tags before the importer re-adds its own canonical values.
var StrippedOnImportFrameIDs = map[string]bool{
	"TFLT": true, "TLEN": true, "TOWN": true,
}

// ID3TextEncoding is the encoding byte the importer always writes:
// UTF-8 (id3v2.EncodingUTF8 == 0x03).
const ID3TextEncoding = 0x03
