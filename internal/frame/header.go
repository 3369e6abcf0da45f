// Package frame splits a byte stream into MPEG-1 Layer III audio frames
// and non-audio junk spans (leading noise, embedded ID3v2 containers),
// and decodes/matches frame headers. Grounded on
// chirp/common/mp3_header.py and chirp/common/mp3_frame.py.
package frame

import "fmt"

// ChannelMode enumerates the MPEG channel-mode field.
type ChannelMode int

const (
	ChannelStereo ChannelMode = iota
	ChannelJointStereo
	ChannelDualMono
	ChannelMono
)

func (c ChannelMode) String() string {
	switch c {
	case ChannelStereo:
		return "stereo"
	case ChannelJointStereo:
		return "joint-stereo"
	case ChannelDualMono:
		return "dual-mono"
	case ChannelMono:
		return "mono"
	default:
		return "unknown"
	}
}

// bitRateKbpsTable maps a 4-bit bitrate index to kbps for MPEG-1 Layer
// III. Index 0 (free) and 15 (reserved) are invalid and are represented
// as 0 (never looked up — decode rejects both indexes first).
var bitRateKbpsTable = [16]int{
	0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0,
}

// samplingRateHzTable maps a 2-bit sampling-rate index for MPEG-1.
// Index 3 is reserved.
var samplingRateHzTable = [4]int{44100, 48000, 32000, 0}

// samplesPerFrame is the fixed number of audio samples in every MPEG-1
// Layer III frame.
const samplesPerFrame = 1152

// Header describes one decoded MPEG-1 Layer III frame header. Fields
// are pointers so that a "template" header (see Match) can blank out
// fields that are legitimately allowed to vary between frames of the
// same file.
type Header struct {
	SamplingRateHz *int
	BitRateKbps    *float64
	Channels       *ChannelMode
	Padding        *bool
	Protected      *bool
}

// FrameSize returns the frame's size in bytes: (144000*kbps/hz) +
// padding. Requires SamplingRateHz, BitRateKbps and Padding to be set.
func (h *Header) FrameSize() int {
	size := int(144000 * *h.BitRateKbps / float64(*h.SamplingRateHz))
	if *h.Padding {
		size++
	}
	return size
}

// DurationMs returns the frame's playback duration in milliseconds.
// Requires SamplingRateHz to be set.
func (h *Header) DurationMs() float64 {
	return float64(samplesPerFrame) * 1000 / float64(*h.SamplingRateHz)
}

func intPtr(v int) *int                   { return &v }
func floatPtr(v float64) *float64         { return &v }
func boolPtr(v bool) *bool                { return &v }
func channelPtr(v ChannelMode) *ChannelMode { return &v }

// decode parses a 4-byte MPEG header candidate starting at data[0]. It
// returns nil if the bytes do not form a valid MPEG-1 Layer III header.
func decode(data []byte) *Header {
	if len(data) < 4 {
		return nil
	}
	// Sync (11 bits) + version (2 bits, must be MPEG-1 = 11) + layer
	// (2 bits, must be Layer III = 01), with the trailing protection
	// bit masked off: top 16 bits & 0xFFFE must equal 0xFFFA.
	top16 := uint16(data[0])<<8 | uint16(data[1])
	if top16&0xFFFE != 0xFFFA {
		return nil
	}
	protected := data[1]&0x01 == 0

	bitRateIdx := (data[2] >> 4) & 0x0F
	if bitRateIdx == 0 || bitRateIdx == 15 {
		return nil
	}
	samplingIdx := (data[2] >> 2) & 0x03
	if samplingIdx == 3 {
		return nil
	}
	padding := (data[2]>>1)&0x01 != 0

	channelBits := (data[3] >> 6) & 0x03

	hz := samplingRateHzTable[samplingIdx]
	kbps := bitRateKbpsTable[bitRateIdx]

	return &Header{
		SamplingRateHz: intPtr(hz),
		BitRateKbps:    floatPtr(float64(kbps)),
		Channels:       channelPtr(ChannelMode(channelBits)),
		Padding:        boolPtr(padding),
		Protected:      boolPtr(protected),
	}
}

// Match reports whether h agrees with template on every field template
// sets (non-nil). A nil field on template is a wildcard. Used both to
// validate successive frames within a file and to lock a stream
// splitter onto a fixed encoding.
func (h *Header) Match(template *Header) bool {
	if template == nil {
		return true
	}
	if template.SamplingRateHz != nil && (h.SamplingRateHz == nil || *h.SamplingRateHz != *template.SamplingRateHz) {
		return false
	}
	if template.BitRateKbps != nil && (h.BitRateKbps == nil || *h.BitRateKbps != *template.BitRateKbps) {
		return false
	}
	if template.Channels != nil && (h.Channels == nil || *h.Channels != *template.Channels) {
		return false
	}
	if template.Padding != nil && (h.Padding == nil || *h.Padding != *template.Padding) {
		return false
	}
	if template.Protected != nil && (h.Protected == nil || *h.Protected != *template.Protected) {
		return false
	}
	return true
}

// Clone returns a value copy of h (pointer fields are copied to fresh
// storage), so that blanking fields on a template doesn't alias the
// original.
func (h *Header) Clone() *Header {
	clone := &Header{}
	if h.SamplingRateHz != nil {
		clone.SamplingRateHz = intPtr(*h.SamplingRateHz)
	}
	if h.BitRateKbps != nil {
		clone.BitRateKbps = floatPtr(*h.BitRateKbps)
	}
	if h.Channels != nil {
		clone.Channels = channelPtr(*h.Channels)
	}
	if h.Padding != nil {
		clone.Padding = boolPtr(*h.Padding)
	}
	if h.Protected != nil {
		clone.Protected = boolPtr(*h.Protected)
	}
	return clone
}

func (h *Header) String() string {
	hz, kbps := "?", "?"
	if h.SamplingRateHz != nil {
		hz = fmt.Sprintf("%d", *h.SamplingRateHz)
	}
	if h.BitRateKbps != nil {
		kbps = fmt.Sprintf("%.1f", *h.BitRateKbps)
	}
	return fmt.Sprintf("MP3Header(rate=%shz, bitrate=%skbps)", hz, kbps)
}

// Find searches data for the first valid MPEG header matching template
// (nil template matches anything), returning the decoded header and the
// byte offset it was found at. If none is found, returns (nil,
// len(data)) so callers can treat the whole buffer as consumed/junk,
// mirroring mp3_header.py's find().
func Find(data []byte, template *Header) (*Header, int) {
	for offset := 0; offset+4 <= len(data); offset++ {
		hdr := decode(data[offset:])
		if hdr == nil {
			continue
		}
		if !hdr.Match(template) {
			continue
		}
		return hdr, offset
	}
	return nil, len(data)
}
