package frame

import "testing"

// a128Stereo44100 is a valid MPEG-1 Layer III header: 128kbps, 44100Hz,
// stereo, no padding, protected (CRC present).
var a128Stereo44100 = []byte{0xff, 0xfa, 0x90, 0x00}

func TestDecodeValidHeader(t *testing.T) {
	hdr := decode(a128Stereo44100)
	if hdr == nil {
		t.Fatal("decode returned nil for valid header")
	}
	if *hdr.SamplingRateHz != 44100 {
		t.Errorf("sampling rate = %d, want 44100", *hdr.SamplingRateHz)
	}
	if *hdr.BitRateKbps != 128 {
		t.Errorf("bit rate = %v, want 128", *hdr.BitRateKbps)
	}
	if *hdr.Channels != ChannelStereo {
		t.Errorf("channels = %v, want stereo", *hdr.Channels)
	}
	if *hdr.Padding {
		t.Error("padding = true, want false")
	}
}

func TestDecodeRejectsBadSync(t *testing.T) {
	bad := []byte{0xff, 0xe0, 0x90, 0x00}
	if decode(bad) != nil {
		t.Error("decode accepted non-synch bytes")
	}
}

func TestDecodeRejectsReservedBitrate(t *testing.T) {
	bad := []byte{0xff, 0xfa, 0xf0, 0x00} // bitrate index 15 = reserved
	if decode(bad) != nil {
		t.Error("decode accepted reserved bitrate index")
	}
}

func TestFrameSizeAndDuration(t *testing.T) {
	hdr := decode(a128Stereo44100)
	if got, want := hdr.FrameSize(), 144000*128/44100; got != want {
		t.Errorf("FrameSize = %d, want %d", got, want)
	}
	if got, want := hdr.DurationMs(), 1152*1000.0/44100; got != want {
		t.Errorf("DurationMs = %v, want %v", got, want)
	}
}

func TestMatchTemplate(t *testing.T) {
	hdr := decode(a128Stereo44100)
	template := hdr.Clone()
	template.BitRateKbps = nil
	template.Padding = nil
	if !hdr.Match(template) {
		t.Error("header should match its own blanked template")
	}

	other := decode([]byte{0xff, 0xfa, 0xe4, 0x00}) // 48000Hz
	if other.Match(template) {
		t.Error("header with different sampling rate matched template")
	}
}

func TestFind(t *testing.T) {
	data := append([]byte("junk!"), a128Stereo44100...)
	hdr, offset := Find(data, nil)
	if hdr == nil {
		t.Fatal("Find did not locate header")
	}
	if offset != 5 {
		t.Errorf("offset = %d, want 5", offset)
	}
}
