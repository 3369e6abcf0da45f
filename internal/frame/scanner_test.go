package frame

import (
	"bytes"
	"testing"
)

// buildFrame returns one complete, self-contained 128kbps/44100Hz/stereo
// MPEG frame (header + zero-filled payload) of its declared frame size.
func buildFrame() []byte {
	hdr := decode(a128Stereo44100)
	size := hdr.FrameSize()
	frame := make([]byte, size)
	copy(frame, a128Stereo44100)
	return frame
}

// buildID3 returns a minimal ID3v2.4 container with the given content
// size (syncsafe-encoded), filled with arbitrary non-synch bytes.
func buildID3(contentSize int) []byte {
	out := make([]byte, 10+contentSize)
	out[0], out[1], out[2] = 'I', 'D', '3'
	out[3], out[4] = 4, 0 // version 2.4.0
	out[5] = 0            // flags
	s := contentSize
	out[6] = byte((s >> 21) & 0x7F)
	out[7] = byte((s >> 14) & 0x7F)
	out[8] = byte((s >> 7) & 0x7F)
	out[9] = byte(s & 0x7F)
	for i := 10; i < len(out); i++ {
		out[i] = 0x55 // arbitrary payload, never a synch byte
	}
	return out
}

// TestSplitScenarioS1 builds "junk" + ID3v2.4(size=77) + frame*3 + "junk" +
// frame*2 and checks that the fingerprint-relevant output is exactly the
// five frame byte spans concatenated, per spec.md §8 scenario S1.
func TestSplitScenarioS1(t *testing.T) {
	frame := buildFrame()
	id3 := buildID3(77)

	var input bytes.Buffer
	input.WriteString("junk!")
	input.Write(id3)
	input.Write(frame)
	input.Write(frame)
	input.Write(frame)
	input.WriteString("junk!")
	input.Write(frame)
	input.Write(frame)

	var frameCount int
	var audioBytes bytes.Buffer
	for hdr, data := range Split(&input, nil) {
		if hdr != nil {
			frameCount++
			audioBytes.Write(data)
		}
	}

	if frameCount != 5 {
		t.Fatalf("frame_count = %d, want 5", frameCount)
	}

	var want bytes.Buffer
	for range 5 {
		want.Write(frame)
	}
	if !bytes.Equal(audioBytes.Bytes(), want.Bytes()) {
		t.Error("concatenated frame bytes did not match expected fingerprint input")
	}
}

func TestSplitSkipsID3Container(t *testing.T) {
	frame := buildFrame()
	id3 := buildID3(20)

	var input bytes.Buffer
	input.Write(id3)
	input.Write(frame)

	var gotJunk, gotFrame int
	for hdr, data := range Split(&input, nil) {
		if hdr == nil {
			gotJunk += len(data)
		} else {
			gotFrame++
		}
	}
	if gotFrame != 1 {
		t.Errorf("frame count = %d, want 1", gotFrame)
	}
	if gotJunk != len(id3) {
		t.Errorf("junk bytes = %d, want %d (whole ID3 container)", gotJunk, len(id3))
	}
}

func TestSplitTruncatedTrailingFrame(t *testing.T) {
	frame := buildFrame()
	truncated := frame[:len(frame)-50]

	var input bytes.Buffer
	input.Write(frame)
	input.Write(truncated)

	var headers []bool
	for hdr, _ := range Split(&input, nil) {
		headers = append(headers, hdr != nil)
	}
	if len(headers) < 2 {
		t.Fatalf("expected at least 2 spans, got %d", len(headers))
	}
	if !headers[0] {
		t.Error("first span should be a valid frame")
	}
	if headers[len(headers)-1] {
		t.Error("final truncated span should be junk, not a frame")
	}
}
