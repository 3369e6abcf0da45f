package frame

import (
	"io"
	"iter"
)

// readSize is the chunk size pulled from the source reader. The largest
// possible MP3 frame is 1441 bytes; keeping this comfortably larger
// bounds the number of buffer reslices needed per frame.
const readSize = 4 << 10 // 4 KiB

// Split lazily splits r into a sequence of (header, bytes) pairs. A nil
// header means the accompanying bytes are junk — leading noise or a
// skipped ID3v2 container — and must be excluded from fingerprinting
// and duration accounting but preserved by the consumer. Truncated
// trailing frames are emitted as junk rather than causing an error; the
// caller decides whether that is fatal.
//
// When template is non-nil, only frames whose bitrate, sampling rate,
// padding, protection, and channel mode match its non-nil fields are
// accepted as frame headers; anything else is treated as a false synch
// and folded into junk. Grounded on chirp/common/mp3_frame.py's
// split()/split_blocks(), translated from a generator into a Go
// range-over-func iterator.
func Split(r io.Reader, template *Header) iter.Seq2[*Header, []byte] {
	return func(yield func(*Header, []byte) bool) {
		var buffered []byte
		atEnd := false
		toSkip := 0
		var pending *Header // header found at the front of buffered, not yet emitted

		readMore := func() {
			buf := make([]byte, readSize)
			n, err := r.Read(buf)
			if n > 0 {
				buffered = append(buffered, buf[:n]...)
			}
			if err != nil {
				atEnd = true
			}
		}

		for {
			for toSkip > 0 {
				if len(buffered) == 0 {
					if atEnd {
						break
					}
					readMore()
					if len(buffered) == 0 {
						continue
					}
				}
				var chunk []byte
				if len(buffered) <= toSkip {
					chunk = buffered
					toSkip -= len(buffered)
					buffered = nil
				} else {
					chunk = buffered[:toSkip]
					buffered = buffered[toSkip:]
					toSkip = 0
				}
				if !yield(nil, chunk) {
					return
				}
			}

			for len(buffered) < readSize && !atEnd {
				readMore()
			}

			if len(buffered) == 0 {
				return
			}

			if pending != nil {
				size := pending.FrameSize()
				frame := buffered
				if size < len(frame) {
					frame = frame[:size]
				}
				hdr := pending
				if len(frame) != size {
					hdr = nil // truncated at end of stream: emit as junk
				}
				buffered = buffered[len(frame):]
				pending = nil
				if !yield(hdr, frame) {
					return
				}
				continue
			}

			id3Offset, id3Total, id3Found := findID3(buffered)
			nextHdr, hdrOffset := Find(buffered, template)

			if id3Found && id3Offset < hdrOffset {
				toSkip = id3Offset + id3Total
				continue
			}

			pending = nextHdr

			if hdrOffset > 0 {
				if !yield(nil, buffered[:hdrOffset]) {
					return
				}
				buffered = buffered[hdrOffset:]
			}
		}
	}
}
