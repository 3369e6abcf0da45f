package fingerprint

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security primitive
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/chirpradio/chirparchive/internal/frame"
)

// minimumFrames rejects any file with fewer MPEG frames than this
// (~2.6s of audio at typical bitrates).
const minimumFrames = 100

const (
	minReasonableFileSize = 100 << 10 // 100 KiB
	maxReasonableFileSize = 20 << 20  // 20 MiB
)

// InvalidFileError reports that a candidate file is corrupted or too
// short to be a plausible archive entry.
type InvalidFileError struct {
	Reason string
}

func (e *InvalidFileError) Error() string { return "invalid file: " + e.Reason }

// Result holds the statistics gathered by Analyze.
type Result struct {
	FrameCount  int
	FrameSize   int
	DurationMs  int
	Header      *frame.Header
	Fingerprint string // set only if Analyze was asked to compute it
	Payload     []byte // set only if Analyze was asked to keep it
}

// Analyze scans r frame-by-frame, accumulating frame count, total frame
// size, duration, and (optionally) the fingerprint and raw MPEG
// payload. The first valid header becomes a template (with bitrate,
// padding, frame size and protection blanked, since those may
// legitimately vary between frames); every later header must match the
// template on sampling rate and channel mode or Analyze fails. If any
// frame's bitrate differs from the first, the file is treated as VBR
// and BitRateKbps is set to the frame-count-weighted mean. Grounded on
// chirp/library/analyzer.py's analyze().
func Analyze(r io.Reader, computeFingerprint, getPayload bool) (*Result, error) {
	var sha1Calc = sha1.New() //nolint:gosec
	var payload []byte

	res := &Result{}
	var templateHdr *frame.Header
	var firstBitRate float64
	var bitRateSum float64
	var durationMs float64
	isVBR := false

	for hdr, data := range frame.Split(r, nil) {
		if hdr == nil {
			continue
		}

		res.FrameCount++
		res.FrameSize += len(data)
		durationMs += hdr.DurationMs()
		if computeFingerprint {
			sha1Calc.Write(data)
		}
		if getPayload {
			payload = append(payload, data...)
		}

		if templateHdr != nil {
			if !hdr.Match(templateHdr) {
				return nil, &InvalidFileError{
					Reason: fmt.Sprintf("bad header: found %s, expected %s", hdr, templateHdr),
				}
			}
			if *hdr.BitRateKbps != firstBitRate {
				isVBR = true
			}
		}
		bitRateSum += *hdr.BitRateKbps

		if templateHdr == nil {
			templateHdr = hdr.Clone()
			firstBitRate = *templateHdr.BitRateKbps
			templateHdr.BitRateKbps = nil
			templateHdr.Padding = nil
			templateHdr.Protected = nil
		}
	}

	if res.FrameCount < minimumFrames {
		return nil, &InvalidFileError{
			Reason: fmt.Sprintf("found only %d MPEG frames", res.FrameCount),
		}
	}
	res.DurationMs = int(durationMs)

	if isVBR {
		avg := bitRateSum / float64(res.FrameCount)
		templateHdr.BitRateKbps = &avg
	} else {
		templateHdr.BitRateKbps = &firstBitRate
	}
	res.Header = templateHdr

	if computeFingerprint {
		res.Fingerprint = hex.EncodeToString(sha1Calc.Sum(nil))
	}
	if getPayload {
		res.Payload = payload
	}
	return res, nil
}

// SampleAndAnalyze picks the median-sized file from paths, rejects it
// if its size falls outside [100 KiB, 20 MiB], and returns only its
// template MPEG header (fingerprint is not computed). Used by the
// dropbox scanner to characterize an album without fully analyzing
// every track. Grounded on chirp/library/analyzer.py's
// sample_and_analyze().
func SampleAndAnalyze(paths []string) (*frame.Header, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	type sized struct {
		size int64
		path string
	}
	sizes := make([]sized, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, sized{info.Size(), p})
	}
	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].size != sizes[j].size {
			return sizes[i].size < sizes[j].size
		}
		return sizes[i].path < sizes[j].path
	})
	median := sizes[len(sizes)/2]
	if median.size < minReasonableFileSize || median.size > maxReasonableFileSize {
		return nil, &InvalidFileError{
			Reason: fmt.Sprintf("sample file has bad size: %s %d", median.path, median.size),
		}
	}
	f, err := os.Open(median.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := Analyze(f, false, false)
	if err != nil {
		return nil, err
	}
	return res.Header, nil
}
