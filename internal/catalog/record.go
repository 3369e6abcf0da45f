package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/frame"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// row is the flat tuple shape of one audio_files record, mirroring
// schema.py's audio_file_to_tuple/tuple_to_audio_file.
type row struct {
	Volume          int
	ImportTimestamp int64
	Fingerprint     string
	AlbumID         int64
	SamplingRateHz  int
	BitRateKbps     int
	Channels        int
	FrameCount      int
	FrameSize       int
	DurationMs      int
}

func toRow(af *album.AudioFile) row {
	var samplingRateHz, bitRateKbps, channels int
	if af.Header != nil {
		if af.Header.SamplingRateHz != nil {
			samplingRateHz = *af.Header.SamplingRateHz
		}
		if af.Header.BitRateKbps != nil {
			bitRateKbps = int(*af.Header.BitRateKbps)
		}
		if af.Header.Channels != nil {
			channels = int(*af.Header.Channels)
		}
	}
	return row{
		Volume:          af.Volume,
		ImportTimestamp: af.ImportTimestamp,
		Fingerprint:     af.Fingerprint,
		AlbumID:         int64(af.AlbumID),
		SamplingRateHz:  samplingRateHz,
		BitRateKbps:     bitRateKbps,
		Channels:        channels,
		FrameCount:      af.FrameCount,
		FrameSize:       af.FrameSize,
		DurationMs:      af.DurationMs,
	}
}

func fromRow(r row) *album.AudioFile {
	bitRate := float64(r.BitRateKbps)
	samplingRate := r.SamplingRateHz
	channels := frame.ChannelMode(r.Channels)
	return &album.AudioFile{
		Volume:          r.Volume,
		ImportTimestamp: r.ImportTimestamp,
		HasVolume:       true,
		Fingerprint:     r.Fingerprint,
		AlbumID:         uint64(r.AlbumID),
		HasAlbumID:      true,
		FrameCount:      r.FrameCount,
		FrameSize:       r.FrameSize,
		DurationMs:      r.DurationMs,
		Header: &frame.Header{
			SamplingRateHz: &samplingRate,
			BitRateKbps:    &bitRate,
			Channels:       &channels,
		},
		Tags: tags.NewSet(),
	}
}

// serializedFrame is the structured, language-neutral stand-in for
// the source's mutagen repr column (SPEC_FULL.md §9 design note): it
// carries enough of a tags.Frame to reconstruct it exactly, without
// ever evaluating a serialized object literal.
type serializedFrame struct {
	Kind        tags.FrameKind `json:"kind"`
	Description string         `json:"description,omitempty"`
	Owner       string         `json:"owner,omitempty"`
}

func serializeFrame(f tags.Frame) (value, repr string, err error) {
	b, err := json.Marshal(serializedFrame{Kind: f.Kind, Description: f.Description, Owner: f.Owner})
	if err != nil {
		return "", "", fmt.Errorf("catalog: serialize frame %s: %w", f.ID, err)
	}
	return f.Value, string(b), nil
}

func deserializeFrame(frameID, value, repr string) (tags.Frame, error) {
	var sf serializedFrame
	if err := json.Unmarshal([]byte(repr), &sf); err != nil {
		return tags.Frame{}, fmt.Errorf("catalog: deserialize frame %s: %w", frameID, err)
	}
	return tags.Frame{
		ID:          frameID,
		Kind:        sf.Kind,
		Description: sf.Description,
		Owner:       sf.Owner,
		Value:       value,
	}, nil
}
