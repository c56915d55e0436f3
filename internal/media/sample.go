// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import "time"

// SampleUnit is one timed, opaque buffer of decoded media. Ownership moves
// from the source to the sink on every handoff; the pipeline never copies,
// drops or reorders units.
type SampleUnit struct {
	Kind     TrackKind
	Seq      uint64        // position in the source iteration order, starting at 0
	PTS      time.Duration // presentation timestamp relative to session start
	Duration time.Duration
	Data     []byte
}

// SampleFormat is the intermediate (decoded) representation a track output
// is asked to produce.
type SampleFormat struct {
	// PixelFormat for video outputs, e.g. "yuv420p".
	PixelFormat string
	Size        Size
	FrameRate   float64
	// PCM layout for audio outputs, e.g. "s16le".
	SampleFormat string
	SampleRate   int
	Channels     int
}

// VideoFormat is the raw picture format requested from a video track's
// output: planar 4:2:0 at the track's natural size and rate.
func VideoFormat(t Track) SampleFormat {
	return SampleFormat{PixelFormat: "yuv420p", Size: t.NaturalSize, FrameRate: t.NominalFrameRate}
}

// DefaultAudioFormat asks for interleaved 16-bit stereo PCM. Pinning the
// channel count avoids failures on sources with more than two channels.
func DefaultAudioFormat(sampleRate int) SampleFormat {
	return SampleFormat{SampleFormat: "s16le", SampleRate: sampleRate, Channels: 2}
}
