// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"fmt"
	"strings"
)

// TrackKind distinguishes video from audio tracks.
type TrackKind string

const (
	KindVideo TrackKind = "video"
	KindAudio TrackKind = "audio"
)

// Size is a pixel size. Components may be non-positive when used as a
// resize directive.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsZero reports whether both components are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// FormatDescription names one coded format carried by a track, e.g. vide/h264.
type FormatDescription struct {
	MediaType string
	SubType   string
}

func (f FormatDescription) String() string {
	return f.MediaType + "/" + f.SubType
}

// Track is the immutable description of one elementary stream of a source.
type Track struct {
	// Index is the stream index inside the source container.
	Index int
	Kind  TrackKind

	// NaturalSize is the coded pixel size (video only).
	NaturalSize Size
	// EstimatedBitrate in bits per second; zero when unknown.
	EstimatedBitrate int64
	// NominalFrameRate in frames per second (video only).
	NominalFrameRate float64
	// Rotation is the display rotation in degrees (video only). It is
	// carried to the sink so playback orientation is preserved.
	Rotation int

	SampleRate    int // audio only
	Channels      int // audio only
	ChannelLayout string

	Formats []FormatDescription
}

// MediaFormat joins the track format descriptions as "type/subtype,...".
func (t Track) MediaFormat() string {
	parts := make([]string, 0, len(t.Formats))
	for _, f := range t.Formats {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ",")
}

// FirstTrack returns the first track of the given kind, or nil.
func FirstTrack(tracks []Track, kind TrackKind) *Track {
	for i := range tracks {
		if tracks[i].Kind == kind {
			t := tracks[i]
			return &t
		}
	}
	return nil
}
