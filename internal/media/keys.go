// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

// Setting keys understood by every Sink. Override keys outside this list are
// passed to the engine verbatim.
const (
	KeyCodec               = "codec"
	KeyWidth               = "width"
	KeyHeight              = "height"
	KeyBitrate             = "bitrate"
	KeyMaxKeyFrameInterval = "max_keyframe_interval"
	KeyFrameRate           = "framerate"
	KeyProfileLevel        = "profile_level"

	KeyFormat        = "format"
	KeySampleRate    = "sample_rate"
	KeyChannels      = "channels"
	KeyChannelLayout = "channel_layout"
)
