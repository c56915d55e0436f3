// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package params derives concrete encode parameters from source track
// characteristics and a compression policy.
package params

import (
	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
)

// MinimumVideoBitrate is the lowest bitrate the resolver will pick when the
// target is below the source bitrate.
const MinimumVideoBitrate int64 = 1_000_000

// EncodeParameters are the resolved settings for one run. They are derived
// once and never mutated afterwards.
type EncodeParameters struct {
	Size    media.Size
	Bitrate int64

	Video media.Settings
	// Audio is nil when the source has no audio track.
	Audio *media.Settings
}

// HasAudio reports whether audio parameters were resolved.
func (p EncodeParameters) HasAudio() bool {
	return p.Audio != nil
}

// ResolveSize applies the resize policy to the original size. It never
// upscales and truncates derived dimensions toward zero.
func ResolveSize(policy *config.Resolution, original media.Size) media.Size {
	if policy == nil {
		return original
	}
	target := policy.PixelSize()

	switch {
	case target.Width >= original.Width && target.Height >= original.Height:
		return original
	case target.Width <= 0 && target.Height <= 0:
		return original
	case target.Width > 0 && target.Height > 0:
		return target
	case target.Width < 0 && target.Height > 0:
		if original.Height == 0 {
			return original
		}
		return media.Size{
			Width:  int(int64(target.Height) * int64(original.Width) / int64(original.Height)),
			Height: target.Height,
		}
	case target.Height < 0 && target.Width > 0:
		if original.Width == 0 {
			return original
		}
		return media.Size{
			Width:  target.Width,
			Height: int(int64(target.Width) * int64(original.Height) / int64(original.Width)),
		}
	default:
		return original
	}
}

// ResolveBitrate caps the target at the source bitrate and floors it at
// MinimumVideoBitrate. An unknown (non-positive) source bitrate applies the
// floor only.
func ResolveBitrate(target, original int64) int64 {
	if original > 0 && target >= original {
		return original
	}
	return max(target, MinimumVideoBitrate)
}

// Resolve builds the ordered video and audio parameter sets for a run.
// Caller overrides are merged last, last write wins per key.
func Resolve(cfg config.CompressionConfig, video media.Track, audio *media.Track) EncodeParameters {
	size := ResolveSize(cfg.Resolution, video.NaturalSize)
	bitrate := ResolveBitrate(cfg.VideoBitrate, video.EstimatedBitrate)

	v := media.NewSettings(
		media.Setting{Key: media.KeyCodec, Value: cfg.VideoCodec},
		media.Setting{Key: media.KeyWidth, Value: size.Width},
		media.Setting{Key: media.KeyHeight, Value: size.Height},
		media.Setting{Key: media.KeyBitrate, Value: bitrate},
		media.Setting{Key: media.KeyMaxKeyFrameInterval, Value: cfg.VideoMaxKeyFrameInterval},
		media.Setting{Key: media.KeyFrameRate, Value: cfg.VideoFramerate},
		media.Setting{Key: media.KeyProfileLevel, Value: cfg.VideoProfileLevel},
	)
	if cfg.VideoSettings.Len() > 0 {
		v = v.Merge(cfg.VideoSettings)
	}

	p := EncodeParameters{Size: size, Bitrate: bitrate, Video: v}

	logger := log.WithComponent("params")
	logger.Debug().
		Str(log.FieldResolution, video.NaturalSize.String()).
		Int64(log.FieldBitrate, video.EstimatedBitrate).
		Float64(log.FieldFPS, video.NominalFrameRate).
		Str(log.FieldMediaFormat, video.MediaFormat()).
		Msg("original video")
	logger.Debug().
		Str(log.FieldResolution, size.String()).
		Int64(log.FieldBitrate, bitrate).
		Float64(log.FieldFPS, cfg.VideoFramerate).
		Str(log.FieldSettings, v.GoString()).
		Msg("target video")

	if audio == nil {
		return p
	}

	a := media.NewSettings(
		media.Setting{Key: media.KeyFormat, Value: cfg.AudioFormat},
		media.Setting{Key: media.KeySampleRate, Value: cfg.AudioSampleRate},
		media.Setting{Key: media.KeyBitrate, Value: cfg.AudioBitrate},
		media.Setting{Key: media.KeyChannels, Value: cfg.AudioChannels},
		media.Setting{Key: media.KeyChannelLayout, Value: cfg.AudioChannelLayout},
	)
	if cfg.AudioSettings.Len() > 0 {
		a = a.Merge(cfg.AudioSettings)
	}
	p.Audio = &a

	logger.Debug().
		Int(log.FieldSampleRate, audio.SampleRate).
		Int(log.FieldChannels, audio.Channels).
		Int64(log.FieldBitrate, audio.EstimatedBitrate).
		Str(log.FieldMediaFormat, audio.MediaFormat()).
		Msg("original audio")
	logger.Debug().
		Str(log.FieldSettings, a.GoString()).
		Msg("target audio")

	return p
}
