// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vcompress/internal/media"
)

// argValue returns the value following the first occurrence of flag.
func argValue(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func TestBuildDecodeArgs_Video(t *testing.T) {
	track := media.Track{Index: 1, Kind: media.KindVideo, NaturalSize: media.Size{Width: 1920, Height: 1080}, NominalFrameRate: 25}
	args := BuildDecodeArgs("/in/movie.mkv", track, media.VideoFormat(track))

	assert.Contains(t, args, "-noautorotate")
	v, _ := argValue(args, "-map")
	assert.Equal(t, "0:1", v)
	v, _ = argValue(args, "-r")
	assert.Equal(t, "25", v)
	v, _ = argValue(args, "-pix_fmt")
	assert.Equal(t, "yuv420p", v)
	assert.Equal(t, "pipe:1", args[len(args)-1])
}

func TestBuildDecodeArgs_AudioPinnedToStereo(t *testing.T) {
	track := media.Track{Index: 2, Kind: media.KindAudio, SampleRate: 48000, Channels: 6}
	args := BuildDecodeArgs("in.mkv", track, media.DefaultAudioFormat(44100))

	assert.NotContains(t, args, "-noautorotate")
	v, _ := argValue(args, "-ac")
	assert.Equal(t, "2", v)
	v, _ = argValue(args, "-ar")
	assert.Equal(t, "44100", v)
	v, _ = argValue(args, "-c:a")
	assert.Equal(t, "pcm_s16le", v)
}

func TestBuildDecodeArgs_DefaultFrameRate(t *testing.T) {
	track := media.Track{Kind: media.KindVideo, NaturalSize: media.Size{Width: 640, Height: 360}}
	args := BuildDecodeArgs("in.mp4", track, media.VideoFormat(track))
	v, _ := argValue(args, "-r")
	assert.Equal(t, "30", v)
}

func videoSpec() media.InputSpec {
	return media.InputSpec{
		Kind: media.KindVideo,
		Settings: media.NewSettings(
			media.Setting{Key: media.KeyCodec, Value: "h264"},
			media.Setting{Key: media.KeyWidth, Value: int64(853)},
			media.Setting{Key: media.KeyHeight, Value: int64(480)},
			media.Setting{Key: media.KeyBitrate, Value: int64(2_000_000)},
			media.Setting{Key: media.KeyMaxKeyFrameInterval, Value: 10},
			media.Setting{Key: media.KeyFrameRate, Value: 24},
			media.Setting{Key: media.KeyProfileLevel, Value: "high@4.1"},
			media.Setting{Key: "preset", Value: "slow"},
		),
		Format:   media.SampleFormat{PixelFormat: "yuv420p", Size: media.Size{Width: 1920, Height: 1080}, FrameRate: 30},
		Rotation: 90,
	}
}

func audioSpec() media.InputSpec {
	return media.InputSpec{
		Kind: media.KindAudio,
		Settings: media.NewSettings(
			media.Setting{Key: media.KeyFormat, Value: "aac"},
			media.Setting{Key: media.KeySampleRate, Value: 44100},
			media.Setting{Key: media.KeyBitrate, Value: 128000},
			media.Setting{Key: media.KeyChannels, Value: 2},
			media.Setting{Key: media.KeyChannelLayout, Value: "stereo"},
		),
		Format: media.DefaultAudioFormat(44100),
	}
}

func TestBuildEncodeArgs(t *testing.T) {
	args, err := BuildEncodeArgs([]media.InputSpec{videoSpec(), audioSpec()}, "/out/x.mp4", media.ContainerMP4)
	require.NoError(t, err)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-display_rotation 270 -f rawvideo -pix_fmt yuv420p -video_size 1920x1080 -framerate 30 -i pipe:3")
	assert.Contains(t, joined, "-f s16le -ar 44100 -ac 2 -i pipe:4")
	assert.Contains(t, joined, "-map 0:0 -c:v libx264 -vf scale=852:480")
	assert.Contains(t, joined, "-b:v 2000000 -g 10 -r 24 -profile:v high -level:v 4.1 -preset:v slow")
	assert.Contains(t, joined, "-map 1:0 -c:a aac -ar 44100 -b:a 128000 -ac 2 -ch_layout:a stereo")
	assert.Contains(t, joined, "-movflags +faststart -f mp4")
	assert.Equal(t, "/out/x.mp4", args[len(args)-1])
	assert.Contains(t, args, "-n", "existing outputs must never be overwritten")
}

func TestBuildEncodeArgs_NoRotation(t *testing.T) {
	spec := videoSpec()
	spec.Rotation = 0
	args, err := BuildEncodeArgs([]media.InputSpec{spec}, "out.mkv", media.ContainerMKV)
	require.NoError(t, err)
	assert.NotContains(t, args, "-display_rotation")
	assert.NotContains(t, args, "-movflags")
	v, _ := argValue(args, "-f")
	assert.Equal(t, "rawvideo", v)
	assert.Contains(t, strings.Join(args, " "), "-f matroska")
}

func TestBuildEncodeArgs_Errors(t *testing.T) {
	_, err := BuildEncodeArgs([]media.InputSpec{videoSpec()}, "out.xyz", media.ParseContainer("xyz"))
	assert.ErrorContains(t, err, "unsupported container")

	spec := videoSpec()
	spec.Format.Size = media.Size{}
	_, err = BuildEncodeArgs([]media.InputSpec{spec}, "out.mp4", media.ContainerMP4)
	assert.ErrorContains(t, err, "missing frame size")

	spec = videoSpec()
	spec.Settings.Set(media.KeyProfileLevel, "@4.1")
	_, err = BuildEncodeArgs([]media.InputSpec{spec}, "out.mp4", media.ContainerMP4)
	assert.Error(t, err)
}

func TestFrameSizes(t *testing.T) {
	assert.Equal(t, 1920*1080*3/2, videoFrameSize(media.Size{Width: 1920, Height: 1080}))
	// Odd sizes round the chroma planes up.
	assert.Equal(t, 3*3+2*2*2, videoFrameSize(media.Size{Width: 3, Height: 3}))
	assert.Equal(t, 4, pcmBytesPerFrame(media.DefaultAudioFormat(44100)))
}
