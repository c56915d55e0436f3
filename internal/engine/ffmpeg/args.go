// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/media"
)

// firstPipeFD is the descriptor of the first ExtraFiles entry in the child.
const firstPipeFD = 3

// DefaultFrameRate is used for decoding when the source reports no rate.
const DefaultFrameRate = 30.0

// audioChunkFrames is the number of PCM frames per audio sample unit.
const audioChunkFrames = 1024

var globalArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error"}

// videoEncoders maps codec ids to ffmpeg encoders. Unknown ids are passed
// through as encoder names.
var videoEncoders = map[string]string{
	"h264": "libx264",
	"avc":  "libx264",
	"hevc": "libx265",
	"h265": "libx265",
	"av1":  "libsvtav1",
	"vp9":  "libvpx-vp9",
}

var audioEncoders = map[string]string{
	"aac":  "aac",
	"opus": "libopus",
	"mp3":  "libmp3lame",
}

// settingKeys are consumed by the argument builder; other keys are passed
// to the encoder as per-stream options.
var settingKeys = map[string]struct{}{
	media.KeyCodec: {}, media.KeyWidth: {}, media.KeyHeight: {}, media.KeyBitrate: {},
	media.KeyMaxKeyFrameInterval: {}, media.KeyFrameRate: {}, media.KeyProfileLevel: {},
	media.KeyFormat: {}, media.KeySampleRate: {}, media.KeyChannels: {}, media.KeyChannelLayout: {},
}

// BuildDecodeArgs returns the arguments of a decoder process that writes one
// track of input to stdout in the requested raw format.
func BuildDecodeArgs(input string, track media.Track, format media.SampleFormat) []string {
	args := append([]string(nil), globalArgs...)
	if track.Kind == media.KindVideo {
		// Frames stay in coded orientation; the sink carries the rotation.
		args = append(args, "-noautorotate")
	}
	args = append(args, "-i", input, "-map", fmt.Sprintf("0:%d", track.Index))

	switch track.Kind {
	case media.KindVideo:
		args = append(args,
			"-an", "-sn", "-dn",
			"-fps_mode", "cfr",
			"-r", formatRate(frameRate(format.FrameRate)),
			"-f", "rawvideo",
			"-pix_fmt", format.PixelFormat,
		)
	case media.KindAudio:
		args = append(args,
			"-vn", "-sn", "-dn",
			"-f", format.SampleFormat,
			"-c:a", "pcm_"+format.SampleFormat,
			"-ar", strconv.Itoa(format.SampleRate),
			"-ac", strconv.Itoa(format.Channels),
		)
	}
	return append(args, "pipe:1")
}

// BuildEncodeArgs returns the arguments of the encoder process. Input i is
// read from descriptor 3+i in the order of specs.
func BuildEncodeArgs(specs []media.InputSpec, output string, container media.Container) ([]string, error) {
	args := append([]string(nil), globalArgs...)

	for i, spec := range specs {
		fd := firstPipeFD + i
		switch spec.Kind {
		case media.KindVideo:
			f := spec.Format
			if f.Size.IsZero() {
				return nil, fmt.Errorf("video input %d: missing frame size", i)
			}
			if spec.Rotation != 0 {
				// display_rotation is counter-clockwise.
				args = append(args, "-display_rotation", strconv.Itoa(normalizeDegrees(-spec.Rotation)))
			}
			args = append(args,
				"-f", "rawvideo",
				"-pix_fmt", f.PixelFormat,
				"-video_size", f.Size.String(),
				"-framerate", formatRate(frameRate(f.FrameRate)),
				"-i", fmt.Sprintf("pipe:%d", fd),
			)
		case media.KindAudio:
			f := spec.Format
			args = append(args,
				"-f", f.SampleFormat,
				"-ar", strconv.Itoa(f.SampleRate),
				"-ac", strconv.Itoa(f.Channels),
				"-i", fmt.Sprintf("pipe:%d", fd),
			)
		default:
			return nil, fmt.Errorf("input %d: unsupported track kind %q", i, spec.Kind)
		}
	}

	for i, spec := range specs {
		args = append(args, "-map", fmt.Sprintf("%d:0", i))
		var err error
		switch spec.Kind {
		case media.KindVideo:
			args, err = appendVideoOutput(args, spec.Settings)
		case media.KindAudio:
			args, err = appendAudioOutput(args, spec.Settings)
		}
		if err != nil {
			return nil, err
		}
	}

	muxer := container.Muxer()
	if muxer == "" {
		return nil, fmt.Errorf("unsupported container %q", container)
	}
	switch container.Extension() {
	case "mp4", "mov", "m4v":
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args,
		"-f", muxer,
		"-progress", "pipe:1",
		"-nostats",
		"-n",
		output,
	)
	return args, nil
}

func appendVideoOutput(args []string, s media.Settings) ([]string, error) {
	codec, _ := s.Str(media.KeyCodec)
	args = append(args, "-c:v", encoderName(videoEncoders, codec))

	w, okW := s.Int(media.KeyWidth)
	h, okH := s.Int(media.KeyHeight)
	if okW && okH && w > 0 && h > 0 {
		// 4:2:0 encoders need even dimensions.
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", even(w), even(h)))
	}
	args = append(args, "-pix_fmt", "yuv420p")
	if br, ok := s.Int(media.KeyBitrate); ok && br > 0 {
		args = append(args, "-b:v", strconv.FormatInt(br, 10))
	}
	if g, ok := s.Int(media.KeyMaxKeyFrameInterval); ok && g > 0 {
		args = append(args, "-g", strconv.FormatInt(g, 10))
	}
	if v, ok := s.Get(media.KeyFrameRate); ok {
		if r, ok := toFloat(v); ok && r > 0 {
			args = append(args, "-r", formatRate(r))
		}
	}
	if pl, ok := s.Str(media.KeyProfileLevel); ok && pl != "" {
		profile, level, err := config.SplitProfileLevel(pl)
		if err != nil {
			return nil, fmt.Errorf("video settings: %w", err)
		}
		args = append(args, "-profile:v", profile)
		if level != "" {
			args = append(args, "-level:v", level)
		}
	}
	return appendPassthrough(args, s, "v"), nil
}

func appendAudioOutput(args []string, s media.Settings) ([]string, error) {
	format, _ := s.Str(media.KeyFormat)
	args = append(args, "-c:a", encoderName(audioEncoders, format))
	if sr, ok := s.Int(media.KeySampleRate); ok && sr > 0 {
		args = append(args, "-ar", strconv.FormatInt(sr, 10))
	}
	if br, ok := s.Int(media.KeyBitrate); ok && br > 0 {
		args = append(args, "-b:a", strconv.FormatInt(br, 10))
	}
	if ch, ok := s.Int(media.KeyChannels); ok && ch > 0 {
		args = append(args, "-ac", strconv.FormatInt(ch, 10))
	}
	if layout, ok := s.Str(media.KeyChannelLayout); ok && layout != "" {
		args = append(args, "-ch_layout:a", layout)
	}
	return appendPassthrough(args, s, "a"), nil
}

// appendPassthrough turns unknown setting keys into "-key:<stream> value".
func appendPassthrough(args []string, s media.Settings, stream string) []string {
	for _, e := range s.Entries() {
		if _, known := settingKeys[e.Key]; known {
			continue
		}
		key := strings.TrimPrefix(e.Key, "-")
		args = append(args, "-"+key+":"+stream, fmt.Sprint(e.Value))
	}
	return args
}

func encoderName(table map[string]string, codec string) string {
	codec = strings.ToLower(strings.TrimSpace(codec))
	if enc, ok := table[codec]; ok {
		return enc
	}
	return codec
}

func even(v int64) int64 {
	if v > 1 && v%2 != 0 {
		return v - 1
	}
	return v
}

func frameRate(r float64) float64 {
	if r <= 0 {
		return DefaultFrameRate
	}
	return r
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// videoFrameSize is the byte size of one planar 4:2:0 frame.
func videoFrameSize(s media.Size) int {
	cw := (s.Width + 1) / 2
	ch := (s.Height + 1) / 2
	return s.Width*s.Height + 2*cw*ch
}

// pcmBytesPerFrame is the byte size of one interleaved PCM frame.
func pcmBytesPerFrame(format media.SampleFormat) int {
	width := 2
	switch format.SampleFormat {
	case "s32le", "f32le":
		width = 4
	case "u8", "s8":
		width = 1
	}
	return width * format.Channels
}
