// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/ManuGH/vcompress/internal/metrics"
)

type probeData struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

type probeStream struct {
	Index         int               `json:"index"`
	CodecType     string            `json:"codec_type"`
	CodecName     string            `json:"codec_name"`
	CodecTag      string            `json:"codec_tag_string"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	AvgFrameRate  string            `json:"avg_frame_rate"`
	RFrameRate    string            `json:"r_frame_rate"`
	BitRate       string            `json:"bit_rate"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
	SideDataList  []struct {
		SideDataType string  `json:"side_data_type"`
		Rotation     float64 `json:"rotation"`
	} `json:"side_data_list"`
	Disposition map[string]int `json:"disposition"`
}

// Probe runs ffprobe on path and returns its video and audio tracks.
func Probe(ctx context.Context, ffprobeBin, path string) ([]media.Track, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	// #nosec G204 -- the binary is operator configured; path is passed as a single argument
	cmd := exec.CommandContext(ctx, ffprobeBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	metrics.RecordProcExit("probe", err)
	if err != nil {
		errStr := stderr.String()
		if len(errStr) > 4096 {
			errStr = errStr[:4096] + "..."
		}
		return nil, fmt.Errorf("ffprobe %s: %w (stderr: %s)", path, err, strings.TrimSpace(errStr))
	}

	tracks, err := ParseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	logger := log.WithComponent("engine")
	logger.Debug().
		Str(log.FieldInputPath, path).
		Int("tracks", len(tracks)).
		Msg("probe complete")
	return tracks, nil
}

// ParseProbe converts ffprobe JSON into tracks. Streams other than video and
// audio, and attached pictures (cover art), are skipped.
func ParseProbe(data []byte) ([]media.Track, error) {
	var pd probeData
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	if pd.Format.FormatName == "" {
		return nil, fmt.Errorf("no container format reported")
	}

	tracks := make([]media.Track, 0, len(pd.Streams))
	for _, s := range pd.Streams {
		switch s.CodecType {
		case "video":
			if s.Disposition["attached_pic"] == 1 {
				continue
			}
			fps := parseRate(s.AvgFrameRate)
			if fps == 0 {
				fps = parseRate(s.RFrameRate)
			}
			tracks = append(tracks, media.Track{
				Index:            s.Index,
				Kind:             media.KindVideo,
				NaturalSize:      media.Size{Width: s.Width, Height: s.Height},
				EstimatedBitrate: parseInt64(s.BitRate),
				NominalFrameRate: fps,
				Rotation:         s.rotation(),
				Formats:          []media.FormatDescription{{MediaType: "vide", SubType: s.CodecName}},
			})
		case "audio":
			sr, _ := strconv.Atoi(s.SampleRate)
			tracks = append(tracks, media.Track{
				Index:            s.Index,
				Kind:             media.KindAudio,
				EstimatedBitrate: parseInt64(s.BitRate),
				SampleRate:       sr,
				Channels:         s.Channels,
				ChannelLayout:    s.ChannelLayout,
				Formats:          []media.FormatDescription{{MediaType: "soun", SubType: s.CodecName}},
			})
		}
	}

	// Containers such as MKV do not report per-stream bitrates; attribute the
	// container rate to a lone video track.
	if v := media.FirstTrack(tracks, media.KindVideo); v != nil && v.EstimatedBitrate == 0 {
		total := parseInt64(pd.Format.BitRate)
		for _, t := range tracks {
			if t.Kind == media.KindAudio {
				total -= t.EstimatedBitrate
			}
		}
		if total > 0 {
			for i := range tracks {
				if tracks[i].Index == v.Index {
					tracks[i].EstimatedBitrate = total
				}
			}
		}
	}
	return tracks, nil
}

// rotation returns the clockwise display rotation in degrees, normalised
// to [0, 360). The display matrix reports counter-clockwise degrees.
func (s probeStream) rotation() int {
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" && sd.Rotation != 0 {
			return normalizeDegrees(-int(math.Round(sd.Rotation)))
		}
	}
	if v, ok := s.Tags["rotate"]; ok {
		if deg, err := strconv.Atoi(v); err == nil {
			return normalizeDegrees(deg)
		}
	}
	return 0
}

func normalizeDegrees(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
