// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/vcompress/internal/media"
)

// Preset names a standard output resolution.
type Preset string

const (
	PresetSD360p   Preset = "360p"
	PresetSD480p   Preset = "480p"
	PresetHD720p   Preset = "720p"
	PresetHD1080p  Preset = "1080p"
	PresetHD1440p  Preset = "1440p"
	PresetUHD2160p Preset = "2160p"
	PresetUHD4320p Preset = "4320p"

	// PresetCustom marks a Resolution carrying an explicit size.
	PresetCustom Preset = "custom"
)

var presetSizes = map[Preset]media.Size{
	PresetSD360p:   {Width: 640, Height: 360},
	PresetSD480p:   {Width: 854, Height: 480},
	PresetHD720p:   {Width: 1280, Height: 720},
	PresetHD1080p:  {Width: 1920, Height: 1080},
	PresetHD1440p:  {Width: 2560, Height: 1440},
	PresetUHD2160p: {Width: 3840, Height: 2160},
	PresetUHD4320p: {Width: 7680, Height: 4320},
}

// Resolution is a resize policy: one of the named presets or Custom(w, h).
//
// Custom components may be non-positive: a negative component is derived
// from the other one keeping the aspect ratio, (0,0) or (-,-) keep the
// original size.
type Resolution struct {
	preset Preset
	custom media.Size
}

// PresetResolution returns the policy for a named preset.
func PresetResolution(p Preset) Resolution {
	return Resolution{preset: p}
}

// CustomResolution returns a policy with an explicit size.
func CustomResolution(width, height int) Resolution {
	return Resolution{preset: PresetCustom, custom: media.Size{Width: width, Height: height}}
}

// Preset returns the preset name, or PresetCustom.
func (r Resolution) Preset() Preset {
	return r.preset
}

// PixelSize returns the target size of the policy.
func (r Resolution) PixelSize() media.Size {
	if r.preset == PresetCustom {
		return r.custom
	}
	return presetSizes[r.preset]
}

func (r Resolution) String() string {
	if r.preset == PresetCustom {
		return fmt.Sprintf("%dx%d", r.custom.Width, r.custom.Height)
	}
	return string(r.preset)
}

// ParseResolution accepts a preset name ("720p") or WIDTHxHEIGHT with
// optionally negative components ("1280x-1", "-1x720").
func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Resolution{}, fmt.Errorf("empty resolution")
	}
	if _, ok := presetSizes[Preset(s)]; ok {
		return PresetResolution(Preset(s)), nil
	}
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("invalid resolution %q: want a preset (%s) or WIDTHxHEIGHT", s, presetList())
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution width %q: %w", w, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution height %q: %w", h, err)
	}
	return CustomResolution(width, height), nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(text []byte) error {
	parsed, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func presetList() string {
	return strings.Join([]string{
		string(PresetSD360p), string(PresetSD480p), string(PresetHD720p), string(PresetHD1080p),
		string(PresetHD1440p), string(PresetUHD2160p), string(PresetUHD4320p),
	}, ", ")
}
