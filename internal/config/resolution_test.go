// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/ManuGH/vcompress/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPresetSizes(t *testing.T) {
	tests := []struct {
		preset Preset
		want   media.Size
	}{
		{PresetSD360p, media.Size{Width: 640, Height: 360}},
		{PresetSD480p, media.Size{Width: 854, Height: 480}},
		{PresetHD720p, media.Size{Width: 1280, Height: 720}},
		{PresetHD1080p, media.Size{Width: 1920, Height: 1080}},
		{PresetHD1440p, media.Size{Width: 2560, Height: 1440}},
		{PresetUHD2160p, media.Size{Width: 3840, Height: 2160}},
		{PresetUHD4320p, media.Size{Width: 7680, Height: 4320}},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			assert.Equal(t, tt.want, PresetResolution(tt.preset).PixelSize())
		})
	}
}

func TestParseResolution(t *testing.T) {
	r, err := ParseResolution(" 720P ")
	require.NoError(t, err)
	assert.Equal(t, PresetHD720p, r.Preset())

	r, err = ParseResolution("1280x-1")
	require.NoError(t, err)
	assert.Equal(t, PresetCustom, r.Preset())
	assert.Equal(t, media.Size{Width: 1280, Height: -1}, r.PixelSize())
	assert.Equal(t, "1280x-1", r.String())

	for _, bad := range []string{"", "huge", "12x", "axb"} {
		_, err := ParseResolution(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolutionYAML(t *testing.T) {
	var doc struct {
		Res *Resolution `yaml:"res"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("res: -1x720\n"), &doc))
	require.NotNil(t, doc.Res)
	assert.Equal(t, media.Size{Width: -1, Height: 720}, doc.Res.PixelSize())

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "res: -1x720\n", string(out))
}
